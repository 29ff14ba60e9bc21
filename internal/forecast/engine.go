// Package forecast implements the short-horizon load forecasting
// engine and the batch coordinator that fans it over many sensors.
package forecast

import (
	"time"

	"github.com/Salvero/ecopulse-dashboard/internal/randx"
	"github.com/Salvero/ecopulse-dashboard/internal/stats"
)

// Mode selects the forecasting strategy metadata reported by the
// service. It is chosen once at startup and never mutated: Real means
// a model artifact was found on disk, Mock means the heuristic runs
// standalone. Both modes execute the same inference path.
type Mode string

const (
	ModeReal Mode = "real"
	ModeMock Mode = "mock"
)

const (
	// recentWindow is how many trailing readings drive the forecast.
	recentWindow = 6
	// noiseBound bounds the injected forecast jitter (±3%).
	noiseBound = 0.03
)

// Engine produces point forecasts from a rolling consumption window.
type Engine struct {
	mode         Mode
	modelVersion string
	loadTime     time.Time
	rng          randx.Source
}

// NewEngine builds an engine in the given mode. rng must be safe for
// concurrent use; pass a deterministic randx.Source in tests.
func NewEngine(mode Mode, modelVersion string, rng randx.Source) *Engine {
	return &Engine{
		mode:         mode,
		modelVersion: modelVersion,
		loadTime:     time.Now().UTC(),
		rng:          rng,
	}
}

func (e *Engine) Mode() Mode           { return e.mode }
func (e *Engine) ModelVersion() string { return e.modelVersion }
func (e *Engine) LoadTime() time.Time  { return e.loadTime }

// Predict forecasts the next reading from a window of at least 24
// non-negative values (enforced at the request boundary) and scores
// its own confidence from the stability of the recent data.
//
// The forecast is the recent average scaled by a trend factor from
// the regression slope, plus bounded uniform noise. Confidence is
// 1 minus the recent coefficient of variation, clamped to
// [0.5, 0.98]; the 0.01 denominator floor makes a constant window
// safe.
func (e *Engine) Predict(window []float64) (predicted, confidence float64) {
	recent := window[len(window)-recentWindow:]
	recentAvg := stats.Mean(recent)
	recentStd := stats.StdDev(recent)
	slope := stats.Slope(recent)

	trendFactor := 1 + (slope/max(recentAvg, 1))*0.5
	noise := e.rng.Uniform(-noiseBound, noiseBound)
	predicted = recentAvg * trendFactor * (1 + noise)
	if predicted < 0 {
		predicted = 0
	}
	predicted = stats.Round(predicted, 2)

	cv := recentStd / max(recentAvg, 0.01)
	confidence = stats.Round(stats.Clamp(1-cv, 0.5, 0.98), 3)
	return predicted, confidence
}
