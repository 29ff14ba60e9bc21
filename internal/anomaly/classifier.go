// Package anomaly classifies forecasts against a threshold derived
// from the full historical window.
package anomaly

import "github.com/Salvero/ecopulse-dashboard/internal/stats"

// Severity grades how far an anomalous forecast exceeds the threshold.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Classify compares predicted against the window's anomaly threshold
// (historical mean + 2 population standard deviations). Severity is
// SeverityNone unless the forecast is anomalous.
//
// A zero threshold is only possible when every historical value is
// zero; that case is treated as non-anomalous rather than dividing
// by zero.
func Classify(window []float64, predicted float64) (bool, Severity) {
	avg := stats.Mean(window)
	std := stats.StdDev(window)
	threshold := avg + 2*std

	if threshold == 0 || predicted <= threshold {
		return false, SeverityNone
	}

	deviation := (predicted - threshold) / threshold
	switch {
	case deviation < 0.10:
		return true, SeverityLow
	case deviation < 0.25:
		return true, SeverityMedium
	default:
		return true, SeverityHigh
	}
}
