// Package telemetry synthesizes the real-time facility samples pushed
// to streaming subscribers.
package telemetry

import (
	"math"
	"time"

	"github.com/Salvero/ecopulse-dashboard/internal/data"
	"github.com/Salvero/ecopulse-dashboard/internal/randx"
	"github.com/Salvero/ecopulse-dashboard/internal/stats"
)

const (
	baseLoad = 150.0
	// anomalyProbability is the chance a sample is marked as a usage spike.
	anomalyProbability = 0.05
	// gridStatusThreshold splits stable from high-load grid dependency.
	gridStatusThreshold = 200.0
	// solarActiveFloor is the minimum output considered "generating".
	solarActiveFloor = 10.0

	GridStable    = "stable"
	GridHighLoad  = "high-load"
	SolarActive   = "generating"
	SolarInactive = "inactive"
)

// Generator produces one synthetic sample per call, parameterized by
// the wall-clock hour and an injected random source.
type Generator struct {
	sensorID string
	rng      randx.Source
}

func NewGenerator(sensorID string, rng randx.Source) *Generator {
	return &Generator{sensorID: sensorID, rng: rng}
}

// Generate builds a sample for the given instant. The load curve
// follows the facility's daily shape: business hours run hot, evening
// tapers, night idles. Solar output peaks at noon and dies at the
// edges of daylight.
func (g *Generator) Generate(now time.Time) data.TelemetrySample {
	hour := now.Hour()

	multiplier := 1.0
	switch {
	case hour >= 9 && hour <= 17:
		multiplier = 1.5
	case hour >= 18 && hour <= 21:
		multiplier = 1.2
	case hour <= 5:
		multiplier = 0.6
	}

	currentUsage := stats.Round(baseLoad*multiplier+g.rng.Uniform(-15, 15), 2)

	solarMultiplier := 1 - math.Abs(float64(hour)-12)/12
	if solarMultiplier < 0 {
		solarMultiplier = 0
	}
	solarOutput := stats.Round(g.rng.Uniform(80, 120)*solarMultiplier, 2)

	temperature := stats.Round(18+(float64(hour)-12)*0.3+g.rng.Uniform(-3, 3), 1)
	humidity := stats.Round(g.rng.Uniform(40, 70), 1)
	uvIndex := stats.Round(math.Max(0, solarMultiplier*g.rng.Uniform(0, 11)), 1)

	isAnomaly := g.rng.Uniform(0, 1) < anomalyProbability
	if isAnomaly {
		currentUsage = stats.Round(currentUsage*1.5, 2)
	}

	// Holds exactly by construction: dependency is clamped usage minus solar.
	gridDependency := stats.Round(math.Max(0, currentUsage-solarOutput), 2)

	gridStatus := GridStable
	if gridDependency >= gridStatusThreshold {
		gridStatus = GridHighLoad
	}
	solarStatus := SolarInactive
	if solarOutput > solarActiveFloor {
		solarStatus = SolarActive
	}

	return data.TelemetrySample{
		Timestamp: now,
		SensorID:  g.sensorID,
		Metrics: data.TelemetryMetrics{
			CurrentUsage:   currentUsage,
			SolarOutput:    solarOutput,
			GridDependency: gridDependency,
			Temperature:    temperature,
			Humidity:       humidity,
			UVIndex:        uvIndex,
		},
		Status: data.TelemetryStatus{
			AnomalyDetected: isAnomaly,
			GridStatus:      gridStatus,
			SolarStatus:     solarStatus,
		},
	}
}
