// Package alerting pushes anomaly alerts to all stream subscribers
// through the hub-level broadcast primitive.
package alerting

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/anomaly"
	"github.com/Salvero/ecopulse-dashboard/internal/data"
	"github.com/Salvero/ecopulse-dashboard/internal/websocket"
)

type Alerter struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewAlerter(hub *websocket.Hub, logger *zap.Logger) *Alerter {
	return &Alerter{hub: hub, logger: logger}
}

// ProcessForecast broadcasts an alert frame when a forecast comes
// back as a high-severity anomaly. Lower severities stay out of the
// stream; callers still see them in the forecast response.
func (a *Alerter) ProcessForecast(result data.PredictionResponse) {
	if !result.AnomalyDetected || result.AnomalySeverity != string(anomaly.SeverityHigh) {
		return
	}

	alert := data.Alert{
		Timestamp:      result.Timestamp,
		SensorID:       result.SensorID,
		Severity:       result.AnomalySeverity,
		PredictedUsage: result.PredictedUsage,
		Message: fmt.Sprintf("High-severity usage spike forecast for %s: %.2f kWh",
			result.SensorID, result.PredictedUsage),
	}

	a.logger.Warn("broadcasting anomaly alert",
		zap.String("sensor_id", alert.SensorID),
		zap.Float64("predicted_usage", alert.PredictedUsage))
	a.hub.BroadcastJSON("alert", alert)
}
