// Package data holds the wire types exchanged over the HTTP and
// WebSocket surfaces, plus their boundary validation.
package data

import "time"

// PredictionRequest is the input for the /predict endpoint: the last
// 24+ hours of consumption readings for one sensor.
type PredictionRequest struct {
	RecentUsage []float64 `json:"recent_usage" validate:"required,min=24,dive,gte=0"`
	SensorID    string    `json:"sensor_id" validate:"required,min=1,max=50"`
}

// BatchPredictionRequest bundles several sensors into one call.
type BatchPredictionRequest struct {
	Sensors []PredictionRequest `json:"sensors" validate:"required,min=1,dive"`
}

// PredictionResponse is the forecast produced for a single sensor.
// AnomalySeverity is present only when AnomalyDetected is true.
type PredictionResponse struct {
	SensorID        string    `json:"sensor_id"`
	Timestamp       time.Time `json:"timestamp"`
	PredictedUsage  float64   `json:"predicted_usage"`
	AnomalyDetected bool      `json:"anomaly_detected"`
	AnomalySeverity string    `json:"anomaly_severity,omitempty"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status       string    `json:"status"`
	ModelLoaded  bool      `json:"model_loaded"`
	ModelVersion string    `json:"model_version"`
	APIVersion   string    `json:"api_version"`
	Timestamp    time.Time `json:"timestamp"`
}

// TelemetryMetrics are the per-sample facility readings.
type TelemetryMetrics struct {
	CurrentUsage   float64 `json:"current_usage"`
	SolarOutput    float64 `json:"solar_output"`
	GridDependency float64 `json:"grid_dependency"`
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	UVIndex        float64 `json:"uv_index"`
}

// TelemetryStatus summarizes the facility state for a sample.
type TelemetryStatus struct {
	AnomalyDetected bool   `json:"anomaly_detected"`
	GridStatus      string `json:"grid_status"`
	SolarStatus     string `json:"solar_status"`
}

// TelemetrySample is one synthesized real-time reading pushed to
// streaming subscribers. Not persisted; regenerated every tick.
type TelemetrySample struct {
	Timestamp time.Time        `json:"timestamp"`
	SensorID  string           `json:"sensor_id"`
	Metrics   TelemetryMetrics `json:"metrics"`
	Status    TelemetryStatus  `json:"status"`
}

// Alert is broadcast to all stream subscribers when a forecast is
// classified as a high-severity anomaly.
type Alert struct {
	Timestamp      time.Time `json:"timestamp"`
	SensorID       string    `json:"sensor_id"`
	Severity       string    `json:"severity"`
	PredictedUsage float64   `json:"predicted_usage"`
	Message        string    `json:"message"`
}

// ClientsResponse is returned by /ws/clients.
type ClientsResponse struct {
	ActiveConnections int       `json:"active_connections"`
	Timestamp         time.Time `json:"timestamp"`
}
