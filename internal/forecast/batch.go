package forecast

import (
	"time"

	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/anomaly"
	"github.com/Salvero/ecopulse-dashboard/internal/data"
	"github.com/Salvero/ecopulse-dashboard/internal/metrics"
)

// Forecaster is the single-sensor inference surface the coordinator
// fans over. *Engine satisfies it.
type Forecaster interface {
	Predict(window []float64) (predicted, confidence float64)
}

// BatchCoordinator runs forecast + classification across many sensors
// with per-item fault isolation: a panic while processing one sensor
// drops that sensor from the output and never aborts its siblings.
type BatchCoordinator struct {
	forecaster Forecaster
	logger     *zap.Logger
	now        func() time.Time
}

func NewBatchCoordinator(f Forecaster, logger *zap.Logger) *BatchCoordinator {
	return &BatchCoordinator{
		forecaster: f,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Process iterates sensors in input order. Items are already
// boundary-validated; output preserves the relative order of the
// items that succeed and contains no placeholders for ones that fail.
func (b *BatchCoordinator) Process(sensors []data.PredictionRequest) []data.PredictionResponse {
	results := make([]data.PredictionResponse, 0, len(sensors))
	for _, req := range sensors {
		resp, err := b.ProcessOne(req)
		if err != nil {
			metrics.BatchItemsDropped.Inc()
			b.logger.Error("batch inference failed, skipping sensor",
				zap.String("sensor_id", req.SensorID),
				zap.Error(err))
			continue
		}
		results = append(results, resp)
	}
	return results
}

// ProcessOne runs forecast and classification for a single sensor,
// converting any inference panic into an ItemFailure error.
func (b *BatchCoordinator) ProcessOne(req data.PredictionRequest) (resp data.PredictionResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ItemFailure{SensorID: req.SensorID, Cause: r}
		}
	}()
	predicted, confidence := b.forecaster.Predict(req.RecentUsage)
	isAnomaly, severity := anomaly.Classify(req.RecentUsage, predicted)
	metrics.PredictionsTotal.Inc()
	if isAnomaly {
		metrics.AnomaliesDetected.Inc()
	}
	return data.PredictionResponse{
		SensorID:        req.SensorID,
		Timestamp:       b.now(),
		PredictedUsage:  predicted,
		AnomalyDetected: isAnomaly,
		AnomalySeverity: string(severity),
		ConfidenceScore: confidence,
	}, nil
}

// ItemFailure records a recovered runtime fault for one batch item.
type ItemFailure struct {
	SensorID string
	Cause    any
}

func (e *ItemFailure) Error() string {
	return "inference panic for sensor " + e.SensorID
}
