package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/data"
	"github.com/Salvero/ecopulse-dashboard/internal/randx"
)

// faultyForecaster panics whenever the window starts with the poison
// marker, standing in for an unguarded runtime fault.
type faultyForecaster struct{}

const poison = -1.0

func (faultyForecaster) Predict(window []float64) (float64, float64) {
	if window[0] == poison {
		panic("inference blew up")
	}
	return window[len(window)-1], 0.9
}

func request(sensorID string, first float64) data.PredictionRequest {
	window := make([]float64, 24)
	window[0] = first
	for i := 1; i < len(window); i++ {
		window[i] = 100
	}
	return data.PredictionRequest{RecentUsage: window, SensorID: sensorID}
}

func TestProcess_FaultyItemIsOmitted(t *testing.T) {
	coord := NewBatchCoordinator(faultyForecaster{}, zap.NewNop())

	results := coord.Process([]data.PredictionRequest{
		request("sensor-a", 100),
		request("sensor-b", poison),
		request("sensor-c", 100),
	})

	// The faulty middle item vanishes; A and C keep their order.
	require.Len(t, results, 2)
	assert.Equal(t, "sensor-a", results[0].SensorID)
	assert.Equal(t, "sensor-c", results[1].SensorID)
}

func TestProcess_AllItemsSucceed(t *testing.T) {
	engine := NewEngine(ModeMock, "v1.0-lstm", randx.Midpoint)
	coord := NewBatchCoordinator(engine, zap.NewNop())

	requests := []data.PredictionRequest{
		request("sensor-1", 100),
		request("sensor-2", 100),
		request("sensor-3", 100),
	}
	results := coord.Process(requests)

	require.Len(t, results, len(requests))
	for i, resp := range results {
		assert.Equal(t, requests[i].SensorID, resp.SensorID)
		assert.GreaterOrEqual(t, resp.PredictedUsage, 0.0)
		assert.False(t, resp.Timestamp.IsZero())
	}
}

func TestProcess_SeverityOnlyWithAnomalyFlag(t *testing.T) {
	// The stub forecasts the window's last value, so a single huge
	// final reading pushes the forecast far past the 2-sigma
	// threshold of the mostly-flat history.
	coord := NewBatchCoordinator(faultyForecaster{}, zap.NewNop())

	spiky := make([]float64, 24)
	for i := range spiky {
		spiky[i] = 100
	}
	spiky[23] = 600

	results := coord.Process([]data.PredictionRequest{
		{RecentUsage: spiky, SensorID: "spiky"},
		request("quiet", 100),
	})

	require.Len(t, results, 2)
	for _, resp := range results {
		assert.Equal(t, resp.AnomalyDetected, resp.AnomalySeverity != "")
	}
	assert.True(t, results[0].AnomalyDetected)
	assert.False(t, results[1].AnomalyDetected)
}

func TestProcessOne_ReturnsItemFailure(t *testing.T) {
	coord := NewBatchCoordinator(faultyForecaster{}, zap.NewNop())

	_, err := coord.ProcessOne(request("sensor-x", poison))

	var itemErr *ItemFailure
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, "sensor-x", itemErr.SensorID)
}
