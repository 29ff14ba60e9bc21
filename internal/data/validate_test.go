package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() PredictionRequest {
	usage := make([]float64, 24)
	for i := range usage {
		usage[i] = 100
	}
	return PredictionRequest{RecentUsage: usage, SensorID: "sensor-1"}
}

func TestValidateRequest_Accepts(t *testing.T) {
	req := validRequest()
	assert.NoError(t, ValidateRequest(&req))

	// Longer windows and zero readings are fine.
	req.RecentUsage = append(req.RecentUsage, 0, 0, 0)
	assert.NoError(t, ValidateRequest(&req))
}

func TestValidateRequest_Rejects(t *testing.T) {
	short := validRequest()
	short.RecentUsage = short.RecentUsage[:23]

	negative := validRequest()
	negative.RecentUsage[5] = -1

	noID := validRequest()
	noID.SensorID = ""

	longID := validRequest()
	longID.SensorID = strings.Repeat("x", 51)

	empty := PredictionRequest{}

	for name, req := range map[string]PredictionRequest{
		"short window": short,
		"negative":     negative,
		"no id":        noID,
		"long id":      longID,
		"empty":        empty,
	} {
		err := ValidateRequest(&req)
		require.Error(t, err, name)

		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, name)
	}
}

func TestValidateRequest_BoundaryLengths(t *testing.T) {
	exact := validRequest() // exactly 24 readings
	assert.NoError(t, ValidateRequest(&exact))

	maxID := validRequest()
	maxID.SensorID = strings.Repeat("x", 50)
	assert.NoError(t, ValidateRequest(&maxID))
}

func TestValidateBatch_Atomic(t *testing.T) {
	good := validRequest()
	bad := validRequest()
	bad.RecentUsage[0] = -5

	err := ValidateBatch(&BatchPredictionRequest{
		Sensors: []PredictionRequest{good, bad, good},
	})
	require.Error(t, err, "one malformed item must reject the whole batch")

	err = ValidateBatch(&BatchPredictionRequest{
		Sensors: []PredictionRequest{good, good},
	})
	assert.NoError(t, err)

	err = ValidateBatch(&BatchPredictionRequest{})
	assert.Error(t, err, "an empty batch is a client error")
}
