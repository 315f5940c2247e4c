package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerFitTransform(t *testing.T) {
	features := [][]float64{
		{1, 10, 5},
		{2, 20, 5},
		{3, 30, 5},
	}

	scaler := &StandardScaler{}
	require.NoError(t, scaler.Fit(features))

	assert.InDelta(t, 2.0, scaler.Means[0], 1e-9)
	assert.InDelta(t, 20.0, scaler.Means[1], 1e-9)
	// Zero-variance column keeps a unit divisor.
	assert.InDelta(t, 1.0, scaler.Stds[2], 1e-9)

	scaled, err := scaler.Transform(features)
	require.NoError(t, err)

	// First column: mean 2, population std sqrt(2/3).
	assert.InDelta(t, -1.22474487, scaled[0][0], 1e-6)
	assert.InDelta(t, 0.0, scaled[1][0], 1e-9)
	assert.InDelta(t, 1.22474487, scaled[2][0], 1e-6)
	// Constant column centers to zero.
	for i := range scaled {
		assert.InDelta(t, 0.0, scaled[i][2], 1e-9)
	}

	// Input stays untouched.
	assert.Equal(t, 1.0, features[0][0])
}

func TestScalerErrors(t *testing.T) {
	scaler := &StandardScaler{}
	assert.Error(t, scaler.Fit(nil))

	_, err := scaler.Transform([][]float64{{1, 2}})
	assert.Error(t, err, "transform before fit must fail")

	require.NoError(t, scaler.Fit([][]float64{{1, 2}, {3, 4}}))
	_, err = scaler.Transform([][]float64{{1, 2, 3}})
	assert.Error(t, err, "column mismatch must fail")
}

func TestScalerAppliesTrainingStatistics(t *testing.T) {
	scaler := &StandardScaler{}
	require.NoError(t, scaler.Fit([][]float64{{0}, {10}}))

	// A new batch is scaled with the fitted statistics, not its own.
	scaled, err := scaler.Transform([][]float64{{5}, {100}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, scaled[0][0], 1e-9)
	assert.InDelta(t, 19.0, scaled[1][0], 1e-9)
}
