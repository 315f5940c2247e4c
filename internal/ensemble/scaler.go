package ensemble

import (
	"fmt"
	"math"
)

// StandardScaler standardizes each feature column to zero mean and unit
// variance using statistics captured at training time. The same fitted
// scaler must be applied at inference; feature distributions are never
// re-estimated from a scoring batch.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Fit captures per-column mean and population standard deviation.
// Zero-variance columns keep a divisor of 1 so they pass through centered
// but unscaled.
func (s *StandardScaler) Fit(features [][]float64) error {
	if len(features) == 0 {
		return fmt.Errorf("scaler: empty feature matrix")
	}
	cols := len(features[0])
	s.Means = make([]float64, cols)
	s.Stds = make([]float64, cols)

	n := float64(len(features))
	for _, row := range features {
		if len(row) != cols {
			return fmt.Errorf("scaler: ragged feature matrix, want %d columns got %d", cols, len(row))
		}
		for j, v := range row {
			s.Means[j] += v
		}
	}
	for j := range s.Means {
		s.Means[j] /= n
	}

	for _, row := range features {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stds[j] += d * d
		}
	}
	for j := range s.Stds {
		s.Stds[j] = math.Sqrt(s.Stds[j] / n)
		if s.Stds[j] == 0 {
			s.Stds[j] = 1
		}
	}
	return nil
}

// Transform returns a standardized copy of the matrix; the input is left
// untouched.
func (s *StandardScaler) Transform(features [][]float64) ([][]float64, error) {
	if len(s.Means) == 0 {
		return nil, fmt.Errorf("scaler: not fitted")
	}
	out := make([][]float64, len(features))
	for i, row := range features {
		if len(row) != len(s.Means) {
			return nil, fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(row), len(s.Means))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Means[j]) / s.Stds[j]
		}
		out[i] = scaled
	}
	return out, nil
}
