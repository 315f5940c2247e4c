package ensemble

import (
	"fmt"
)

// Predictor combines the fitted scaler and the four classifiers into the
// scoring surface: standardized features in, 0-100 weighted suspicion
// percentages out.
type Predictor struct {
	Scaler *StandardScaler
	Models map[string]BinaryClassifier
}

// Predict scales the feature matrix and soft-votes the model probabilities
// with the fixed weights. The result is a 0-100 percentage per row.
func (p *Predictor) Predict(features [][]float64) ([]float64, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	scaled, err := p.Scaler.Transform(features)
	if err != nil {
		return nil, fmt.Errorf("scaling features: %w", err)
	}

	scores := make([]float64, len(scaled))
	for _, name := range ModelNames {
		probs := p.Models[name].PredictProba(scaled)
		weight := VotingWeights[name]
		for i, prob := range probs {
			scores[i] += weight * prob
		}
	}
	for i := range scores {
		scores[i] = 100 * clamp01(scores[i])
	}
	return scores, nil
}

// ready verifies every ensemble member and the scaler are present before any
// score is produced.
func (p *Predictor) ready() error {
	if p.Scaler == nil {
		return fmt.Errorf("predictor: no scaler")
	}
	for _, name := range ModelNames {
		if p.Models[name] == nil {
			return fmt.Errorf("predictor: model %q not loaded", name)
		}
	}
	return nil
}
