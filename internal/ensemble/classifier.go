package ensemble

import "math"

// BinaryClassifier is the contract every ensemble member satisfies: fit on a
// feature matrix with binary labels, then emit a positive-class probability
// in [0, 1] per row. Implementations are deterministic for a given
// TrainingConfig seed.
type BinaryClassifier interface {
	Fit(features [][]float64, labels []int) error
	PredictProba(features [][]float64) []float64
}

// Model names double as artifact identifiers on disk.
const (
	ModelGradientBoost = "gradient_boost"
	ModelHistBoost     = "hist_boost"
	ModelAdaBoost      = "adaboost"
	ModelRandomForest  = "random_forest"
)

// ModelNames lists the ensemble members in voting order.
var ModelNames = []string{ModelGradientBoost, ModelHistBoost, ModelAdaBoost, ModelRandomForest}

// VotingWeights are the fixed soft-voting weights. They sum to 1; the
// weighted probability is multiplied by 100 to produce the suspicion score.
var VotingWeights = map[string]float64{
	ModelGradientBoost: 0.30,
	ModelHistBoost:     0.30,
	ModelAdaBoost:      0.20,
	ModelRandomForest:  0.20,
}

// TrainingConfig carries every knob the trainer honours. All randomness in
// the package flows from Seed; there is no global RNG state.
type TrainingConfig struct {
	Seed            int64
	Estimators      int
	MaxDepth        int
	LearningRate    float64
	HoldoutFraction float64
}

// DefaultTrainingConfig returns the shipped hyperparameters.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Seed:            42,
		Estimators:      100,
		MaxDepth:        5,
		LearningRate:    0.1,
		HoldoutFraction: 0.2,
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clamp01(p float64) float64 {
	return math.Min(1, math.Max(0, p))
}
