package ensemble

import (
	"fmt"
	"math"
)

// AdaBoost boosts depth-limited regression trees used as weighted-vote
// classifiers: each round fits a tree to the labels under the current sample
// weights, thresholds its output at 0.5 to classify, and re-weights the
// misclassified rows. Probability is the normalized weighted vote mapped to
// [0, 1].
type AdaBoost struct {
	Trees      []*treeNode `json:"trees"`
	Alphas     []float64   `json:"alphas"`
	MaxDepth   int         `json:"max_depth"`
	Estimators int         `json:"estimators"`
}

// NewAdaBoost builds an unfitted model from the shared hyperparameters.
func NewAdaBoost(cfg TrainingConfig) *AdaBoost {
	return &AdaBoost{
		MaxDepth:   cfg.MaxDepth,
		Estimators: cfg.Estimators,
	}
}

// Fit runs the boosting rounds. A round with weighted error at or above 0.5
// contributes nothing and stops the sequence; a perfect round gets a capped
// alpha and stops it too.
func (a *AdaBoost) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(features) != len(labels) {
		return fmt.Errorf("adaboost: %d rows, %d labels", len(features), len(labels))
	}

	n := len(features)
	a.Trees = a.Trees[:0]
	a.Alphas = a.Alphas[:0]

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}

	target := make([]float64, n)
	for i, y := range labels {
		target[i] = float64(y)
	}

	indices := allIndices(n)
	cfg := treeConfig{maxDepth: a.MaxDepth, minLeaf: 1}

	for round := 0; round < a.Estimators; round++ {
		tree := growTree(features, target, weights, indices, 0, cfg)

		errSum := 0.0
		predicted := make([]int, n)
		for i, row := range features {
			if tree.predict(row) > 0.5 {
				predicted[i] = 1
			}
			if predicted[i] != labels[i] {
				errSum += weights[i]
			}
		}

		if errSum >= 0.5 {
			break
		}
		if errSum <= 0 {
			a.Trees = append(a.Trees, tree)
			a.Alphas = append(a.Alphas, math.Log((1-1e-10)/1e-10)/2)
			break
		}

		alpha := math.Log((1-errSum)/errSum) / 2
		a.Trees = append(a.Trees, tree)
		a.Alphas = append(a.Alphas, alpha)

		total := 0.0
		for i := range weights {
			sign := -1.0
			if predicted[i] != labels[i] {
				sign = 1.0
			}
			weights[i] *= math.Exp(sign * alpha)
			total += weights[i]
		}
		for i := range weights {
			weights[i] /= total
		}
	}

	if len(a.Trees) == 0 {
		// Every candidate round was too weak; keep a single majority-vote
		// stump so the model still produces the base rate.
		tree := growTree(features, target, weights, indices, 0, treeConfig{maxDepth: 1, minLeaf: 1})
		a.Trees = append(a.Trees, tree)
		a.Alphas = append(a.Alphas, 1)
	}
	return nil
}

// PredictProba maps the alpha-weighted vote margin from [-1, 1] to [0, 1].
func (a *AdaBoost) PredictProba(features [][]float64) []float64 {
	probs := make([]float64, len(features))
	alphaSum := 0.0
	for _, alpha := range a.Alphas {
		alphaSum += alpha
	}
	if alphaSum == 0 {
		for i := range probs {
			probs[i] = 0.5
		}
		return probs
	}

	for i, row := range features {
		margin := 0.0
		for k, tree := range a.Trees {
			vote := -1.0
			if tree.predict(row) > 0.5 {
				vote = 1.0
			}
			margin += a.Alphas[k] * vote
		}
		probs[i] = clamp01((margin/alphaSum + 1) / 2)
	}
	return probs
}
