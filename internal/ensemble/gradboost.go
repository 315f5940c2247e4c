package ensemble

import (
	"fmt"
	"math"
)

// GradientBoost is gradient boosting for binary classification with a
// logistic link: an additive sequence of regression trees fitted to the
// probability residuals, scored through a sigmoid. Splits are found by exact
// greedy search over every distinct feature value.
type GradientBoost struct {
	Trees        []*treeNode `json:"trees"`
	LearningRate float64     `json:"learning_rate"`
	BaseScore    float64     `json:"base_score"`
	MaxDepth     int         `json:"max_depth"`
	Estimators   int         `json:"estimators"`
}

// NewGradientBoost builds an unfitted model from the shared hyperparameters.
func NewGradientBoost(cfg TrainingConfig) *GradientBoost {
	return &GradientBoost{
		LearningRate: cfg.LearningRate,
		MaxDepth:     cfg.MaxDepth,
		Estimators:   cfg.Estimators,
	}
}

// Fit trains the boosted sequence. The initial score is the log-odds of the
// positive rate; each round fits a tree to the current residuals and shifts
// the raw scores by a learning-rate fraction of its output.
func (g *GradientBoost) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(features) != len(labels) {
		return fmt.Errorf("gradient boost: %d rows, %d labels", len(features), len(labels))
	}

	g.BaseScore = logOdds(labels)
	g.Trees = make([]*treeNode, 0, g.Estimators)

	n := len(features)
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = g.BaseScore
	}

	indices := allIndices(n)
	weights := uniformWeights(n)
	residuals := make([]float64, n)
	cfg := treeConfig{maxDepth: g.MaxDepth, minLeaf: 1}

	for round := 0; round < g.Estimators; round++ {
		for i := range residuals {
			residuals[i] = float64(labels[i]) - sigmoid(scores[i])
		}
		tree := growTree(features, residuals, weights, indices, 0, cfg)
		g.Trees = append(g.Trees, tree)
		for i := range scores {
			scores[i] += g.LearningRate * tree.predict(features[i])
		}
	}
	return nil
}

// PredictProba returns the sigmoid of the accumulated raw scores.
func (g *GradientBoost) PredictProba(features [][]float64) []float64 {
	probs := make([]float64, len(features))
	for i, row := range features {
		score := g.BaseScore
		for _, tree := range g.Trees {
			score += g.LearningRate * tree.predict(row)
		}
		probs[i] = sigmoid(score)
	}
	return probs
}

// logOdds is the log-odds of the positive rate, clamped away from the
// degenerate all-one-class cases.
func logOdds(labels []int) float64 {
	pos := 0
	for _, y := range labels {
		if y == 1 {
			pos++
		}
	}
	p := float64(pos) / float64(len(labels))
	p = math.Min(1-1e-6, math.Max(1e-6, p))
	return math.Log(p / (1 - p))
}
