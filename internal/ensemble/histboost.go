package ensemble

import (
	"fmt"
	"math"
	"sort"
)

// maxHistBins caps the number of histogram bins per feature.
const maxHistBins = 255

// HistBoost is the histogram-binned gradient boosting variant: candidate
// thresholds are quantile bin edges computed once per fit, so split search
// sweeps at most maxHistBins boundaries per feature instead of every
// distinct value. Same logistic-link objective as GradientBoost.
type HistBoost struct {
	Trees        []*treeNode `json:"trees"`
	Edges        [][]float64 `json:"edges"`
	LearningRate float64     `json:"learning_rate"`
	BaseScore    float64     `json:"base_score"`
	MaxDepth     int         `json:"max_depth"`
	Estimators   int         `json:"estimators"`
}

// NewHistBoost builds an unfitted model from the shared hyperparameters.
func NewHistBoost(cfg TrainingConfig) *HistBoost {
	return &HistBoost{
		LearningRate: cfg.LearningRate,
		MaxDepth:     cfg.MaxDepth,
		Estimators:   cfg.Estimators,
	}
}

// Fit computes the per-feature bin edges, then trains the boosted sequence
// with all splits restricted to those edges.
func (h *HistBoost) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(features) != len(labels) {
		return fmt.Errorf("hist boost: %d rows, %d labels", len(features), len(labels))
	}

	h.Edges = quantileEdges(features, maxHistBins)
	h.BaseScore = logOdds(labels)
	h.Trees = make([]*treeNode, 0, h.Estimators)

	n := len(features)
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = h.BaseScore
	}

	indices := allIndices(n)
	weights := uniformWeights(n)
	residuals := make([]float64, n)
	cfg := treeConfig{maxDepth: h.MaxDepth, minLeaf: 1, edges: h.Edges}

	for round := 0; round < h.Estimators; round++ {
		for i := range residuals {
			residuals[i] = float64(labels[i]) - sigmoid(scores[i])
		}
		tree := growTree(features, residuals, weights, indices, 0, cfg)
		h.Trees = append(h.Trees, tree)
		for i := range scores {
			scores[i] += h.LearningRate * tree.predict(features[i])
		}
	}
	return nil
}

// PredictProba returns the sigmoid of the accumulated raw scores. The bin
// edges only matter during fitting; fitted trees carry plain thresholds.
func (h *HistBoost) PredictProba(features [][]float64) []float64 {
	probs := make([]float64, len(features))
	for i, row := range features {
		score := h.BaseScore
		for _, tree := range h.Trees {
			score += h.LearningRate * tree.predict(row)
		}
		probs[i] = sigmoid(score)
	}
	return probs
}

// quantileEdges picks up to maxBins-1 split boundaries per feature from the
// empirical quantiles of the distinct values.
func quantileEdges(features [][]float64, maxBins int) [][]float64 {
	cols := len(features[0])
	edges := make([][]float64, cols)

	values := make([]float64, len(features))
	for f := 0; f < cols; f++ {
		for i, row := range features {
			values[i] = row[f]
		}
		sort.Float64s(values)

		distinct := values[:0:0]
		for i, v := range values {
			if i == 0 || v != distinct[len(distinct)-1] {
				distinct = append(distinct, v)
			}
		}
		if len(distinct) < 2 {
			edges[f] = nil
			continue
		}

		// Boundaries sit between consecutive distinct values; when there
		// are more boundaries than bins, sample them at even quantiles.
		boundaries := make([]float64, len(distinct)-1)
		for i := range boundaries {
			boundaries[i] = (distinct[i] + distinct[i+1]) / 2
		}
		if len(boundaries) <= maxBins-1 {
			edges[f] = boundaries
			continue
		}
		picked := make([]float64, 0, maxBins-1)
		for k := 1; k < maxBins; k++ {
			idx := int(math.Round(float64(k) * float64(len(boundaries)-1) / float64(maxBins-1)))
			b := boundaries[idx]
			if len(picked) == 0 || b != picked[len(picked)-1] {
				picked = append(picked, b)
			}
		}
		edges[f] = picked
	}
	return edges
}
