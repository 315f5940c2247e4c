package ensemble

import (
	"fmt"
	"math"
	"math/rand"
)

// RandomForest bags depth-limited regression trees: each tree fits a
// bootstrap resample on a random subset of features (square root of the
// column count per split), and the forest probability is the mean of the
// per-tree leaf values.
type RandomForest struct {
	Trees      []*treeNode `json:"trees"`
	MaxDepth   int         `json:"max_depth"`
	Estimators int         `json:"estimators"`
	Seed       int64       `json:"seed"`
}

// NewRandomForest builds an unfitted model from the shared hyperparameters.
func NewRandomForest(cfg TrainingConfig) *RandomForest {
	return &RandomForest{
		MaxDepth:   cfg.MaxDepth,
		Estimators: cfg.Estimators,
		Seed:       cfg.Seed,
	}
}

// Fit grows the forest. All randomness comes from the model's own seeded
// source.
func (f *RandomForest) Fit(features [][]float64, labels []int) error {
	if len(features) == 0 || len(features) != len(labels) {
		return fmt.Errorf("random forest: %d rows, %d labels", len(features), len(labels))
	}

	n := len(features)
	cols := len(features[0])
	rng := rand.New(rand.NewSource(f.Seed))

	target := make([]float64, n)
	for i, y := range labels {
		target[i] = float64(y)
	}
	weights := uniformWeights(n)

	cfg := treeConfig{
		maxDepth:    f.MaxDepth,
		minLeaf:     1,
		maxFeatures: int(math.Max(1, math.Round(math.Sqrt(float64(cols))))),
		rng:         rng,
	}

	f.Trees = make([]*treeNode, 0, f.Estimators)
	for t := 0; t < f.Estimators; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.Trees = append(f.Trees, growTree(features, target, weights, sample, 0, cfg))
	}
	return nil
}

// PredictProba averages the leaf values across the forest.
func (f *RandomForest) PredictProba(features [][]float64) []float64 {
	probs := make([]float64, len(features))
	if len(f.Trees) == 0 {
		return probs
	}
	for i, row := range features {
		sum := 0.0
		for _, tree := range f.Trees {
			sum += tree.predict(row)
		}
		probs[i] = clamp01(sum / float64(len(f.Trees)))
	}
	return probs
}
