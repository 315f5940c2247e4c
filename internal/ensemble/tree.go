package ensemble

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a regression tree. Nodes serialize to JSON so
// fitted trees can be persisted as artifacts. Leaves carry the weighted mean
// of their targets; internal nodes route on x[Feature] <= Threshold.
type treeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
	Value     float64   `json:"value"`
	Leaf      bool      `json:"leaf,omitempty"`
}

func (n *treeNode) predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// treeConfig controls one tree induction. rng and maxFeatures are only used
// by the forest; edges switches split search to histogram mode.
type treeConfig struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand
	edges       [][]float64
}

// growTree fits a regression tree by greedy weighted squared-error splits
// over the rows named by indices.
func growTree(features [][]float64, target, weight []float64, indices []int, depth int, cfg treeConfig) *treeNode {
	leaf := &treeNode{Leaf: true, Value: weightedMean(target, weight, indices)}
	if depth >= cfg.maxDepth || len(indices) < 2*cfg.minLeaf {
		return leaf
	}

	feature, threshold, ok := bestSplit(features, target, weight, indices, cfg)
	if !ok {
		return leaf
	}

	left := indices[:0:0]
	right := indices[:0:0]
	for _, i := range indices {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minLeaf || len(right) < cfg.minLeaf {
		return leaf
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(features, target, weight, left, depth+1, cfg),
		Right:     growTree(features, target, weight, right, depth+1, cfg),
		Value:     leaf.Value,
	}
}

// bestSplit scans candidate features for the split with the largest weighted
// sum-of-squares reduction.
func bestSplit(features [][]float64, target, weight []float64, indices []int, cfg treeConfig) (int, float64, bool) {
	cols := len(features[indices[0]])
	candidates := make([]int, cols)
	for j := range candidates {
		candidates[j] = j
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < cols && cfg.rng != nil {
		cfg.rng.Shuffle(cols, func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
		candidates = candidates[:cfg.maxFeatures]
	}

	var totalW, totalSum, totalSumSq float64
	for _, i := range indices {
		totalW += weight[i]
		totalSum += weight[i] * target[i]
		totalSumSq += weight[i] * target[i] * target[i]
	}
	if totalW == 0 {
		return 0, 0, false
	}
	parentSSE := totalSumSq - totalSum*totalSum/totalW

	bestGain := 1e-12
	bestFeature, bestThreshold := -1, 0.0

	for _, f := range candidates {
		var thr float64
		var gain float64
		var ok bool
		if cfg.edges != nil {
			thr, gain, ok = binnedSplit(features, target, weight, indices, f, cfg.edges[f], totalW, totalSum, parentSSE, cfg.minLeaf)
		} else {
			thr, gain, ok = exactSplit(features, target, weight, indices, f, totalW, totalSum, parentSSE, cfg.minLeaf)
		}
		if ok && gain > bestGain {
			bestGain, bestFeature, bestThreshold = gain, f, thr
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// exactSplit sorts the rows on one feature and sweeps every boundary between
// distinct values.
func exactSplit(features [][]float64, target, weight []float64, indices []int, f int, totalW, totalSum, parentSSE float64, minLeaf int) (float64, float64, bool) {
	order := append([]int(nil), indices...)
	sort.Slice(order, func(a, b int) bool {
		return features[order[a]][f] < features[order[b]][f]
	})

	var leftW, leftSum float64
	bestGain, bestThr, found := 0.0, 0.0, false

	for k := 0; k < len(order)-1; k++ {
		i := order[k]
		leftW += weight[i]
		leftSum += weight[i] * target[i]

		v, next := features[i][f], features[order[k+1]][f]
		if v == next {
			continue
		}
		if k+1 < minLeaf || len(order)-k-1 < minLeaf {
			continue
		}
		rightW := totalW - leftW
		if leftW == 0 || rightW == 0 {
			continue
		}
		rightSum := totalSum - leftSum
		childSSE := parentSSE + totalSum*totalSum/totalW - leftSum*leftSum/leftW - rightSum*rightSum/rightW
		gain := parentSSE - childSSE
		if gain > bestGain {
			bestGain, bestThr, found = gain, (v+next)/2, true
		}
	}
	return bestThr, bestGain, found
}

// binnedSplit accumulates per-bin statistics and sweeps the precomputed bin
// edges instead of every distinct value.
func binnedSplit(features [][]float64, target, weight []float64, indices []int, f int, edges []float64, totalW, totalSum, parentSSE float64, minLeaf int) (float64, float64, bool) {
	if len(edges) == 0 {
		return 0, 0, false
	}
	nBins := len(edges) + 1
	binW := make([]float64, nBins)
	binSum := make([]float64, nBins)
	binCount := make([]int, nBins)

	for _, i := range indices {
		b := sort.SearchFloat64s(edges, features[i][f])
		binW[b] += weight[i]
		binSum[b] += weight[i] * target[i]
		binCount[b]++
	}

	var leftW, leftSum float64
	leftCount := 0
	bestGain, bestThr, found := 0.0, 0.0, false

	for k := 0; k < len(edges); k++ {
		leftW += binW[k]
		leftSum += binSum[k]
		leftCount += binCount[k]

		if leftCount < minLeaf || len(indices)-leftCount < minLeaf {
			continue
		}
		rightW := totalW - leftW
		if leftW == 0 || rightW == 0 {
			continue
		}
		rightSum := totalSum - leftSum
		childSSE := parentSSE + totalSum*totalSum/totalW - leftSum*leftSum/leftW - rightSum*rightSum/rightW
		gain := parentSSE - childSSE
		if gain > bestGain {
			bestGain, bestThr, found = gain, edges[k], true
		}
	}
	return bestThr, bestGain, found
}

func weightedMean(target, weight []float64, indices []int) float64 {
	var w, sum float64
	for _, i := range indices {
		w += weight[i]
		sum += weight[i] * target[i]
	}
	if w == 0 {
		return 0
	}
	return sum / w
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func uniformWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return weights
}
