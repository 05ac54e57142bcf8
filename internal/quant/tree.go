package quant

import (
	"math"
	"math/rand"
	"sort"
)

// treeConfig controls a single regression tree fit.
// RegLambda/RegAlpha shrink leaf values (L2/L1); zero means plain mean
// leaves, which is what the random forest uses.
type treeConfig struct {
	maxDepth        int // 0 = unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int   // candidate features per split; 0 = all allowed
	allowed         []int // feature indices the tree may split on
	regLambda       float64
	regAlpha        float64
}

// TreeNode is one node of a fitted regression tree. Leaves have
// Feature == -1. Children are indices into the flat node slice so the
// structure serializes to JSON without pointer cycles.
type TreeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// Tree is a fitted regression tree
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree for one feature vector
func (t *Tree) Predict(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// fitTree grows a variance-reduction regression tree over the sample
// indices in idx. Split thresholds are midpoints between consecutive
// distinct feature values.
func fitTree(X [][]float64, y []float64, idx []int, cfg treeConfig, rng *rand.Rand) *Tree {
	t := &Tree{}
	if len(idx) == 0 {
		t.Nodes = append(t.Nodes, TreeNode{Feature: -1})
		return t
	}
	t.grow(X, y, idx, cfg, rng, 1)
	return t
}

// grow appends the subtree for idx and returns its root index
func (t *Tree) grow(X [][]float64, y []float64, idx []int, cfg treeConfig, rng *rand.Rand, depth int) int {
	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, TreeNode{Feature: -1, Value: leafValue(y, idx, cfg)})

	if len(idx) < cfg.minSamplesSplit || (cfg.maxDepth > 0 && depth > cfg.maxDepth) {
		return self
	}

	feature, threshold, ok := bestSplit(X, y, idx, cfg, rng)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minSamplesLeaf || len(right) < cfg.minSamplesLeaf {
		return self
	}

	t.Nodes[self].Feature = feature
	t.Nodes[self].Threshold = threshold
	t.Nodes[self].Left = t.grow(X, y, left, cfg, rng, depth+1)
	t.Nodes[self].Right = t.grow(X, y, right, cfg, rng, depth+1)
	return self
}

// leafValue computes the (optionally regularized) leaf prediction:
// soft-thresholded sum over count, sum(y)/(n + lambda) when alpha is 0.
func leafValue(y []float64, idx []int, cfg treeConfig) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	if cfg.regAlpha > 0 {
		switch {
		case sum > cfg.regAlpha:
			sum -= cfg.regAlpha
		case sum < -cfg.regAlpha:
			sum += cfg.regAlpha
		default:
			sum = 0
		}
	}
	return sum / (float64(len(idx)) + cfg.regLambda)
}

// bestSplit scans candidate features for the split with the largest
// sum-of-squares reduction, using prefix sums over the sorted column.
func bestSplit(X [][]float64, y []float64, idx []int, cfg treeConfig, rng *rand.Rand) (int, float64, bool) {
	candidates := cfg.allowed
	if candidates == nil {
		candidates = make([]int, len(X[0]))
		for i := range candidates {
			candidates[i] = i
		}
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < len(candidates) {
		sampled := make([]int, len(candidates))
		copy(sampled, candidates)
		rng.Shuffle(len(sampled), func(i, j int) {
			sampled[i], sampled[j] = sampled[j], sampled[i]
		})
		candidates = sampled[:cfg.maxFeatures]
	}

	var (
		total    float64
		totalSq  float64
		n        = float64(len(idx))
		bestGain = math.Inf(-1)
		bestFeat = -1
		bestThr  float64
	)
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	parentSSE := totalSq - total*total/n

	order := make([]int, len(idx))
	for _, f := range candidates {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		leftSum, leftCount := 0.0, 0
		leftSq := 0.0
		for p := 0; p < len(order)-1; p++ {
			i := order[p]
			leftSum += y[i]
			leftSq += y[i] * y[i]
			leftCount++

			// No split between equal values
			if X[order[p]][f] == X[order[p+1]][f] {
				continue
			}
			if leftCount < cfg.minSamplesLeaf || len(order)-leftCount < cfg.minSamplesLeaf {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			rightCount := float64(len(order) - leftCount)

			leftSSE := leftSq - leftSum*leftSum/float64(leftCount)
			rightSSE := rightSq - rightSum*rightSum/rightCount
			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeat = f
				bestThr = (X[order[p]][f] + X[order[p+1]][f]) / 2
			}
		}
	}

	if bestFeat < 0 || bestGain <= 0 {
		return 0, 0, false
	}
	return bestFeat, bestThr, true
}
