package quant

import (
	"math/rand"
)

// BoostParams are the tunable hyperparameters of the gradient-boosted
// tree ensemble, the first base learner of the stacking ensemble.
type BoostParams struct {
	NEstimators     int     `json:"n_estimators"`
	LearningRate    float64 `json:"learning_rate"`
	MaxDepth        int     `json:"max_depth"`
	Subsample       float64 `json:"subsample"`         // row fraction per round
	ColsampleByTree float64 `json:"colsample_bytree"`  // feature fraction per round
	RegAlpha        float64 `json:"reg_alpha"`         // L1 leaf shrinkage
	RegLambda       float64 `json:"reg_lambda"`        // L2 leaf shrinkage
}

// GradientBoosting fits shallow regression trees to the running
// residual, each scaled by the learning rate, starting from the target
// mean.
type GradientBoosting struct {
	Params         BoostParams `json:"params"`
	BasePrediction float64     `json:"base_prediction"`
	Trees          []Tree      `json:"trees"`
}

// NewGradientBoosting creates an unfitted booster
func NewGradientBoosting(params BoostParams) *GradientBoosting {
	return &GradientBoosting{Params: params}
}

// Fit trains the booster on the feature matrix X against target y
func (g *GradientBoosting) Fit(X [][]float64, y []float64, rng *rand.Rand) {
	n := len(X)
	if n == 0 {
		return
	}
	nFeatures := len(X[0])

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	g.BasePrediction = sum / float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.BasePrediction
	}

	residual := make([]float64, n)
	g.Trees = make([]Tree, 0, g.Params.NEstimators)

	for round := 0; round < g.Params.NEstimators; round++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}

		idx := sampleRows(n, g.Params.Subsample, rng)
		allowed := sampleFeatures(nFeatures, g.Params.ColsampleByTree, rng)

		cfg := treeConfig{
			maxDepth:        g.Params.MaxDepth,
			minSamplesSplit: 2,
			minSamplesLeaf:  1,
			allowed:         allowed,
			regLambda:       g.Params.RegLambda,
			regAlpha:        g.Params.RegAlpha,
		}

		tree := fitTree(X, residual, idx, cfg, rng)
		g.Trees = append(g.Trees, *tree)

		lr := g.Params.LearningRate
		for i := 0; i < n; i++ {
			pred[i] += lr * tree.Predict(X[i])
		}
	}
}

// Predict sums the base prediction and all scaled tree contributions
func (g *GradientBoosting) Predict(x []float64) float64 {
	out := g.BasePrediction
	for i := range g.Trees {
		out += g.Params.LearningRate * g.Trees[i].Predict(x)
	}
	return out
}

// sampleRows draws floor(n*fraction) distinct row indices; a fraction
// of 1 (or more) keeps every row.
func sampleRows(n int, fraction float64, rng *rand.Rand) []int {
	if fraction <= 0 || fraction >= 1 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := maxInt(1, int(float64(n)*fraction))
	perm := rng.Perm(n)
	return perm[:k]
}

// sampleFeatures draws the per-tree feature subset; nil means all
func sampleFeatures(total int, fraction float64, rng *rand.Rand) []int {
	if fraction <= 0 || fraction >= 1 {
		return nil
	}
	k := maxInt(1, int(float64(total)*fraction))
	perm := rng.Perm(total)
	allowed := make([]int, k)
	copy(allowed, perm[:k])
	return allowed
}
