package quant

import (
	"math"
	"math/rand"
)

// ForestParams are the tunable hyperparameters of the random forest,
// the second base learner of the stacking ensemble.
type ForestParams struct {
	NEstimators     int    `json:"n_estimators"`
	MaxDepth        int    `json:"max_depth"` // 0 = unlimited
	MinSamplesSplit int    `json:"min_samples_split"`
	MinSamplesLeaf  int    `json:"min_samples_leaf"`
	MaxFeatures     string `json:"max_features"` // "auto", "sqrt", "log2"
	Bootstrap       bool   `json:"bootstrap"`
}

// RandomForest is a bagged ensemble of regression trees; prediction is
// the mean over trees.
type RandomForest struct {
	Params ForestParams `json:"params"`
	Trees  []Tree       `json:"trees"`
}

// NewRandomForest creates an unfitted forest
func NewRandomForest(params ForestParams) *RandomForest {
	return &RandomForest{Params: params}
}

// Fit trains the forest on the feature matrix X against target y
func (f *RandomForest) Fit(X [][]float64, y []float64, rng *rand.Rand) {
	n := len(X)
	if n == 0 {
		return
	}
	maxFeat := resolveMaxFeatures(f.Params.MaxFeatures, len(X[0]))

	cfg := treeConfig{
		maxDepth:        f.Params.MaxDepth,
		minSamplesSplit: f.Params.MinSamplesSplit,
		minSamplesLeaf:  f.Params.MinSamplesLeaf,
		maxFeatures:     maxFeat,
	}

	f.Trees = make([]Tree, 0, f.Params.NEstimators)
	for b := 0; b < f.Params.NEstimators; b++ {
		idx := make([]int, n)
		if f.Params.Bootstrap {
			for i := range idx {
				idx[i] = rng.Intn(n)
			}
		} else {
			for i := range idx {
				idx[i] = i
			}
		}
		f.Trees = append(f.Trees, *fitTree(X, y, idx, cfg, rng))
	}
}

// Predict returns the mean prediction over all trees
func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].Predict(x)
	}
	return sum / float64(len(f.Trees))
}

// resolveMaxFeatures maps the sklearn-style max_features name to a
// per-split candidate count. "auto" means all features for regression.
func resolveMaxFeatures(name string, total int) int {
	switch name {
	case "sqrt":
		return maxInt(1, int(math.Sqrt(float64(total))))
	case "log2":
		return maxInt(1, int(math.Log2(float64(total))))
	default: // "auto" or unset
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
