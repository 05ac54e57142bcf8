package quant

import (
	"math/rand"
)

// StackingModel combines the gradient-boosted and random-forest base
// learners under a linear meta-model. The meta-model is fit on the base
// learners' out-of-fold predictions so training labels never leak into
// the inputs it learns from.
type StackingModel struct {
	Boost  *GradientBoosting `json:"boost"`
	Forest *RandomForest     `json:"forest"`
	Meta   *LinearModel      `json:"meta"`
}

// fitStacking trains the full ensemble:
//  1. out-of-fold predictions for both base learners over k folds
//  2. linear meta-model on the OOF matrix
//  3. base learners refit on the full training data
func fitStacking(X [][]float64, y []float64, bp BoostParams, fp ForestParams, folds int, rng *rand.Rand) *StackingModel {
	n := len(X)
	oof := make([][]float64, n)
	for i := range oof {
		oof[i] = make([]float64, 2)
	}

	for _, bounds := range kFoldBounds(n, folds) {
		lo, hi := bounds[0], bounds[1]

		trX := make([][]float64, 0, n-(hi-lo))
		trY := make([]float64, 0, n-(hi-lo))
		for i := 0; i < n; i++ {
			if i >= lo && i < hi {
				continue
			}
			trX = append(trX, X[i])
			trY = append(trY, y[i])
		}

		boost := NewGradientBoosting(bp)
		boost.Fit(trX, trY, rand.New(rand.NewSource(rng.Int63())))

		forest := NewRandomForest(fp)
		forest.Fit(trX, trY, rand.New(rand.NewSource(rng.Int63())))

		for i := lo; i < hi; i++ {
			oof[i][0] = boost.Predict(X[i])
			oof[i][1] = forest.Predict(X[i])
		}
	}

	meta := fitLinear(oof, y)

	boost := NewGradientBoosting(bp)
	boost.Fit(X, y, rand.New(rand.NewSource(rng.Int63())))

	forest := NewRandomForest(fp)
	forest.Fit(X, y, rand.New(rand.NewSource(rng.Int63())))

	return &StackingModel{Boost: boost, Forest: forest, Meta: meta}
}

// Predict runs both base learners and fuses them through the meta-model
func (s *StackingModel) Predict(x []float64) float64 {
	return s.Meta.Predict([]float64{s.Boost.Predict(x), s.Forest.Predict(x)})
}
