package quant

import (
	"math"
	"math/rand"
	"testing"
)

func TestFitLinearExact(t *testing.T) {
	// y = 1 + 2*x0 - 3*x1 is recoverable exactly
	X := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2},
	}
	y := make([]float64, len(X))
	for i, x := range X {
		y[i] = 1 + 2*x[0] - 3*x[1]
	}

	m := fitLinear(X, y)

	if math.Abs(m.Intercept-1) > 1e-6 {
		t.Errorf("Intercept = %v, want 1", m.Intercept)
	}
	if math.Abs(m.Coef[0]-2) > 1e-6 || math.Abs(m.Coef[1]+3) > 1e-6 {
		t.Errorf("Coef = %v, want [2 -3]", m.Coef)
	}
	if got := m.Predict([]float64{3, 2}); math.Abs(got-1) > 1e-6 {
		t.Errorf("Predict = %v, want 1", got)
	}
}

func TestFitLinearEmpty(t *testing.T) {
	m := fitLinear(nil, nil)
	if m.Intercept != 0 || len(m.Coef) != 0 {
		t.Errorf("Empty fit produced %+v", m)
	}
}

func TestForestConstantTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	X := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range X {
		X[i] = []float64{rng.Float64(), rng.Float64()}
		y[i] = 0.5
	}

	forest := NewRandomForest(ForestParams{
		NEstimators:     20,
		MaxDepth:        5,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     "auto",
		Bootstrap:       true,
	})
	forest.Fit(X, y, rng)

	if got := forest.Predict([]float64{0.3, 0.7}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Predict = %v, want 0.5", got)
	}
}

func TestForestUnfittedPredictsZero(t *testing.T) {
	var forest RandomForest
	if got := forest.Predict([]float64{1, 2}); got != 0 {
		t.Errorf("Unfitted forest predicts %v, want 0", got)
	}
}

func TestBoostUnfittedPredictsBase(t *testing.T) {
	g := &GradientBoosting{BasePrediction: 0.02}
	if got := g.Predict([]float64{1}); got != 0.02 {
		t.Errorf("Unfitted booster predicts %v, want base prediction", got)
	}
}

func TestBoostLearnsStepFunction(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	// Step target on the first feature
	X := make([][]float64, 60)
	y := make([]float64, 60)
	for i := range X {
		X[i] = []float64{float64(i) / 60.0, rng.Float64()}
		if X[i][0] >= 0.5 {
			y[i] = 0.1
		} else {
			y[i] = -0.1
		}
	}

	g := NewGradientBoosting(BoostParams{
		NEstimators:     50,
		LearningRate:    0.1,
		MaxDepth:        3,
		Subsample:       1.0,
		ColsampleByTree: 1.0,
		RegLambda:       0.1,
	})
	g.Fit(X, y, rng)

	lo := g.Predict([]float64{0.1, 0.5})
	hi := g.Predict([]float64{0.9, 0.5})
	if math.Abs(lo+0.1) > 0.05 {
		t.Errorf("Low-side prediction %v not near -0.1", lo)
	}
	if math.Abs(hi-0.1) > 0.05 {
		t.Errorf("High-side prediction %v not near 0.1", hi)
	}
}

func TestKFoldBoundsCoverAllRows(t *testing.T) {
	tests := []struct {
		n, k int
	}{
		{10, 2},
		{10, 3},
		{7, 3},
		{5, 5},
	}

	for _, tt := range tests {
		bounds := kFoldBounds(tt.n, tt.k)
		if len(bounds) != tt.k {
			t.Errorf("kFoldBounds(%d,%d) produced %d folds", tt.n, tt.k, len(bounds))
			continue
		}
		covered := 0
		prev := 0
		for _, b := range bounds {
			if b[0] != prev {
				t.Errorf("kFoldBounds(%d,%d) leaves a gap at %d", tt.n, tt.k, prev)
			}
			covered += b[1] - b[0]
			prev = b[1]
		}
		if covered != tt.n {
			t.Errorf("kFoldBounds(%d,%d) covers %d rows", tt.n, tt.k, covered)
		}
	}
}

func TestCrossValScorePrefersBetterModel(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	X := make([][]float64, 30)
	y := make([]float64, 30)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = 0.01 * float64(i)
	}

	perfect := crossValScore(X, y, 3, func(trX [][]float64, trY []float64, fitRNG *rand.Rand) predictor {
		return &LinearModel{Coef: []float64{0.01}}
	}, rng)

	constant := crossValScore(X, y, 3, func(trX [][]float64, trY []float64, fitRNG *rand.Rand) predictor {
		return &LinearModel{Intercept: 0.15}
	}, rng)

	if perfect <= constant {
		t.Errorf("Perfect model scored %v, constant scored %v", perfect, constant)
	}
}
