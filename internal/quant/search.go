package quant

import (
	"math"
	"math/rand"
)

// Hyperparameter spaces mirror the randomized-search grids used to tune
// each base learner. Candidates are drawn uniformly from each axis.
var (
	boostSpace = struct {
		NEstimators  []int
		LearningRate []float64
		MaxDepth     []int
		Subsample    []float64
		Colsample    []float64
		RegAlpha     []float64
		RegLambda    []float64
	}{
		NEstimators:  []int{100, 200, 300, 400},
		LearningRate: []float64{0.01, 0.05, 0.1, 0.2},
		MaxDepth:     []int{3, 5, 7, 10},
		Subsample:    []float64{0.6, 0.8, 1.0},
		Colsample:    []float64{0.6, 0.8, 1.0},
		RegAlpha:     []float64{0, 0.01, 0.1, 1},
		RegLambda:    []float64{0.1, 1, 10},
	}

	forestSpace = struct {
		NEstimators     []int
		MaxDepth        []int
		MinSamplesSplit []int
		MinSamplesLeaf  []int
		MaxFeatures     []string
		Bootstrap       []bool
	}{
		NEstimators:     []int{100, 200, 300, 400, 500},
		MaxDepth:        []int{0, 10, 20, 30, 40}, // 0 = unlimited
		MinSamplesSplit: []int{2, 5, 10},
		MinSamplesLeaf:  []int{1, 2, 4},
		MaxFeatures:     []string{"auto", "sqrt", "log2"},
		Bootstrap:       []bool{true, false},
	}
)

func sampleBoostParams(rng *rand.Rand) BoostParams {
	return BoostParams{
		NEstimators:     pickInt(boostSpace.NEstimators, rng),
		LearningRate:    pickFloat(boostSpace.LearningRate, rng),
		MaxDepth:        pickInt(boostSpace.MaxDepth, rng),
		Subsample:       pickFloat(boostSpace.Subsample, rng),
		ColsampleByTree: pickFloat(boostSpace.Colsample, rng),
		RegAlpha:        pickFloat(boostSpace.RegAlpha, rng),
		RegLambda:       pickFloat(boostSpace.RegLambda, rng),
	}
}

func sampleForestParams(rng *rand.Rand) ForestParams {
	return ForestParams{
		NEstimators:     pickInt(forestSpace.NEstimators, rng),
		MaxDepth:        pickInt(forestSpace.MaxDepth, rng),
		MinSamplesSplit: pickInt(forestSpace.MinSamplesSplit, rng),
		MinSamplesLeaf:  pickInt(forestSpace.MinSamplesLeaf, rng),
		MaxFeatures:     forestSpace.MaxFeatures[rng.Intn(len(forestSpace.MaxFeatures))],
		Bootstrap:       forestSpace.Bootstrap[rng.Intn(len(forestSpace.Bootstrap))],
	}
}

func pickInt(xs []int, rng *rand.Rand) int { return xs[rng.Intn(len(xs))] }
func pickFloat(xs []float64, rng *rand.Rand) float64 {
	return xs[rng.Intn(len(xs))]
}

// searchBoostParams draws nIter random candidates and keeps the one
// with the best k-fold cross-validated negative MSE.
func searchBoostParams(X [][]float64, y []float64, nIter, folds int, rng *rand.Rand) BoostParams {
	best := sampleBoostParams(rng)
	bestScore := math.Inf(-1)

	for i := 0; i < nIter; i++ {
		candidate := sampleBoostParams(rng)
		score := crossValScore(X, y, folds, func(trX [][]float64, trY []float64, fitRNG *rand.Rand) predictor {
			m := NewGradientBoosting(candidate)
			m.Fit(trX, trY, fitRNG)
			return m
		}, rng)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

// searchForestParams is the random-forest counterpart of searchBoostParams
func searchForestParams(X [][]float64, y []float64, nIter, folds int, rng *rand.Rand) ForestParams {
	best := sampleForestParams(rng)
	bestScore := math.Inf(-1)

	for i := 0; i < nIter; i++ {
		candidate := sampleForestParams(rng)
		score := crossValScore(X, y, folds, func(trX [][]float64, trY []float64, fitRNG *rand.Rand) predictor {
			m := NewRandomForest(candidate)
			m.Fit(trX, trY, fitRNG)
			return m
		}, rng)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}

type predictor interface {
	Predict(x []float64) float64
}

type fitFunc func(X [][]float64, y []float64, rng *rand.Rand) predictor

// crossValScore computes the mean negative MSE over contiguous k-fold
// splits. Folds preserve chronological order: no shuffling.
func crossValScore(X [][]float64, y []float64, folds int, fit fitFunc, rng *rand.Rand) float64 {
	n := len(X)
	if folds < 2 || n < folds {
		return math.Inf(-1)
	}

	total := 0.0
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

		model := fit(trX, trY, rand.New(rand.NewSource(rng.Int63())))

		sse := 0.0
		for i := lo; i < hi; i++ {
			d := model.Predict(X[i]) - y[i]
			sse += d * d
		}
		total += -sse / float64(hi-lo)
	}
	return total / float64(folds)
}

// kFoldBounds splits [0,n) into k contiguous half-open ranges, the
// first n%k of them one element longer.
func kFoldBounds(n, k int) [][2]int {
	bounds := make([][2]int, 0, k)
	base := n / k
	extra := n % k
	start := 0
	for f := 0; f < k; f++ {
		size := base
		if f < extra {
			size++
		}
		bounds = append(bounds, [2]int{start, start + size})
		start += size
	}
	return bounds
}
