package quant

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/internal/features"
)

// fastTrainer keeps the search protocol intact but shrinks it so the
// tests finish quickly.
func fastTrainer(t *testing.T) *Trainer {
	t.Helper()
	log := newTestLogger()
	trainer := NewTrainer(features.NewEngine(log), NewStore(t.TempDir(), log), "", log)
	trainer.SearchIters = 1
	trainer.CVFolds = 2
	trainer.StackFolds = 2
	return trainer
}

func trainSeries(symbol string, n int) *contracts.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]contracts.Candle, n)
	for i := 0; i < n; i++ {
		price := 100.0 + 0.3*float64(i) + 4.0*math.Sin(float64(i)*0.7)
		candles[i] = contracts.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1200 + 80*float64(i%5),
		}
	}
	return &contracts.PriceSeries{Symbol: symbol, Candles: candles}
}

func TestGetOrTrainRetrainsThenHitsCache(t *testing.T) {
	trainer := fastTrainer(t)
	series := trainSeries("AAPL", 120)

	first, err := trainer.GetOrTrain(context.Background(), "AAPL", series, false)
	if err != nil {
		t.Fatalf("First GetOrTrain failed: %v", err)
	}
	if first.Source != TrainSourceRetrained {
		t.Errorf("First source = %s, want %s", first.Source, TrainSourceRetrained)
	}
	if !trainer.store.Exists("AAPL") {
		t.Error("Artifact missing after training")
	}

	second, err := trainer.GetOrTrain(context.Background(), "AAPL", series, false)
	if err != nil {
		t.Fatalf("Second GetOrTrain failed: %v", err)
	}
	if second.Source != TrainSourceCacheHit {
		t.Errorf("Second source = %s, want %s", second.Source, TrainSourceCacheHit)
	}
	if !second.Model.Meta.TrainedAt.Equal(first.Model.Meta.TrainedAt) {
		t.Error("Cache hit returned a different artifact than the one persisted")
	}

	third, err := trainer.GetOrTrain(context.Background(), "AAPL", series, true)
	if err != nil {
		t.Fatalf("Forced GetOrTrain failed: %v", err)
	}
	if third.Source != TrainSourceRetrained {
		t.Errorf("Forced source = %s, want %s", third.Source, TrainSourceRetrained)
	}
}

func TestGetOrTrainTooFewRows(t *testing.T) {
	trainer := fastTrainer(t)

	// 25 bars survive cleaning with far fewer usable rows than the
	// training minimum.
	if _, err := trainer.GetOrTrain(context.Background(), "AAPL", trainSeries("AAPL", 25), false); err == nil {
		t.Error("Expected error for short history")
	}
}

func TestTrainedModelPredictsFinite(t *testing.T) {
	trainer := fastTrainer(t)
	series := trainSeries("AAPL", 120)

	result, err := trainer.GetOrTrain(context.Background(), "AAPL", series, false)
	if err != nil {
		t.Fatalf("GetOrTrain failed: %v", err)
	}

	rows, err := features.NewEngine(newTestLogger()).Compute(series)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	latest, ok := features.Latest(rows)
	if !ok {
		t.Fatal("No usable rows")
	}

	pred := Predict(result.Model, latest)
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		t.Errorf("Prediction not finite: %v", pred)
	}
	// Daily returns of the synthetic series stay small; a sane model
	// should not predict far outside that range.
	if math.Abs(pred) > 0.5 {
		t.Errorf("Prediction implausibly large: %v", pred)
	}
}

func TestEvaluateConstantModel(t *testing.T) {
	model := &StackingModel{
		Boost:  &GradientBoosting{},
		Forest: &RandomForest{},
		Meta:   &LinearModel{Intercept: 0.01, Coef: []float64{0, 0}},
	}
	X := [][]float64{{0}, {0}, {0}, {0}}
	y := []float64{0.01, 0.02, 0.05, 0.10}

	m := evaluate(model, X, y)

	// Errors: 0, 0.01, 0.04, 0.09
	if m.WithinOnePct != 0.5 {
		t.Errorf("WithinOnePct = %v, want 0.5", m.WithinOnePct)
	}
	if m.WithinFivePct != 0.75 {
		t.Errorf("WithinFivePct = %v, want 0.75", m.WithinFivePct)
	}
	wantRMSE := math.Sqrt((0.01*0.01 + 0.04*0.04 + 0.09*0.09) / 4)
	if math.Abs(m.RMSE-wantRMSE) > 1e-12 {
		t.Errorf("RMSE = %v, want %v", m.RMSE, wantRMSE)
	}
}

func TestWriteReport(t *testing.T) {
	log := newTestLogger()
	reportDir := t.TempDir()
	trainer := NewTrainer(features.NewEngine(log), NewStore(t.TempDir(), log), reportDir, log)

	trainer.writeReport(constantModel("AAPL", 0.01))

	path := filepath.Join(reportDir, "AAPL_training_results.md")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Report not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("Report is empty")
	}
}
