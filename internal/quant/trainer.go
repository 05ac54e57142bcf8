package quant

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/internal/features"
	"github.com/wonny/tradewind/pkg/logger"
)

// minTrainRows is the smallest cleaned feature table worth fitting
const minTrainRows = 30

// TrainSource tags how a model was obtained, so callers can never
// conflate a cache hit with a fresh retrain.
type TrainSource string

const (
	TrainSourceCacheHit  TrainSource = "cache_hit"
	TrainSourceRetrained TrainSource = "retrained"
)

// TrainResult is the tagged outcome of GetOrTrain
type TrainResult struct {
	Source TrainSource
	Model  *TrainedModel
}

// Trainer owns the train-or-load lifecycle of per-instrument models.
// Concurrent retrains of the same instrument are not supported; the
// pipeline orchestrator schedules at most one training run per
// instrument at a time.
type Trainer struct {
	engine    *features.Engine
	store     *Store
	reportDir string
	logger    *logger.Logger

	// Search configuration. Seed fixes every random draw so a retrain
	// over identical data reproduces the same model.
	SearchIters int
	CVFolds     int
	StackFolds  int
	Seed        int64
}

// NewTrainer creates a trainer with the default search configuration
func NewTrainer(engine *features.Engine, store *Store, reportDir string, log *logger.Logger) *Trainer {
	return &Trainer{
		engine:      engine,
		store:       store,
		reportDir:   reportDir,
		logger:      log,
		SearchIters: 25,
		CVFolds:     3,
		StackFolds:  5,
		Seed:        42,
	}
}

// GetOrTrain returns the persisted model untouched when one exists and
// force is false; otherwise it runs the full training protocol and
// persists the result. Training errors leave any previous artifact
// authoritative.
func (t *Trainer) GetOrTrain(ctx context.Context, instrumentID string, series *contracts.PriceSeries, force bool) (*TrainResult, error) {
	if t.store.Exists(instrumentID) && !force {
		model, err := t.store.Load(instrumentID)
		if err != nil {
			return nil, err
		}
		t.logger.WithField("instrument", instrumentID).Debug("Model cache hit")
		return &TrainResult{Source: TrainSourceCacheHit, Model: model}, nil
	}

	model, err := t.train(ctx, instrumentID, series)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", instrumentID, err)
	}

	if err := t.store.Save(model); err != nil {
		return nil, err
	}
	t.writeReport(model)

	return &TrainResult{Source: TrainSourceRetrained, Model: model}, nil
}

func (t *Trainer) train(ctx context.Context, instrumentID string, series *contracts.PriceSeries) (*TrainedModel, error) {
	rows, err := t.engine.Compute(series)
	if err != nil {
		return nil, err
	}
	if len(rows) < minTrainRows {
		return nil, fmt.Errorf("only %d usable rows, need %d", len(rows), minTrainRows)
	}

	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i := range rows {
		X[i] = rows[i].Vector()
		y[i] = rows[i].DailyReturn
	}

	// Chronological 80/20 split, no shuffling
	cut := int(float64(len(rows)) * 0.8)
	trainX, testX := X[:cut], X[cut:]
	trainY, testY := y[:cut], y[cut:]

	rng := rand.New(rand.NewSource(t.Seed))

	started := time.Now()
	bp := searchBoostParams(trainX, trainY, t.SearchIters, t.CVFolds, rng)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.logger.WithFields(map[string]interface{}{
		"instrument": instrumentID,
		"params":     bp,
	}).Debug("Best gradient boosting parameters")

	fp := searchForestParams(trainX, trainY, t.SearchIters, t.CVFolds, rng)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.logger.WithFields(map[string]interface{}{
		"instrument": instrumentID,
		"params":     fp,
	}).Debug("Best random forest parameters")

	stacked := fitStacking(trainX, trainY, bp, fp, t.StackFolds, rng)
	metrics := evaluate(stacked, testX, testY)

	t.logger.WithFields(map[string]interface{}{
		"instrument":  instrumentID,
		"rmse":        metrics.RMSE,
		"within_1pct": metrics.WithinOnePct,
		"within_5pct": metrics.WithinFivePct,
		"duration":    time.Since(started),
	}).Info("Model trained")

	return &TrainedModel{
		Meta: contracts.ModelMeta{
			InstrumentID:   instrumentID,
			TrainedAt:      time.Now().UTC(),
			WindowStart:    rows[0].Timestamp,
			WindowEnd:      rows[len(rows)-1].Timestamp,
			TrainRows:      cut,
			TestRows:       len(rows) - cut,
			FeatureColumns: features.Columns,
		},
		Metrics: metrics,
		Model:   stacked,
	}, nil
}

// Predict applies a trained model to one feature row. Pure: no state is
// read or written beyond the arguments.
func Predict(m *TrainedModel, row features.Row) float64 {
	return m.Model.Predict(row.Vector())
}

// evaluate computes held-out RMSE and the fraction of predictions
// within the fixed absolute-error thresholds.
func evaluate(model *StackingModel, X [][]float64, y []float64) contracts.TrainMetrics {
	if len(y) == 0 {
		return contracts.TrainMetrics{}
	}

	var sse float64
	var within1, within5 int
	for i := range y {
		err := model.Predict(X[i]) - y[i]
		sse += err * err
		if math.Abs(err) <= 0.01 {
			within1++
		}
		if math.Abs(err) <= 0.05 {
			within5++
		}
	}
	n := float64(len(y))
	return contracts.TrainMetrics{
		RMSE:          math.Sqrt(sse / n),
		WithinOnePct:  float64(within1) / n,
		WithinFivePct: float64(within5) / n,
	}
}

// writeReport emits the per-instrument markdown training summary.
// Failure to write the report never fails the training run.
func (t *Trainer) writeReport(m *TrainedModel) {
	if t.reportDir == "" {
		return
	}
	if err := os.MkdirAll(t.reportDir, 0o755); err != nil {
		t.logger.WithError(err).Warn("Could not create report dir")
		return
	}

	path := filepath.Join(t.reportDir, m.Meta.InstrumentID+"_training_results.md")
	body := fmt.Sprintf(`# Model Training Results for %s

## Root Mean Squared Error (RMSE)
- **RMSE**: %.4f

## Prediction Accuracy Within Thresholds
- **Percentage within ±0.01**: %.2f%%
- **Percentage within ±0.05**: %.2f%%

## Training Window
- %s ~ %s (%d train rows, %d test rows)
`,
		m.Meta.InstrumentID,
		m.Metrics.RMSE,
		m.Metrics.WithinOnePct*100,
		m.Metrics.WithinFivePct*100,
		m.Meta.WindowStart.Format("2006-01-02"),
		m.Meta.WindowEnd.Format("2006-01-02"),
		m.Meta.TrainRows,
		m.Meta.TestRows,
	)

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.logger.WithError(err).WithField("path", path).Warn("Could not write training report")
	}
}
