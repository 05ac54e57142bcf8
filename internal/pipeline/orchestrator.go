package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/internal/decision"
	"github.com/wonny/tradewind/internal/execution"
	"github.com/wonny/tradewind/internal/features"
	"github.com/wonny/tradewind/internal/quant"
	"github.com/wonny/tradewind/internal/sentiment"
	"github.com/wonny/tradewind/pkg/logger"
)

// MarketData provides OHLCV history for an instrument
type MarketData interface {
	FetchHistory(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error)
}

// Config holds the orchestration parameters
type Config struct {
	TickersFile  string
	TrainWorkers int
	HistoryYears int // training lookback
	PredictDays  int // prediction lookback
}

// Orchestrator coordinates the cross-cutting flows: batch training,
// sentiment refresh, and the daily decide-then-execute cycle.
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	market     MarketData
	featureEng *features.Engine
	trainer    *quant.Trainer
	models     *quant.Store
	aggregator *sentiment.Aggregator
	scores     *sentiment.Store
	engine     *decision.Engine
	ledger     *decision.Ledger
	history    *decision.Repository // nil when postgres is not configured
	executor   *execution.Executor

	cfg    Config
	logger *logger.Logger
}

// NewOrchestrator creates the pipeline orchestrator
func NewOrchestrator(
	market MarketData,
	featureEng *features.Engine,
	trainer *quant.Trainer,
	models *quant.Store,
	aggregator *sentiment.Aggregator,
	scores *sentiment.Store,
	engine *decision.Engine,
	ledger *decision.Ledger,
	history *decision.Repository,
	executor *execution.Executor,
	cfg Config,
	log *logger.Logger,
) *Orchestrator {
	if cfg.TrainWorkers <= 0 {
		cfg.TrainWorkers = 1
	}
	return &Orchestrator{
		market:     market,
		featureEng: featureEng,
		trainer:    trainer,
		models:     models,
		aggregator: aggregator,
		scores:     scores,
		engine:     engine,
		ledger:     ledger,
		history:    history,
		executor:   executor,
		cfg:        cfg,
		logger:     log.WithField("module", "pipeline"),
	}
}

// trainResult carries one instrument's training outcome
type trainResult struct {
	InstrumentID string
	Source       quant.TrainSource
	Error        error
}

// RunTraining retrains every instrument's model from fresh history.
// Each instrument is handled by exactly one worker, so per-instrument
// training stays single-writer. Individual failures are logged and
// skipped; the run fails only when no instrument trains.
func (o *Orchestrator) RunTraining(ctx context.Context) error {
	tickers, err := LoadTickers(o.cfg.TickersFile)
	if err != nil {
		return err
	}

	to := time.Now()
	from := to.AddDate(-o.cfg.HistoryYears, 0, 0)

	o.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": o.cfg.TrainWorkers,
		"from":    from.Format("2006-01-02"),
	}).Info("Starting batch training")

	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan trainResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < o.cfg.TrainWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.trainWorker(ctx, tickerCh, resultCh, from, to)
		}()
	}

	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var trained, failed int
	for result := range resultCh {
		if result.Error != nil {
			failed++
			continue
		}
		trained++
	}

	o.logger.WithFields(map[string]interface{}{
		"trained": trained,
		"failed":  failed,
	}).Info("Batch training completed")

	if trained == 0 {
		return fmt.Errorf("training failed for all %d instruments", len(tickers))
	}
	return nil
}

func (o *Orchestrator) trainWorker(ctx context.Context, tickerCh <-chan string, resultCh chan<- trainResult, from, to time.Time) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- trainResult{InstrumentID: ticker, Error: ctx.Err()}
			continue
		default:
		}

		series, err := o.market.FetchHistory(ctx, ticker, from, to)
		if err != nil {
			o.logger.WithError(err).WithField("ticker", ticker).
				Error("Failed to fetch training history")
			resultCh <- trainResult{InstrumentID: ticker, Error: err}
			continue
		}

		result, err := o.trainer.GetOrTrain(ctx, ticker, series, true)
		if err != nil {
			o.logger.WithError(err).WithField("ticker", ticker).
				Error("Training failed, prior model stays authoritative")
			resultCh <- trainResult{InstrumentID: ticker, Error: err}
			continue
		}

		resultCh <- trainResult{InstrumentID: ticker, Source: result.Source}
	}
}

// RunSentiment refreshes sentiment scores for the whole universe
func (o *Orchestrator) RunSentiment(ctx context.Context) error {
	tickers, err := LoadTickers(o.cfg.TickersFile)
	if err != nil {
		return err
	}

	_, err = o.aggregator.Refresh(ctx, tickers)
	return err
}

// RunDecisions produces a fresh decision ledger from the stored models
// and the latest sentiment run, then persists it (CSV replace + pg
// history when configured)
func (o *Orchestrator) RunDecisions(ctx context.Context) ([]contracts.Decision, error) {
	models, instruments, err := o.loadModels()
	if err != nil {
		return nil, err
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("no trained models available")
	}

	sentiments, err := o.scores.Read()
	if err != nil {
		if !errors.Is(err, sentiment.ErrScoresNotFound) {
			return nil, fmt.Errorf("read sentiment scores: %w", err)
		}
		o.logger.Warn("No sentiment scores found, every instrument will be skipped")
		sentiments = map[string]float64{}
	}

	predict := func(ctx context.Context, instrumentID string) (float64, error) {
		return o.predictReturn(ctx, models[instrumentID], instrumentID)
	}

	decisions := o.engine.RunBatch(ctx, instruments, predict, sentiments)

	if err := o.ledger.Write(decisions); err != nil {
		return nil, fmt.Errorf("write decision ledger: %w", err)
	}

	if o.history != nil {
		run := contracts.DecisionRun{
			RunID:     time.Now().UTC().Format("20060102T150405Z"),
			CreatedAt: time.Now(),
			Decisions: decisions,
		}
		if err := o.history.SaveRun(ctx, run); err != nil {
			o.logger.WithError(err).Warn("Failed to append decision run history")
		}
	}

	o.logger.WithField("decisions", len(decisions)).Info("Decision run completed")
	return decisions, nil
}

// RunTrading runs the daily cycle: fresh decisions, then execution
func (o *Orchestrator) RunTrading(ctx context.Context) error {
	if _, err := o.RunDecisions(ctx); err != nil {
		return err
	}

	report, err := o.executor.Execute(ctx)
	if err != nil {
		return err
	}

	o.logger.WithFields(map[string]interface{}{
		"decisions": len(report.Results),
		"submitted": report.SubmittedCount(),
	}).Info("Trading cycle completed")
	return nil
}

// loadModels drains the model store stream into a lookup map, keeping
// the stream's id ordering
func (o *Orchestrator) loadModels() (map[string]*quant.TrainedModel, []string, error) {
	stream, err := o.models.Stream()
	if err != nil {
		return nil, nil, fmt.Errorf("open model stream: %w", err)
	}

	models := make(map[string]*quant.TrainedModel)
	var instruments []string
	for stream.Next() {
		models[stream.InstrumentID()] = stream.Model()
		instruments = append(instruments, stream.InstrumentID())
	}
	if err := stream.Err(); err != nil {
		// Unreadable artifacts were skipped during iteration
		o.logger.WithError(err).Warn("Some model artifacts could not be loaded")
	}

	return models, instruments, nil
}

// predictReturn fetches the recent window and applies the instrument's
// cached model to its latest feature row
func (o *Orchestrator) predictReturn(ctx context.Context, model *quant.TrainedModel, instrumentID string) (float64, error) {
	if model == nil {
		return 0, fmt.Errorf("no model for %s", instrumentID)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -o.cfg.PredictDays)

	series, err := o.market.FetchHistory(ctx, instrumentID, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch recent history: %w", err)
	}

	rows, err := o.featureEng.Compute(series)
	if err != nil {
		return 0, fmt.Errorf("compute features: %w", err)
	}
	row, ok := features.Latest(rows)
	if !ok {
		return 0, fmt.Errorf("no usable feature row for %s", instrumentID)
	}

	return quant.Predict(model, row), nil
}
