package commands

import (
	"fmt"

	"github.com/wonny/tradewind/internal/decision"
	"github.com/wonny/tradewind/internal/execution"
	"github.com/wonny/tradewind/internal/external/alpaca"
	"github.com/wonny/tradewind/internal/external/yahoo"
	"github.com/wonny/tradewind/internal/features"
	"github.com/wonny/tradewind/internal/pipeline"
	"github.com/wonny/tradewind/internal/quant"
	"github.com/wonny/tradewind/internal/scheduler"
	"github.com/wonny/tradewind/internal/scheduler/jobs"
	"github.com/wonny/tradewind/internal/sentiment"
	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/database"
	"github.com/wonny/tradewind/pkg/httputil"
	"github.com/wonny/tradewind/pkg/logger"
	"github.com/wonny/tradewind/pkg/redis"
)

// dependencies holds the wired pipeline shared by all commands.
// ⭐ SSOT: 애플리케이션 조립은 여기서만
type dependencies struct {
	cfg    *config.Config
	log    *logger.Logger
	orch   *pipeline.Orchestrator
	ledger *decision.Ledger
	db     *database.DB  // nil when DATABASE_URL is not set
	rdb    *redis.Client // disabled client when REDIS_ENABLED=false
}

// Close releases external connections held by the dependency graph.
func (d *dependencies) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
}

// initDependencies builds the full pipeline from configuration.
func initDependencies() (*dependencies, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Redis (optional, sentiment score cache)
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	scoreCache := redis.NewCache(rdb, "tradewind")

	// 4. PostgreSQL (optional, decision run history)
	var db *database.DB
	var history *decision.Repository
	if cfg.Database.URL != "" {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		history = decision.NewRepository(db.Pool)
	}

	// 5. HTTP client and external APIs
	httpClient := httputil.New(cfg, log)
	market := yahoo.NewClient(cfg.MarketData, httpClient, log)
	broker := alpaca.NewClient(cfg.Broker, log)

	// 6. Feature engineering, model store, trainer
	featureEng := features.NewEngine(log)
	modelStore := quant.NewStore(cfg.Trading.ModelDir, log)
	trainer := quant.NewTrainer(featureEng, modelStore, cfg.Trading.ReportDir, log)

	// 7. Sentiment pipeline
	scoreStore := sentiment.NewStore(cfg.Trading.SentimentPath, scoreCache, redis.TTLDaily, log)
	aggregator := sentiment.NewAggregator(
		market, httpClient, sentiment.NewLexiconClassifier(),
		scoreStore, cfg.Trading.NewsWorkers, log,
	)

	// 8. Decision engine, ledger, executor
	engine, err := decision.NewEngine(cfg.Trading.QuantWeight, cfg.Trading.QualWeight, log)
	if err != nil {
		return nil, fmt.Errorf("create decision engine: %w", err)
	}
	ledger := decision.NewLedger(cfg.Trading.LedgerPath, log)
	executor := execution.NewExecutor(broker, ledger, cfg.Trading.OrderQuantity, cfg.HasBrokerCredentials(), log)

	// 9. Orchestrator
	orch := pipeline.NewOrchestrator(
		market,
		featureEng,
		trainer,
		modelStore,
		aggregator,
		scoreStore,
		engine,
		ledger,
		history,
		executor,
		pipeline.Config{
			TickersFile:  cfg.Trading.TickersFile,
			TrainWorkers: cfg.Trading.TrainWorkers,
			HistoryYears: cfg.Trading.HistoryYears,
			PredictDays:  cfg.Trading.PredictDays,
		},
		log,
	)

	return &dependencies{
		cfg:    cfg,
		log:    log,
		orch:   orch,
		ledger: ledger,
		db:     db,
		rdb:    rdb,
	}, nil
}

// initScheduler wires the pipeline and registers the three job classes.
func initScheduler() (*scheduler.Scheduler, *dependencies, error) {
	deps, err := initDependencies()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(deps.log)

	jobList := []scheduler.Job{
		jobs.NewSentimentJob(deps.orch, deps.cfg.Scheduler.SentimentCron, deps.log),
		jobs.NewTrainJob(deps.orch, deps.cfg.Scheduler.TrainCron, deps.log),
		jobs.NewTradeJob(deps.orch, deps.cfg.Scheduler.TradeCron, deps.log),
	}
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("register job %s: %w", job.Name(), err)
		}
	}

	return sched, deps, nil
}
