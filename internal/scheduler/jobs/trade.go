package jobs

import (
	"context"

	"github.com/wonny/tradewind/internal/pipeline"
	"github.com/wonny/tradewind/pkg/logger"
)

// TradeJob runs the daily decide-then-execute cycle
// Default schedule: 9 AM daily
type TradeJob struct {
	orch     *pipeline.Orchestrator
	schedule string
	logger   *logger.Logger
}

// NewTradeJob creates a new trading job
func NewTradeJob(orch *pipeline.Orchestrator, schedule string, log *logger.Logger) *TradeJob {
	return &TradeJob{
		orch:     orch,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *TradeJob) Name() string {
	return "daily_trading"
}

// Schedule returns the cron schedule expression
func (j *TradeJob) Schedule() string {
	return j.schedule
}

// Run produces a fresh decision ledger and executes it
func (j *TradeJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled trading cycle")
	return j.orch.RunTrading(ctx)
}
