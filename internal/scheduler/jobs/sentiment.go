package jobs

import (
	"context"

	"github.com/wonny/tradewind/internal/pipeline"
	"github.com/wonny/tradewind/pkg/logger"
)

// SentimentJob refreshes per-instrument news sentiment
// Default schedule: weekdays 4 AM, before the trading day
type SentimentJob struct {
	orch     *pipeline.Orchestrator
	schedule string
	logger   *logger.Logger
}

// NewSentimentJob creates a new sentiment refresh job
func NewSentimentJob(orch *pipeline.Orchestrator, schedule string, log *logger.Logger) *SentimentJob {
	return &SentimentJob{
		orch:     orch,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *SentimentJob) Name() string {
	return "sentiment_refresh"
}

// Schedule returns the cron schedule expression
func (j *SentimentJob) Schedule() string {
	return j.schedule
}

// Run refreshes sentiment scores for the whole instrument universe
func (j *SentimentJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled sentiment refresh")
	return j.orch.RunSentiment(ctx)
}
