package jobs

import (
	"context"

	"github.com/wonny/tradewind/internal/pipeline"
	"github.com/wonny/tradewind/pkg/logger"
)

// TrainJob retrains the per-instrument signal models
// Default schedule: Saturday 10 AM, while markets are closed
type TrainJob struct {
	orch     *pipeline.Orchestrator
	schedule string
	logger   *logger.Logger
}

// NewTrainJob creates a new model training job
func NewTrainJob(orch *pipeline.Orchestrator, schedule string, log *logger.Logger) *TrainJob {
	return &TrainJob{
		orch:     orch,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *TrainJob) Name() string {
	return "model_training"
}

// Schedule returns the cron schedule expression
func (j *TrainJob) Schedule() string {
	return j.schedule
}

// Run retrains every instrument's model from fresh history
func (j *TrainJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled model training")
	return j.orch.RunTraining(ctx)
}
