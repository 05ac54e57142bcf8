package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tradewind/internal/scheduler"
	"github.com/wonny/tradewind/pkg/logger"
)

// JobsHandler exposes scheduler state over HTTP
// ⭐ SSOT: 스케줄러 API 핸들러는 여기서만
type JobsHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(sched *scheduler.Scheduler, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		scheduler: sched,
		logger:    log,
	}
}

// List returns statistics for every registered job class
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	stats := h.scheduler.GetJobStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jobs": stats,
	})
}

// Trigger starts a job immediately, outside its schedule. The job
// still honors the no-overlap rule: a running class drops the trigger.
// POST /api/jobs/{name}/run
func (h *JobsHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.scheduler.RunJob(name); err != nil {
		h.logger.WithError(err).WithField("job", name).Warn("Manual job trigger rejected")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	h.logger.WithField("job", name).Info("Job triggered manually")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
