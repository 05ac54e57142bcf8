package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/wonny/tradewind/internal/api/handlers"
	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/internal/decision"
	"github.com/wonny/tradewind/internal/scheduler"
	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/logger"
)

type noopJob struct{ name string }

func (j *noopJob) Name() string                  { return j.name }
func (j *noopJob) Schedule() string              { return "0 0 9 * * *" }
func (j *noopJob) Run(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T, withLedger bool) http.Handler {
	t.Helper()
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	log := logger.New(cfg)

	sched := scheduler.New(log)
	if err := sched.AddJob(&noopJob{name: "daily_trading"}); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	ledger := decision.NewLedger(filepath.Join(t.TempDir(), "decisions.csv"), log)
	if withLedger {
		err := ledger.Write([]contracts.Decision{
			{InstrumentID: "AAPL", PredictedReturn: 0.02, SentimentScore: 1, DecisionScore: 0.7, Action: contracts.ActionBuy},
		})
		if err != nil {
			t.Fatalf("ledger write failed: %v", err)
		}
	}

	return NewRouter(
		handlers.NewJobsHandler(sched, log),
		handlers.NewDecisionsHandler(ledger, log),
		log,
	)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body["status"])
	}
}

func TestListJobs(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Jobs map[string]scheduler.JobStats `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Decode body: %v", err)
	}
	if _, ok := body.Jobs["daily_trading"]; !ok {
		t.Errorf("Expected daily_trading in jobs, got %v", body.Jobs)
	}
}

func TestTriggerJob(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/daily_trading/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rec.Code)
	}
}

func TestTriggerUnknownJob(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/nope/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestLatestDecisions(t *testing.T) {
	router := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/decisions/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Count     int                  `json:"count"`
		Decisions []contracts.Decision `json:"decisions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Decode body: %v", err)
	}
	if body.Count != 1 || body.Decisions[0].InstrumentID != "AAPL" {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestLatestDecisionsWithoutLedger(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/decisions/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}
