package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/logger"
)

func newTestLogger() *logger.Logger {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	return logger.New(cfg)
}

// fakeJob is a controllable job for scheduler tests
type fakeJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	block    chan struct{} // when set, Run blocks until closed
	err      error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func TestAddJobDuplicate(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "dup", schedule: "0 0 9 * * *"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Fatal("Expected error adding duplicate job")
	}
}

func TestAddJobInvalidSchedule(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "bad", schedule: "not a cron expr"}

	if err := s.AddJob(job); err == nil {
		t.Fatal("Expected error for invalid schedule")
	}
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "quick", schedule: "0 0 9 * * *"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.runJob(job)

	history, err := s.GetJobHistory("quick")
	if err != nil {
		t.Fatalf("GetJobHistory failed: %v", err)
	}
	if len(history.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(history.Results))
	}
	if !history.Results[0].Success {
		t.Error("Expected successful result")
	}

	state, err := s.GetJobState("quick")
	if err != nil {
		t.Fatalf("GetJobState failed: %v", err)
	}
	if state != StateIdle {
		t.Errorf("Expected idle after run, got %s", state)
	}
}

func TestRunJobFailureReturnsToIdle(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "flaky", schedule: "0 0 9 * * *", err: errors.New("boom")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.runJob(job)

	// A failure is one attempt, no internal retries
	if got := job.runs.Load(); got != 1 {
		t.Errorf("Expected 1 run, got %d", got)
	}

	history, _ := s.GetJobHistory("flaky")
	if history.Results[0].Success {
		t.Error("Expected failed result")
	}
	if history.Results[0].Error != "boom" {
		t.Errorf("Expected error message, got %q", history.Results[0].Error)
	}

	state, _ := s.GetJobState("flaky")
	if state != StateIdle {
		t.Errorf("Expected idle after failure, got %s", state)
	}
}

func TestOverlappingTriggerDropped(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "slow", schedule: "0 0 9 * * *", block: make(chan struct{})}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runJob(job)
	}()

	// Wait for the first run to hold the class
	for i := 0; i < 100; i++ {
		if state, _ := s.GetJobState("slow"); state == StateRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A second trigger while running is a no-op
	s.runJob(job)
	if got := job.runs.Load(); got != 1 {
		t.Errorf("Expected 1 run during overlap, got %d", got)
	}

	close(job.block)
	wg.Wait()

	if got := job.runs.Load(); got != 1 {
		t.Errorf("Expected 1 total run, got %d", got)
	}

	history, _ := s.GetJobHistory("slow")
	if len(history.Results) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(history.Results))
	}
}

func TestStopWaitsForInflightJobs(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "inflight", schedule: "0 0 9 * * *", block: make(chan struct{})}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	s.Start()

	go s.runJob(job)
	for i := 0; i < 100; i++ {
		if state, _ := s.GetJobState("inflight"); state == StateRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Release the job shortly after Stop begins waiting
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(job.block)
	}()

	start := time.Now()
	s.Stop(2 * time.Second)
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Stop returned before in-flight job finished (%v)", elapsed)
	}

	state, _ := s.GetJobState("inflight")
	if state != StateIdle {
		t.Errorf("Expected idle after stop, got %s", state)
	}
}

func TestStopTimesOut(t *testing.T) {
	s := New(newTestLogger())
	job := &fakeJob{name: "stuck", schedule: "0 0 9 * * *", block: make(chan struct{})}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	s.Start()

	go s.runJob(job)
	for i := 0; i < 100; i++ {
		if state, _ := s.GetJobState("stuck"); state == StateRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	start := time.Now()
	s.Stop(100 * time.Millisecond)
	elapsed := time.Since(start)
	if elapsed < 100*time.Millisecond || elapsed > time.Second {
		t.Errorf("Stop did not respect timeout bound: %v", elapsed)
	}

	close(job.block) // unstick the goroutine
}

func TestGetJobStats(t *testing.T) {
	s := New(newTestLogger())
	ok := &fakeJob{name: "ok", schedule: "0 0 9 * * *"}
	bad := &fakeJob{name: "bad", schedule: "0 0 10 * * *", err: errors.New("fail")}
	if err := s.AddJob(ok); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if err := s.AddJob(bad); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s.runJob(ok)
	s.runJob(ok)
	s.runJob(bad)

	stats := s.GetJobStats()
	if stats["ok"].TotalRuns != 2 || stats["ok"].SuccessCount != 2 {
		t.Errorf("Unexpected ok stats: %+v", stats["ok"])
	}
	if stats["bad"].FailureCount != 1 {
		t.Errorf("Unexpected bad stats: %+v", stats["bad"])
	}
	if stats["ok"].State != StateIdle {
		t.Errorf("Expected idle state in stats, got %s", stats["ok"].State)
	}
	if stats["ok"].LastSuccess == nil {
		t.Error("Expected LastSuccess to be set")
	}
	if stats["bad"].LastFailure == nil {
		t.Error("Expected LastFailure to be set")
	}
}
