package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bull/docqa-server/internal/ingest"
)

// Ingester runs one incremental ingestion pass.
type Ingester interface {
	Run(ctx context.Context) (*ingest.Result, error)
}

// RunState describes the lifecycle of a background ingestion run.
type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
	StateDone    RunState = "done"
	StateFailed  RunState = "failed"
)

// StatusSnapshot is the observable state of the runner.
type StatusSnapshot struct {
	State      RunState       `json:"state"`
	LastResult *ingest.Result `json:"last_result,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
}

// Runner makes ingestion triggerable as an explicit task with observable
// completion instead of a detached fire-and-forget call. The coordinator
// itself serializes concurrent runs; the runner only tracks status.
type Runner struct {
	ingester Ingester
	logger   *slog.Logger

	mu         sync.Mutex
	state      RunState
	lastResult *ingest.Result
	lastErr    error
}

// NewRunner creates a Runner in the idle state.
func NewRunner(ingester Ingester, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		ingester: ingester,
		logger:   logger,
		state:    StateIdle,
	}
}

// RunNow performs a synchronous ingestion run and records its outcome.
func (r *Runner) RunNow(ctx context.Context) (*ingest.Result, error) {
	r.setRunning()
	result, err := r.ingester.Run(ctx)
	r.record(result, err)
	return result, err
}

// Trigger starts a background run unless one is already in flight.
// It returns true when a new run was started.
func (r *Runner) Trigger() bool {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return false
	}
	r.state = StateRunning
	r.mu.Unlock()

	go func() {
		result, err := r.ingester.Run(context.Background())
		if err != nil {
			r.logger.Error("background ingestion failed", "error", err)
		}
		r.record(result, err)
	}()
	return true
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() StatusSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := StatusSnapshot{
		State:      r.state,
		LastResult: r.lastResult,
	}
	if r.lastErr != nil {
		snapshot.LastError = r.lastErr.Error()
	}
	return snapshot
}

func (r *Runner) setRunning() {
	r.mu.Lock()
	r.state = StateRunning
	r.mu.Unlock()
}

func (r *Runner) record(result *ingest.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastErr = err
	if err != nil {
		r.state = StateFailed
		return
	}
	r.state = StateDone
	r.lastResult = result
}
