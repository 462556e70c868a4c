// Package store persists completed simulation runs so that policies can be
// compared across invocations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cpu-sched/cpu-sched/sim"
)

// Run is one completed simulation: its configuration, the end-of-run summary and
// the per-process statistics in completion order.
type Run struct {
	ID             string              `json:"id"`
	Label          string              `json:"label"`
	CreatedAt      time.Time           `json:"created_at"`
	Policy         string              `json:"policy"`
	Quantum        int                 `json:"quantum"`
	AgingEnabled   bool                `json:"aging_enabled"`
	AgingThreshold int                 `json:"aging_threshold"`
	Summary        sim.Summary         `json:"summary"`
	Processes      []sim.FinishedEntry `json:"processes,omitempty"`
}

// NewRun captures the current state of a simulator as a Run with a fresh ID.
func NewRun(label string, s *sim.Simulator) *Run {
	cfg := s.Config()
	return &Run{
		ID:             "run_" + uuid.New().String(),
		Label:          label,
		CreatedAt:      time.Now().UTC(),
		Policy:         cfg.Policy.String(),
		Quantum:        cfg.Quantum,
		AgingEnabled:   cfg.AgingEnabled,
		AgingThreshold: cfg.AgingThreshold,
		Summary:        s.Summarize(),
		Processes:      s.Snapshot().Finished,
	}
}

// ListOptions bounds a listing query.
type ListOptions struct {
	Limit  int
	Offset int
	Policy string // filter; empty = all
}

// Clamp applies default and maximum limits.
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 500 {
		o.Limit = 500
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Store defines the persistence layer for simulation runs.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, opts ListOptions) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error

	Close() error
	Migrate(ctx context.Context) error
}
