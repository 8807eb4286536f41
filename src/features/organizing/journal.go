package organizing

import (
	"context"
	"time"
)

// Move is one recorded file move.
type Move struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	At          time.Time `json:"at"`
}

// Run is one recorded reorder run.
type Run struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Moved    int       `json:"moved"`
	Failed   int       `json:"failed"`
}

// Journal persists runs and their moves so past sessions can be
// inspected later.
type Journal interface {
	// BeginRun records the start of a run.
	BeginRun(ctx context.Context, id, source string) error
	// RecordMove records one completed move.
	RecordMove(ctx context.Context, move Move) error
	// FinishRun closes a run with its final counters.
	FinishRun(ctx context.Context, id string, moved, failed int) error
	// RecentRuns returns the most recent runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
	// RecentMoves returns recorded moves, newest first, optionally
	// filtered by run ID.
	RecentMoves(ctx context.Context, runID string, limit int) ([]Move, error)
}
