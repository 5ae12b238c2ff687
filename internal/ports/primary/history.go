package primary

import "context"

// HistoryService defines the primary port for run history queries.
type HistoryService interface {
	// ListRuns retrieves recent runs, newest first.
	ListRuns(ctx context.Context, filters HistoryFilters) ([]*Run, error)

	// GetRun retrieves a run together with its attempts.
	GetRun(ctx context.Context, runID string) (*RunDetail, error)
}

// Run represents a recorded run at the port boundary.
type Run struct {
	ID           string
	WorkTree     string
	Mode         string
	Outcome      string
	PatchCount   int
	AttemptCount int
	StartedAt    string
	FinishedAt   string
}

// RunDetail is a run with its attempts in processing order.
type RunDetail struct {
	Run      *Run
	Attempts []*RecordedAttempt
}

// RecordedAttempt represents a persisted attempt.
type RecordedAttempt struct {
	Seq       int
	Patch     string
	Status    string
	Mode      string
	Stderr    string
	CreatedAt string
}

// HistoryFilters contains filter options for querying runs.
type HistoryFilters struct {
	WorkTree string // empty means every working tree
	Limit    int
}
