package secondary

import "context"

// HistoryRepository defines the secondary port for run history persistence.
// Attempts are immutable once recorded; a run is updated once when it finishes.
type HistoryRepository interface {
	// CreateRun persists a new run in the running state.
	CreateRun(ctx context.Context, run *RunRecord) error

	// FinishRun stores the terminal outcome of a run.
	FinishRun(ctx context.Context, runID, outcome string) error

	// RecordAttempt persists one apply attempt of a run.
	RecordAttempt(ctx context.Context, attempt *AttemptRecord) error

	// GetRun retrieves a run by its ID.
	GetRun(ctx context.Context, runID string) (*RunRecord, error)

	// ListRuns retrieves runs matching the given filters, newest first.
	ListRuns(ctx context.Context, filters RunFilters) ([]*RunRecord, error)

	// ListAttempts retrieves the attempts of a run in processing order.
	ListAttempts(ctx context.Context, runID string) ([]*AttemptRecord, error)
}

// RunRecord represents a run as stored in persistence.
type RunRecord struct {
	ID           string
	WorkTree     string
	Mode         string
	Outcome      string
	PatchCount   int
	AttemptCount int // populated by reads only
	StartedAt    string
	FinishedAt   string // Empty string means null
}

// AttemptRecord represents a single apply attempt as stored in persistence.
type AttemptRecord struct {
	RunID     string
	Seq       int
	Patch     string
	Status    string
	Mode      string
	Stderr    string // Empty string means null
	CreatedAt string
}

// RunFilters contains filter options for querying runs.
type RunFilters struct {
	WorkTree string
	Limit    int
}
