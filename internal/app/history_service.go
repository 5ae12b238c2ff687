package app

import (
	"context"
	"fmt"

	"github.com/example/patchrun/internal/ports/primary"
	"github.com/example/patchrun/internal/ports/secondary"
)

// DefaultHistoryLimit caps history listings when no limit is given.
const DefaultHistoryLimit = 20

// HistoryServiceImpl implements the HistoryService interface.
type HistoryServiceImpl struct {
	repo secondary.HistoryRepository
}

// NewHistoryService creates a new HistoryService with injected dependencies.
func NewHistoryService(repo secondary.HistoryRepository) *HistoryServiceImpl {
	return &HistoryServiceImpl{repo: repo}
}

// ListRuns retrieves recent runs, newest first.
func (s *HistoryServiceImpl) ListRuns(ctx context.Context, filters primary.HistoryFilters) ([]*primary.Run, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := s.repo.ListRuns(ctx, secondary.RunFilters{
		WorkTree: filters.WorkTree,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*primary.Run, len(records))
	for i, r := range records {
		runs[i] = s.recordToRun(r)
	}
	return runs, nil
}

// GetRun retrieves a run together with its attempts.
func (s *HistoryServiceImpl) GetRun(ctx context.Context, runID string) (*primary.RunDetail, error) {
	record, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.ListAttempts(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	detail := &primary.RunDetail{
		Run:      s.recordToRun(record),
		Attempts: make([]*primary.RecordedAttempt, len(attempts)),
	}
	for i, a := range attempts {
		detail.Attempts[i] = &primary.RecordedAttempt{
			Seq:       a.Seq,
			Patch:     a.Patch,
			Status:    a.Status,
			Mode:      a.Mode,
			Stderr:    a.Stderr,
			CreatedAt: a.CreatedAt,
		}
	}
	return detail, nil
}

func (s *HistoryServiceImpl) recordToRun(r *secondary.RunRecord) *primary.Run {
	return &primary.Run{
		ID:           r.ID,
		WorkTree:     r.WorkTree,
		Mode:         r.Mode,
		Outcome:      r.Outcome,
		PatchCount:   r.PatchCount,
		AttemptCount: r.AttemptCount,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

// Ensure HistoryServiceImpl implements the interface
var _ primary.HistoryService = (*HistoryServiceImpl)(nil)
