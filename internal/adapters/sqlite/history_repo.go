// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/patchrun/internal/ports/secondary"
)

// HistoryRepository implements secondary.HistoryRepository with SQLite.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// CreateRun persists a new run in the running state.
func (r *HistoryRepository) CreateRun(ctx context.Context, run *secondary.RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, work_tree, mode, outcome, patch_count) VALUES (?, ?, ?, 'running', ?)`,
		run.ID,
		run.WorkTree,
		run.Mode,
		run.PatchCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// FinishRun stores the terminal outcome of a run.
func (r *HistoryRepository) FinishRun(ctx context.Context, runID, outcome string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET outcome = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`,
		outcome, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// RecordAttempt persists one apply attempt of a run.
func (r *HistoryRepository) RecordAttempt(ctx context.Context, attempt *secondary.AttemptRecord) error {
	var stderr sql.NullString
	if attempt.Stderr != "" {
		stderr = sql.NullString{String: attempt.Stderr, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, seq, patch, status, mode, stderr) VALUES (?, ?, ?, ?, ?, ?)`,
		attempt.RunID,
		attempt.Seq,
		attempt.Patch,
		attempt.Status,
		attempt.Mode,
		stderr,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

const runColumns = `r.id, r.work_tree, r.mode, r.outcome, r.patch_count,
	(SELECT COUNT(*) FROM attempts a WHERE a.run_id = r.id),
	r.started_at, r.finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*secondary.RunRecord, error) {
	var (
		startedAt  time.Time
		finishedAt sql.NullTime
	)

	record := &secondary.RunRecord{}
	err := row.Scan(&record.ID,
		&record.WorkTree,
		&record.Mode,
		&record.Outcome,
		&record.PatchCount,
		&record.AttemptCount,
		&startedAt,
		&finishedAt)
	if err != nil {
		return nil, err
	}

	record.StartedAt = startedAt.Format(time.RFC3339)
	if finishedAt.Valid {
		record.FinishedAt = finishedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}

// GetRun retrieves a run by its ID.
func (r *HistoryRepository) GetRun(ctx context.Context, runID string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.id = ?`,
		runID,
	)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return record, nil
}

// ListRuns retrieves runs matching the given filters, newest first.
func (r *HistoryRepository) ListRuns(ctx context.Context, filters secondary.RunFilters) ([]*secondary.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs r WHERE 1=1`
	args := []any{}

	if filters.WorkTree != "" {
		query += " AND r.work_tree = ?"
		args = append(args, filters.WorkTree)
	}

	query += " ORDER BY r.started_at DESC, r.rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, record)
	}

	return runs, rows.Err()
}

// ListAttempts retrieves the attempts of a run in processing order.
func (r *HistoryRepository) ListAttempts(ctx context.Context, runID string) ([]*secondary.AttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, seq, patch, status, mode, stderr, created_at FROM attempts WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*secondary.AttemptRecord
	for rows.Next() {
		var (
			stderr    sql.NullString
			createdAt time.Time
		)

		record := &secondary.AttemptRecord{}
		err := rows.Scan(&record.RunID,
			&record.Seq,
			&record.Patch,
			&record.Status,
			&record.Mode,
			&stderr,
			&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		record.Stderr = stderr.String
		record.CreatedAt = createdAt.Format(time.RFC3339)

		attempts = append(attempts, record)
	}

	return attempts, rows.Err()
}

// Ensure HistoryRepository implements the interface
var _ secondary.HistoryRepository = (*HistoryRepository)(nil)
