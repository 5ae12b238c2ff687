package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/patchrun/internal/adapters/sqlite"
	"github.com/example/patchrun/internal/ports/secondary"
)

func TestHistoryRepository_CreateAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)
	ctx := context.Background()

	err := repo.CreateRun(ctx, &secondary.RunRecord{
		ID:         "run-abc",
		WorkTree:   "/src/app",
		Mode:       "apply+force",
		PatchCount: 2,
	})
	require.NoError(t, err)

	run, err := repo.GetRun(ctx, "run-abc")
	require.NoError(t, err)

	assert.Equal(t, "/src/app", run.WorkTree)
	assert.Equal(t, "apply+force", run.Mode)
	assert.Equal(t, "running", run.Outcome)
	assert.Equal(t, 2, run.PatchCount)
	assert.Equal(t, 0, run.AttemptCount)
	assert.NotEmpty(t, run.StartedAt)
	assert.Empty(t, run.FinishedAt)
}

func TestHistoryRepository_GetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)

	_, err := repo.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestHistoryRepository_FinishRun(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)
	ctx := context.Background()
	runID := seedRun(t, db, "", "")

	require.NoError(t, repo.FinishRun(ctx, runID, "halted"))

	run, err := repo.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "halted", run.Outcome)
	assert.NotEmpty(t, run.FinishedAt)
}

func TestHistoryRepository_FinishRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)

	err := repo.FinishRun(context.Background(), "missing", "completed")
	require.Error(t, err)
}

func TestHistoryRepository_FinishRun_RejectsUnknownOutcome(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)
	runID := seedRun(t, db, "", "")

	err := repo.FinishRun(context.Background(), runID, "exploded")
	require.Error(t, err)
}

func TestHistoryRepository_RecordAndListAttempts(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)
	ctx := context.Background()
	runID := seedRun(t, db, "", "")

	attempts := []*secondary.AttemptRecord{
		{RunID: runID, Seq: 2, Patch: "patches/b.patch", Status: "FAILED", Mode: "apply", Stderr: "error: patch does not apply"},
		{RunID: runID, Seq: 1, Patch: "patches/a.patch", Status: "APPLIED", Mode: "apply"},
	}
	for _, a := range attempts {
		require.NoError(t, repo.RecordAttempt(ctx, a))
	}

	got, err := repo.ListAttempts(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Seq)
	assert.Equal(t, "patches/a.patch", got[0].Patch)
	assert.Empty(t, got[0].Stderr)
	assert.Equal(t, "FAILED", got[1].Status)
	assert.Equal(t, "error: patch does not apply", got[1].Stderr)

	run, err := repo.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.AttemptCount)
}

func TestHistoryRepository_RecordAttempt_DuplicateSeq(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)
	ctx := context.Background()
	runID := seedRun(t, db, "", "")

	a := &secondary.AttemptRecord{RunID: runID, Seq: 1, Patch: "patches/a.patch", Status: "APPLIED", Mode: "apply"}
	require.NoError(t, repo.RecordAttempt(ctx, a))
	assert.Error(t, repo.RecordAttempt(ctx, a))
}

func TestHistoryRepository_RecordAttempt_UnknownRun(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)

	err := repo.RecordAttempt(context.Background(), &secondary.AttemptRecord{
		RunID: "ghost", Seq: 1, Patch: "p.patch", Status: "APPLIED", Mode: "apply",
	})
	assert.Error(t, err)
}

func TestHistoryRepository_ListRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewHistoryRepository(db)
	ctx := context.Background()

	seedRun(t, db, "run-1", "/src/app")
	seedRun(t, db, "run-2", "/src/other")
	seedRun(t, db, "run-3", "/src/app")

	all, err := repo.ListRuns(ctx, secondary.RunFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-3", all[0].ID, "newest run first")

	filtered, err := repo.ListRuns(ctx, secondary.RunFilters{WorkTree: "/src/app"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, "/src/app", r.WorkTree)
	}

	limited, err := repo.ListRuns(ctx, secondary.RunFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
