package app

import (
	"context"
	"errors"
	"fmt"

	corepatch "github.com/example/patchrun/internal/core/patch"
	"github.com/example/patchrun/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.WorkspaceAdapter  = (*mockWorkspaceAdapter)(nil)
	_ secondary.Applier           = (*mockApplier)(nil)
	_ secondary.PatchLog          = (*mockPatchLog)(nil)
	_ secondary.HistoryRepository = (*mockHistoryRepository)(nil)
	_ secondary.ProgressReporter  = (*recordingReporter)(nil)
)

// mockWorkspaceAdapter implements secondary.WorkspaceAdapter for testing.
type mockWorkspaceAdapter struct {
	patches     []string
	snapshots   []corepatch.RejectSnapshot // served in order; the last repeats
	ensureErr   error
	discoverErr error

	discoverCalls int
}

func (m *mockWorkspaceAdapter) EnsureRepository(ctx context.Context) error {
	return m.ensureErr
}

func (m *mockWorkspaceAdapter) DiscoverPatches(ctx context.Context) ([]string, error) {
	m.discoverCalls++
	if m.discoverErr != nil {
		return nil, m.discoverErr
	}
	return m.patches, nil
}

func (m *mockWorkspaceAdapter) SnapshotRejects(ctx context.Context) (corepatch.RejectSnapshot, error) {
	if len(m.snapshots) == 0 {
		return corepatch.RejectSnapshot{}, nil
	}
	snap := m.snapshots[0]
	if len(m.snapshots) > 1 {
		m.snapshots = m.snapshots[1:]
	}
	return snap, nil
}

func (m *mockWorkspaceAdapter) Root() string { return "/work/tree" }

func (m *mockWorkspaceAdapter) RelativePatchDir() string { return "patches" }

// applyCall records one invocation of the applier.
type applyCall struct {
	Step  corepatch.Step
	Patch string
}

// mockApplier implements secondary.Applier with scripted results.
// Unscripted invocations succeed.
type mockApplier struct {
	failures map[applyCall]string // value is the stderr to report
	errs     map[applyCall]error
	calls    []applyCall
}

func newMockApplier() *mockApplier {
	return &mockApplier{
		failures: make(map[applyCall]string),
		errs:     make(map[applyCall]error),
	}
}

func (m *mockApplier) fail(step corepatch.Step, patch, stderr string) *mockApplier {
	m.failures[applyCall{step, patch}] = stderr
	return m
}

func (m *mockApplier) invoke(step corepatch.Step, patch string) (secondary.ApplyResult, error) {
	call := applyCall{step, patch}
	m.calls = append(m.calls, call)
	if err, ok := m.errs[call]; ok {
		return secondary.ApplyResult{ExitCode: -1}, err
	}
	if stderr, ok := m.failures[call]; ok {
		return secondary.ApplyResult{ExitCode: 1, Stderr: stderr}, nil
	}
	return secondary.ApplyResult{}, nil
}

func (m *mockApplier) CheckApply(ctx context.Context, patch string) (secondary.ApplyResult, error) {
	return m.invoke(corepatch.StepCheck, patch)
}

func (m *mockApplier) Apply(ctx context.Context, patch string) (secondary.ApplyResult, error) {
	return m.invoke(corepatch.StepApply, patch)
}

func (m *mockApplier) ApplyPermissive(ctx context.Context, patch string) (secondary.ApplyResult, error) {
	return m.invoke(corepatch.StepPermissive, patch)
}

func (m *mockApplier) patchesTouched() []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range m.calls {
		if !seen[c.Patch] {
			seen[c.Patch] = true
			out = append(out, c.Patch)
		}
	}
	return out
}

// mockPatchLog implements secondary.PatchLog in memory.
type mockPatchLog struct {
	entries []corepatch.Entry
	err     error
}

func (m *mockPatchLog) Append(ctx context.Context, entry corepatch.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockPatchLog) statuses() []corepatch.Status {
	out := make([]corepatch.Status, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Status
	}
	return out
}

// mockHistoryRepository implements secondary.HistoryRepository in memory.
type mockHistoryRepository struct {
	runs      map[string]*secondary.RunRecord
	attempts  map[string][]*secondary.AttemptRecord
	createErr error
}

func newMockHistoryRepository() *mockHistoryRepository {
	return &mockHistoryRepository{
		runs:     make(map[string]*secondary.RunRecord),
		attempts: make(map[string][]*secondary.AttemptRecord),
	}
}

func (m *mockHistoryRepository) CreateRun(ctx context.Context, run *secondary.RunRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *run
	copied.Outcome = "running"
	m.runs[run.ID] = &copied
	return nil
}

func (m *mockHistoryRepository) FinishRun(ctx context.Context, runID, outcome string) error {
	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	r.Outcome = outcome
	r.FinishedAt = "2026-01-01T00:00:00Z"
	return nil
}

func (m *mockHistoryRepository) RecordAttempt(ctx context.Context, attempt *secondary.AttemptRecord) error {
	if _, ok := m.runs[attempt.RunID]; !ok {
		return fmt.Errorf("run %s not found", attempt.RunID)
	}
	m.attempts[attempt.RunID] = append(m.attempts[attempt.RunID], attempt)
	return nil
}

func (m *mockHistoryRepository) GetRun(ctx context.Context, runID string) (*secondary.RunRecord, error) {
	r, ok := m.runs[runID]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *r
	copied.AttemptCount = len(m.attempts[runID])
	return &copied, nil
}

func (m *mockHistoryRepository) ListRuns(ctx context.Context, filters secondary.RunFilters) ([]*secondary.RunRecord, error) {
	var out []*secondary.RunRecord
	for _, r := range m.runs {
		if filters.WorkTree != "" && r.WorkTree != filters.WorkTree {
			continue
		}
		out = append(out, r)
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (m *mockHistoryRepository) ListAttempts(ctx context.Context, runID string) ([]*secondary.AttemptRecord, error) {
	return m.attempts[runID], nil
}

// recordingReporter implements secondary.ProgressReporter by recording events.
type recordingReporter struct {
	events   []string
	warnings []string
}

func (r *recordingReporter) RunStarted(title string) {
	r.events = append(r.events, "run:"+title)
}

func (r *recordingReporter) PatchStarted(patch string, mode corepatch.Mode) {
	r.events = append(r.events, "start:"+patch+":"+string(mode))
}

func (r *recordingReporter) PatchSucceeded(patch string, status corepatch.Status) {
	r.events = append(r.events, "ok:"+patch+":"+string(status))
}

func (r *recordingReporter) PrimaryFailed(patch, stderr string) {
	r.events = append(r.events, "primary-failed:"+patch)
}

func (r *recordingReporter) RetryStarted(patch string) {
	r.events = append(r.events, "retry:"+patch)
}

func (r *recordingReporter) RetryFailed(patch, stderr string) {
	r.events = append(r.events, "retry-failed:"+patch)
}

func (r *recordingReporter) RejectsLeft(patch string, rejects []string) {
	r.events = append(r.events, fmt.Sprintf("rejects:%s:%d", patch, len(rejects)))
}

func (r *recordingReporter) Warn(message string) {
	r.warnings = append(r.warnings, message)
}
