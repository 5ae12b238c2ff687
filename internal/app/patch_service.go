// Package app contains the application layer - service implementations.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	corepatch "github.com/example/patchrun/internal/core/patch"
	"github.com/example/patchrun/internal/ctxutil"
	"github.com/example/patchrun/internal/ports/primary"
	"github.com/example/patchrun/internal/ports/secondary"
)

// PatchServiceImpl implements the PatchService interface.
// Patches are processed strictly one at a time; each external invocation
// blocks until the tool exits.
type PatchServiceImpl struct {
	workspace secondary.WorkspaceAdapter
	applier   secondary.Applier
	patchLog  secondary.PatchLog
	history   secondary.HistoryRepository // nil disables run history
	reporter  secondary.ProgressReporter
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewPatchService creates a new PatchService with injected dependencies.
func NewPatchService(
	workspace secondary.WorkspaceAdapter,
	applier secondary.Applier,
	patchLog secondary.PatchLog,
	history secondary.HistoryRepository,
	reporter secondary.ProgressReporter,
	logger *zap.Logger,
) *PatchServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatchServiceImpl{
		workspace: workspace,
		applier:   applier,
		patchLog:  patchLog,
		history:   history,
		reporter:  reporter,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ListPatches discovers patches without applying anything.
func (s *PatchServiceImpl) ListPatches(ctx context.Context) (*primary.ListPatchesResponse, error) {
	patches, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}
	return &primary.ListPatchesResponse{
		PatchDir: s.workspace.RelativePatchDir(),
		Patches:  patches,
	}, nil
}

// Run checks or applies every discovered patch in order.
func (s *PatchServiceImpl) Run(ctx context.Context, req primary.RunRequest) (*primary.RunResponse, error) {
	patches, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	mode := corepatch.ModeFor(req.DryRun, req.Force)
	resp := &primary.RunResponse{
		RunID:   s.newID(),
		Mode:    string(mode),
		Outcome: string(corepatch.RunRunning),
		Total:   len(patches),
	}
	ctx = ctxutil.WithRunID(ctx, resp.RunID)
	log := s.logger.With(zap.String("run_id", resp.RunID), zap.String("mode", resp.Mode))

	s.reporter.RunStarted(runTitle(mode))
	if len(patches) == 0 {
		resp.Outcome = string(corepatch.RunCompleted)
		log.Info("no patches discovered")
		return resp, nil
	}

	log.Info("run started", zap.Int("patches", len(patches)))
	s.beginHistory(ctx, resp)

	for i, p := range patches {
		attempt := s.process(ctx, p, mode)
		resp.Attempts = append(resp.Attempts, attempt)
		s.recordAttempt(ctx, resp.RunID, i+1, attempt, mode)

		status := corepatch.Status(attempt.Status)
		if !status.IsSuccess() {
			resp.Outcome = string(corepatch.RunHalted)
			s.finishHistory(ctx, resp)
			log.Warn("run halted", zap.String("patch", p), zap.String("status", attempt.Status))
			return resp, corepatch.FailureFor(status, p, attempt.Stderr)
		}
	}

	resp.Outcome = string(corepatch.RunCompleted)
	s.finishHistory(ctx, resp)
	log.Info("run completed", zap.Int("rejects", resp.RejectCount()))
	return resp, nil
}

func (s *PatchServiceImpl) discover(ctx context.Context) ([]string, error) {
	if err := s.workspace.EnsureRepository(ctx); err != nil {
		return nil, err
	}
	return s.workspace.DiscoverPatches(ctx)
}

// process drives a single patch from Pending to a terminal status and
// appends exactly one log entry for it.
func (s *PatchServiceImpl) process(ctx context.Context, p string, mode corepatch.Mode) *primary.Attempt {
	s.reporter.PatchStarted(p, mode)

	attempt := &primary.Attempt{Patch: p}
	step := corepatch.FirstStep(mode)
	var before corepatch.RejectSnapshot
	for {
		if step == corepatch.StepPermissive {
			before = s.snapshotRejects(ctx)
		}
		res := s.invoke(ctx, step, p)
		decision := corepatch.Decide(mode, step, res.OK())

		if !res.OK() {
			attempt.Stderr = res.Stderr
			if step == corepatch.StepPermissive {
				s.reporter.RetryFailed(p, res.Stderr)
			} else {
				s.reporter.PrimaryFailed(p, res.Stderr)
			}
		}

		if decision.Next == corepatch.StepDone {
			attempt.Status = string(decision.Status)
			break
		}

		s.reporter.RetryStarted(p)
		step = decision.Next
	}

	status := corepatch.Status(attempt.Status)
	if status.IsSuccess() {
		s.reporter.PatchSucceeded(p, status)
	}
	// Only reject files written by this patch's permissive retry are reported.
	if step == corepatch.StepPermissive {
		attempt.Rejects = corepatch.NewRejects(before, s.snapshotRejects(ctx))
		if status == corepatch.StatusAppliedWithRejects || len(attempt.Rejects) > 0 {
			s.reporter.RejectsLeft(p, attempt.Rejects)
		}
	}

	s.appendLog(ctx, corepatch.Entry{
		Timestamp: s.now(),
		Patch:     p,
		Status:    status,
		Mode:      mode,
	})
	return attempt
}

// invoke runs one external step. A tool that cannot be started counts as a
// failed invocation; its error text stands in for stderr.
func (s *PatchServiceImpl) invoke(ctx context.Context, step corepatch.Step, p string) secondary.ApplyResult {
	var (
		res secondary.ApplyResult
		err error
	)
	switch step {
	case corepatch.StepCheck:
		res, err = s.applier.CheckApply(ctx, p)
	case corepatch.StepApply:
		res, err = s.applier.Apply(ctx, p)
	case corepatch.StepPermissive:
		res, err = s.applier.ApplyPermissive(ctx, p)
	default:
		err = fmt.Errorf("unknown step %q", step)
	}

	if err != nil {
		s.logger.Error("apply step could not run",
			zap.String("run_id", ctxutil.RunIDFromContext(ctx)),
			zap.String("step", string(step)),
			zap.String("patch", p),
			zap.Error(err))
		if res.OK() {
			res.ExitCode = -1
		}
		if res.Stderr == "" {
			res.Stderr = err.Error()
		}
	}
	return res
}

func (s *PatchServiceImpl) snapshotRejects(ctx context.Context) corepatch.RejectSnapshot {
	snap, err := s.workspace.SnapshotRejects(ctx)
	if err != nil {
		s.logger.Warn("failed to list reject files", zap.Error(err))
		return nil
	}
	return snap
}

// appendLog writes the log entry. Failures are reported and swallowed:
// the log is best-effort.
func (s *PatchServiceImpl) appendLog(ctx context.Context, entry corepatch.Entry) {
	if err := s.patchLog.Append(ctx, entry); err != nil {
		s.reporter.Warn(fmt.Sprintf("Failed to write patch log: %v", err))
		s.logger.Warn("patch log write failed",
			zap.String("run_id", ctxutil.RunIDFromContext(ctx)),
			zap.String("patch", entry.Patch),
			zap.Error(err))
	}
}

func (s *PatchServiceImpl) beginHistory(ctx context.Context, resp *primary.RunResponse) {
	if s.history == nil {
		return
	}
	err := s.history.CreateRun(ctx, &secondary.RunRecord{
		ID:         resp.RunID,
		WorkTree:   s.workspace.Root(),
		Mode:       resp.Mode,
		PatchCount: resp.Total,
	})
	if err != nil {
		s.historyFailed(ctx, err)
	}
}

func (s *PatchServiceImpl) recordAttempt(ctx context.Context, runID string, seq int, a *primary.Attempt, mode corepatch.Mode) {
	if s.history == nil {
		return
	}
	err := s.history.RecordAttempt(ctx, &secondary.AttemptRecord{
		RunID:  runID,
		Seq:    seq,
		Patch:  a.Patch,
		Status: a.Status,
		Mode:   string(mode),
		Stderr: a.Stderr,
	})
	if err != nil {
		s.historyFailed(ctx, err)
	}
}

func (s *PatchServiceImpl) finishHistory(ctx context.Context, resp *primary.RunResponse) {
	if s.history == nil {
		return
	}
	if err := s.history.FinishRun(ctx, resp.RunID, resp.Outcome); err != nil {
		s.historyFailed(ctx, err)
	}
}

// historyFailed reports a history write failure and disables history for
// the remainder of this service's life so the warning appears once.
func (s *PatchServiceImpl) historyFailed(ctx context.Context, err error) {
	s.reporter.Warn(fmt.Sprintf("Failed to record run history: %v", err))
	s.logger.Warn("history write failed",
		zap.String("run_id", ctxutil.RunIDFromContext(ctx)),
		zap.Error(err))
	s.history = nil
}

func runTitle(mode corepatch.Mode) string {
	switch mode {
	case corepatch.ModeDryRun:
		return "Dry run"
	case corepatch.ModeApplyForce:
		return "Apply (force mode)"
	}
	return "Apply"
}

// Ensure PatchServiceImpl implements the interface
var _ primary.PatchService = (*PatchServiceImpl)(nil)
