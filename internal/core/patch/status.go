// Package patch contains the pure business logic for the patch runner.
// This is part of the Functional Core - no I/O, only pure functions.
package patch

// Status is the recorded outcome of a single apply attempt.
type Status string

const (
	StatusCheckOK            Status = "CHECK_OK"
	StatusApplied            Status = "APPLIED"
	StatusAppliedWithRejects Status = "APPLIED_WITH_REJECTS"
	StatusFailed             Status = "FAILED"
	StatusForceFailed        Status = "FORCE_FAILED"
)

// IsSuccess reports whether the status lets the run continue to the next patch.
func (s Status) IsSuccess() bool {
	switch s {
	case StatusCheckOK, StatusApplied, StatusAppliedWithRejects:
		return true
	}
	return false
}

// Mode describes how a patch is being processed. It is written verbatim into
// the patch log.
type Mode string

const (
	ModeDryRun     Mode = "dry-run"
	ModeApply      Mode = "apply"
	ModeApplyForce Mode = "apply+force"
)

// ModeFor returns the mode label for a run. Dry runs never force.
func ModeFor(dryRun, force bool) Mode {
	if dryRun {
		return ModeDryRun
	}
	if force {
		return ModeApplyForce
	}
	return ModeApply
}

// RunOutcome is the run-level terminal state.
type RunOutcome string

const (
	RunRunning   RunOutcome = "running"
	RunCompleted RunOutcome = "completed"
	RunHalted    RunOutcome = "halted"
)
