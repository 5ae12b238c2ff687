package patch

// Step identifies which external invocation the runner performs next.
type Step string

const (
	StepCheck      Step = "check"
	StepApply      Step = "apply"
	StepPermissive Step = "permissive"
	StepDone       Step = "done"
)

// Decision is the result of evaluating one invocation's exit status.
// When Next is StepDone, Status holds the terminal status for the patch
// and Halt reports whether the run must stop.
type Decision struct {
	Next   Step
	Status Status
	Halt   bool
}

// FirstStep returns the first invocation for a patch in the given mode.
func FirstStep(mode Mode) Step {
	if mode == ModeDryRun {
		return StepCheck
	}
	return StepApply
}

// Decide evaluates the exit status of step and returns what happens next.
// Rules:
//   - check: ok → CHECK_OK; failure → FAILED and halt. Force never applies.
//   - apply: ok → APPLIED; failure → FAILED and halt, unless the mode
//     is apply+force, in which case the permissive retry runs.
//   - permissive: ok → APPLIED_WITH_REJECTS; failure → FORCE_FAILED and halt.
func Decide(mode Mode, step Step, ok bool) Decision {
	switch step {
	case StepCheck:
		if ok {
			return Decision{Next: StepDone, Status: StatusCheckOK}
		}
		return Decision{Next: StepDone, Status: StatusFailed, Halt: true}
	case StepApply:
		if ok {
			return Decision{Next: StepDone, Status: StatusApplied}
		}
		if mode == ModeApplyForce {
			return Decision{Next: StepPermissive}
		}
		return Decision{Next: StepDone, Status: StatusFailed, Halt: true}
	case StepPermissive:
		if ok {
			return Decision{Next: StepDone, Status: StatusAppliedWithRejects}
		}
		return Decision{Next: StepDone, Status: StatusForceFailed, Halt: true}
	}
	return Decision{Next: StepDone, Status: StatusFailed, Halt: true}
}
