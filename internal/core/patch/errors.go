package patch

import "fmt"

// ConfigurationError reports a precondition that prevents any patch from
// being processed (missing .git, missing patch dir, unreadable config).
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ApplyFailure reports a failed primary attempt (check or three-way apply).
type ApplyFailure struct {
	Patch  string
	Stderr string
}

func (e *ApplyFailure) Error() string {
	return fmt.Sprintf("Patch failed: %s", e.Patch)
}

// ForceApplyFailure reports that the permissive retry failed as well.
type ForceApplyFailure struct {
	Patch  string
	Stderr string
}

func (e *ForceApplyFailure) Error() string {
	return fmt.Sprintf("Patch failed irrecoverably: %s", e.Patch)
}

// FailureFor builds the halting error for a terminal status.
// Returns nil for statuses that let the run continue.
func FailureFor(status Status, patch, stderr string) error {
	switch status {
	case StatusFailed:
		return &ApplyFailure{Patch: patch, Stderr: stderr}
	case StatusForceFailed:
		return &ForceApplyFailure{Patch: patch, Stderr: stderr}
	}
	return nil
}
