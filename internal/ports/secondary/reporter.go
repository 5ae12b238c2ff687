package secondary

import corepatch "github.com/example/patchrun/internal/core/patch"

// ProgressReporter receives progress events while a run is in flight.
// Implementations render them for a human; they never influence control flow.
type ProgressReporter interface {
	RunStarted(title string)
	PatchStarted(patch string, mode corepatch.Mode)
	PatchSucceeded(patch string, status corepatch.Status)
	PrimaryFailed(patch, stderr string)
	RetryStarted(patch string)
	RetryFailed(patch, stderr string)
	RejectsLeft(patch string, rejects []string)
	Warn(message string)
}
