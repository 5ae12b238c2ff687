// Package primary defines the primary ports (driving adapters) for the application.
package primary

import "context"

// PatchService defines the primary port for patch runner operations.
type PatchService interface {
	// ListPatches discovers patches without applying anything.
	ListPatches(ctx context.Context) (*ListPatchesResponse, error)

	// Run checks or applies every discovered patch in order, halting at the
	// first unrecoverable failure. On a halt the response is still returned
	// alongside the failure.
	Run(ctx context.Context, req RunRequest) (*RunResponse, error)
}

// ListPatchesResponse contains the discovered patches.
type ListPatchesResponse struct {
	PatchDir string   // relative to the working tree root
	Patches  []string // relative to the working tree root
}

// RunRequest contains parameters for a run.
type RunRequest struct {
	DryRun bool
	Force  bool // ignored for dry runs
}

// RunResponse contains the result of a run.
type RunResponse struct {
	RunID    string
	Mode     string
	Outcome  string // 'completed' or 'halted'
	Total    int    // patches discovered
	Attempts []*Attempt
}

// RejectCount returns how many patches were applied with rejects.
func (r *RunResponse) RejectCount() int {
	n := 0
	for _, a := range r.Attempts {
		if a.Status == "APPLIED_WITH_REJECTS" {
			n++
		}
	}
	return n
}

// Attempt represents one processed patch at the port boundary.
type Attempt struct {
	Patch   string
	Status  string
	Stderr  string   // captured from the last failing invocation
	Rejects []string // reject files present after a permissive apply
}
