// Package cli contains thin adapters translating CLI operations to service calls.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/patchrun/internal/ports/primary"
)

// PatchAdapter is a thin adapter that translates CLI operations to PatchService calls.
// It depends only on the PatchService interface, enabling easy testing with mocks.
type PatchAdapter struct {
	service primary.PatchService
	out     io.Writer
}

// NewPatchAdapter creates a new PatchAdapter with the given service.
func NewPatchAdapter(service primary.PatchService, out io.Writer) *PatchAdapter {
	return &PatchAdapter{
		service: service,
		out:     out,
	}
}

// List prints the discovered patches, one per line.
func (a *PatchAdapter) List(ctx context.Context) (*primary.ListPatchesResponse, error) {
	resp, err := a.service.ListPatches(ctx)
	if err != nil {
		return nil, err
	}

	printHeader(a.out, "Available patches")
	if len(resp.Patches) == 0 {
		fmt.Fprintf(a.out, "(none found in %s)\n", resp.PatchDir)
		return resp, nil
	}

	for _, p := range resp.Patches {
		fmt.Fprintf(a.out, "• %s\n", p)
	}
	return resp, nil
}

// Check runs the check-only pass.
func (a *PatchAdapter) Check(ctx context.Context) (*primary.RunResponse, error) {
	return a.run(ctx, primary.RunRequest{DryRun: true})
}

// Apply applies every patch, retrying permissively when force is set.
func (a *PatchAdapter) Apply(ctx context.Context, force bool) (*primary.RunResponse, error) {
	return a.run(ctx, primary.RunRequest{Force: force})
}

func (a *PatchAdapter) run(ctx context.Context, req primary.RunRequest) (*primary.RunResponse, error) {
	resp, err := a.service.Run(ctx, req)
	if err != nil {
		return resp, err
	}

	if resp.Total == 0 {
		if req.DryRun {
			fmt.Fprintln(a.out, "No patches to check.")
		} else {
			fmt.Fprintln(a.out, "No patches to apply.")
		}
		return resp, nil
	}

	if req.DryRun {
		successColor.Fprintln(a.out, "\n✅ All patches would apply cleanly.")
		return resp, nil
	}

	successColor.Fprintln(a.out, "\n✅ All patches applied.")
	if n := resp.RejectCount(); n > 0 {
		warnColor.Fprintf(a.out, "⚠ %d patch(es) applied with rejects; resolve the *.rej files before committing.\n", n)
	}
	return resp, nil
}
