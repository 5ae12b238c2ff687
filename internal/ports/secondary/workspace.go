// Package secondary defines the secondary ports (driven adapters) for the application.
package secondary

import (
	"context"

	corepatch "github.com/example/patchrun/internal/core/patch"
)

// WorkspaceAdapter defines the secondary port for the working tree the
// runner operates on.
type WorkspaceAdapter interface {
	// EnsureRepository fails with a configuration error when the working
	// tree has no version-control metadata.
	EnsureRepository(ctx context.Context) error

	// DiscoverPatches returns patch paths relative to the working tree root,
	// in processing order. Fails when the patch directory is missing.
	DiscoverPatches(ctx context.Context) ([]string, error)

	// SnapshotRejects returns the conflict files (*.rej) present in the
	// working tree with their modification times.
	SnapshotRejects(ctx context.Context) (corepatch.RejectSnapshot, error)

	// Path resolution
	Root() string
	RelativePatchDir() string
}
