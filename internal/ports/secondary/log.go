package secondary

import (
	"context"

	corepatch "github.com/example/patchrun/internal/core/patch"
)

// PatchLog defines the append-only outcome log kept in the working tree.
type PatchLog interface {
	// Append writes exactly one entry. Implementations must not hold the
	// file open between calls.
	Append(ctx context.Context, entry corepatch.Entry) error
}
