package secondary

import "context"

// ApplyResult is what the runner consumes from the external tool: exit
// status and standard error.
type ApplyResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the invocation exited zero.
func (r ApplyResult) OK() bool { return r.ExitCode == 0 }

// Applier defines the secondary port for the external version-control tool.
// patch is a path relative to the working tree root.
type Applier interface {
	// CheckApply verifies a three-way apply would succeed without touching
	// the working tree.
	CheckApply(ctx context.Context, patch string) (ApplyResult, error)

	// Apply performs a three-way apply.
	Apply(ctx context.Context, patch string) (ApplyResult, error)

	// ApplyPermissive applies whatever hunks succeed, ignoring whitespace,
	// and writes the remainder as reject files.
	ApplyPermissive(ctx context.Context, patch string) (ApplyResult, error)
}
