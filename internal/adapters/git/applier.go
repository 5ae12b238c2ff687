// Package git adapts the git command-line tool to the Applier port.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/patchrun/internal/ctxutil"
	"github.com/example/patchrun/internal/ports/secondary"
)

// Argument sets for the three apply strategies.
var (
	checkArgs      = []string{"apply", "--3way", "--check"}
	applyArgs      = []string{"apply", "--3way"}
	permissiveArgs = []string{"apply", "--reject", "--whitespace=nowarn"}
)

// Applier implements secondary.Applier by running `git apply` in the
// working tree. Calls block until git exits.
type Applier struct {
	binary   string
	workTree string
	logger   *zap.Logger
}

// NewApplier creates an Applier running binary with workTree as its cwd.
func NewApplier(binary, workTree string, logger *zap.Logger) *Applier {
	if binary == "" {
		binary = "git"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{
		binary:   binary,
		workTree: workTree,
		logger:   logger,
	}
}

// CheckApply runs `git apply --3way --check`.
func (a *Applier) CheckApply(ctx context.Context, patch string) (secondary.ApplyResult, error) {
	return a.run(ctx, withPatch(checkArgs, patch)...)
}

// Apply runs `git apply --3way`.
func (a *Applier) Apply(ctx context.Context, patch string) (secondary.ApplyResult, error) {
	return a.run(ctx, withPatch(applyArgs, patch)...)
}

// ApplyPermissive runs `git apply --reject --whitespace=nowarn`.
func (a *Applier) ApplyPermissive(ctx context.Context, patch string) (secondary.ApplyResult, error) {
	return a.run(ctx, withPatch(permissiveArgs, patch)...)
}

func withPatch(base []string, patch string) []string {
	args := make([]string, 0, len(base)+1)
	args = append(args, base...)
	return append(args, patch)
}

// run executes git and captures its output. A non-zero exit is reported in
// the result, not as an error; the error is reserved for failing to run git
// at all, in which case the result still carries a non-zero exit code.
func (a *Applier) run(ctx context.Context, args ...string) (secondary.ApplyResult, error) {
	cmd := exec.CommandContext(ctx, a.binary, args...)
	cmd.Dir = a.workTree
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	result := secondary.ApplyResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	log := a.logger.With(
		zap.String("run_id", ctxutil.RunIDFromContext(ctx)),
		zap.String("cmd", a.binary+" "+strings.Join(args, " ")),
		zap.Duration("elapsed", time.Since(start)),
	)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		log.Debug("git exited cleanly")
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		log.Info("git exited non-zero",
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", strings.TrimSpace(result.Stderr)))
	default:
		result.ExitCode = -1
		if result.Stderr == "" {
			result.Stderr = err.Error()
		}
		log.Error("failed to run git", zap.Error(err))
		return result, fmt.Errorf("failed to run %s: %w", a.binary, err)
	}

	return result, nil
}

// Ensure Applier implements the interface
var _ secondary.Applier = (*Applier)(nil)
