// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	corepatch "github.com/example/patchrun/internal/core/patch"
	"github.com/example/patchrun/internal/ports/secondary"
)

// WorkspaceAdapter implements secondary.WorkspaceAdapter for a working tree on disk.
type WorkspaceAdapter struct {
	root       string
	patchDir   string
	ignoreFile string
}

// NewWorkspaceAdapter creates a workspace adapter. root, patchDir and
// ignoreFile must be absolute; ignoreFile may not exist.
func NewWorkspaceAdapter(root, patchDir, ignoreFile string) *WorkspaceAdapter {
	return &WorkspaceAdapter{
		root:       root,
		patchDir:   patchDir,
		ignoreFile: ignoreFile,
	}
}

// EnsureRepository checks for a .git entry at the working tree root.
// A file is accepted as well as a directory, which covers linked worktrees.
func (a *WorkspaceAdapter) EnsureRepository(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(a.root, ".git")); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &corepatch.ConfigurationError{
				Reason: fmt.Sprintf(".git directory not found in %s. Are you in the repo root?", a.root),
			}
		}
		return &corepatch.ConfigurationError{Reason: "failed to inspect working tree", Err: err}
	}
	return nil
}

// DiscoverPatches lists the regular patch files directly inside the patch
// directory, minus anything matched by the ignore file, in processing order.
func (a *WorkspaceAdapter) DiscoverPatches(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.patchDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &corepatch.ConfigurationError{
				Reason: fmt.Sprintf("Patch directory not found: %s", a.patchDir),
			}
		}
		return nil, &corepatch.ConfigurationError{Reason: "failed to read patch directory", Err: err}
	}

	rules, err := a.ignoreRules()
	if err != nil {
		return nil, &corepatch.ConfigurationError{Reason: "failed to read ignore file", Err: err}
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if rules != nil && rules.MatchesPath(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}

	rel := a.RelativePatchDir()
	selected := corepatch.SelectPatches(names)
	patches := make([]string, len(selected))
	for i, name := range selected {
		patches[i] = filepath.Join(rel, name)
	}
	return patches, nil
}

// ignoreRules compiles the ignore file, or returns nil when there is none.
func (a *WorkspaceAdapter) ignoreRules() (*ignore.GitIgnore, error) {
	if a.ignoreFile == "" {
		return nil, nil
	}
	if _, err := os.Stat(a.ignoreFile); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return ignore.CompileIgnoreFile(a.ignoreFile)
}

// SnapshotRejects walks the working tree for *.rej files, skipping .git.
func (a *WorkspaceAdapter) SnapshotRejects(ctx context.Context) (corepatch.RejectSnapshot, error) {
	snap := corepatch.RejectSnapshot{}
	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return ctx.Err()
		}
		if !strings.HasSuffix(d.Name(), ".rej") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(a.root, p)
		if relErr != nil {
			rel = p
		}
		snap[rel] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for reject files: %w", err)
	}
	return snap, nil
}

// Root returns the working tree root.
func (a *WorkspaceAdapter) Root() string {
	return a.root
}

// RelativePatchDir returns the patch directory relative to the root, or the
// absolute path when it lives outside the working tree.
func (a *WorkspaceAdapter) RelativePatchDir() string {
	rel, err := filepath.Rel(a.root, a.patchDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return a.patchDir
	}
	return rel
}

// Ensure WorkspaceAdapter implements the interface
var _ secondary.WorkspaceAdapter = (*WorkspaceAdapter)(nil)
