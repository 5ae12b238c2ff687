package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corepatch "github.com/example/patchrun/internal/core/patch"
)

const absentFilePatch = `diff --git a/absent.txt b/absent.txt
--- a/absent.txt
+++ b/absent.txt
@@ -1 +1 @@
-x
+y
`

// twoHunkPatch changes multi.txt in two places; the second hunk's context
// never matches, so a permissive apply keeps the first and rejects the second.
const twoHunkPatch = `diff --git a/multi.txt b/multi.txt
--- a/multi.txt
+++ b/multi.txt
@@ -1,3 +1,3 @@
 l1
-l2
+L2
 l3
@@ -17,3 +17,3 @@
 l17
-nomatch
+L18
 l19
`

// gitWorkTree creates a repository with one committed file and a patch in
// patches/ that changes it.
func gitWorkTree(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	root := t.TempDir()
	git := func(args ...string) string {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return string(out)
	}

	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	git("init", "-q")
	write("hello.txt", "hello\n")
	git("add", "hello.txt")
	git("commit", "-q", "-m", "init")

	write("hello.txt", "hello world\n")
	diff := git("diff", "hello.txt")
	git("checkout", "--", "hello.txt")

	write(filepath.Join("patches", "001-greeting.patch"), diff)
	return root
}

func logLines(t *testing.T, root string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "PATCH_LOG.md"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# Patch Log\n\n"))

	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(l, "- ") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestEndToEnd_CheckThenApply(t *testing.T) {
	root := gitWorkTree(t)

	stdout, _, err := execute(t, "--root", root, "--dry-run", "--apply")
	require.NoError(t, err)
	assert.Contains(t, stdout, "All patches would apply cleanly.")
	assert.Contains(t, stdout, "All patches applied.")

	data, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(data))

	lines := logLines(t, root)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "`patches/001-greeting.patch` — **CHECK_OK** (dry-run)")
	assert.Contains(t, lines[1], "`patches/001-greeting.patch` — **APPLIED** (apply)")
}

func TestEndToEnd_FailureHaltsRun(t *testing.T) {
	root := gitWorkTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "patches", "002-absent.patch"), []byte(absentFilePatch), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "patches", "003-never.patch"), []byte(absentFilePatch), 0644))

	_, stderr, err := execute(t, "--root", root, "--apply")
	require.Error(t, err)

	var applyErr *corepatch.ApplyFailure
	require.True(t, errors.As(err, &applyErr), "expected ApplyFailure, got %v", err)
	assert.Equal(t, "Patch failed: patches/002-absent.patch", err.Error())
	assert.Contains(t, stderr, "Primary apply failed for patches/002-absent.patch")

	lines := logLines(t, root)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "**APPLIED**")
	assert.Contains(t, lines[1], "`patches/002-absent.patch` — **FAILED** (apply)")
}

func writeUntracked(t *testing.T, root, rel, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(content), 0644))
}

// A file present only in the working tree defeats --3way (which needs the
// index) but not the permissive retry.
func TestEndToEnd_ForceRecoversViaPermissiveApply(t *testing.T) {
	root := gitWorkTree(t)
	writeUntracked(t, root, "absent.txt", "x\n")
	writeUntracked(t, root, "old.go.rej", "stale\n")
	writeUntracked(t, root, filepath.Join("patches", "002-untracked.patch"), absentFilePatch)

	stdout, stderr, err := execute(t, "--root", root, "--apply", "--force")
	require.NoError(t, err)

	assert.Contains(t, stderr, "Primary apply failed for patches/002-untracked.patch")
	assert.Contains(t, stdout, "retrying with --reject --whitespace=nowarn (force mode)")
	assert.Contains(t, stdout, "Patch applied with rejects: patches/002-untracked.patch")
	assert.Contains(t, stdout, "1 patch(es) applied with rejects")
	assert.NotContains(t, stdout, "old.go.rej", "reject files from earlier runs are not reported")

	data, err := os.ReadFile(filepath.Join(root, "absent.txt"))
	require.NoError(t, err)
	assert.Equal(t, "y\n", string(data))

	lines := logLines(t, root)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "**APPLIED** (apply+force)")
	assert.Contains(t, lines[1], "`patches/002-untracked.patch` — **APPLIED_WITH_REJECTS** (apply+force)")
}

func TestEndToEnd_ForceListsRejectsOfFailedRetry(t *testing.T) {
	root := gitWorkTree(t)
	var content strings.Builder
	for i := 1; i <= 20; i++ {
		fmt.Fprintf(&content, "l%d\n", i)
	}
	writeUntracked(t, root, "multi.txt", content.String())
	writeUntracked(t, root, "old.go.rej", "stale\n")
	writeUntracked(t, root, filepath.Join("patches", "002-two-hunks.patch"), twoHunkPatch)
	writeUntracked(t, root, filepath.Join("patches", "003-never.patch"), absentFilePatch)

	stdout, stderr, err := execute(t, "--root", root, "--apply", "--force")
	require.Error(t, err)

	var forceErr *corepatch.ForceApplyFailure
	require.True(t, errors.As(err, &forceErr), "expected ForceApplyFailure, got %v", err)
	assert.Contains(t, stderr, "Forced apply still failed for patches/002-two-hunks.patch")
	assert.Contains(t, stdout, "multi.txt.rej")
	assert.NotContains(t, stdout, "old.go.rej")
	assert.FileExists(t, filepath.Join(root, "multi.txt.rej"))

	lines := logLines(t, root)
	require.Len(t, lines, 2, "the run halts before the third patch")
	assert.Contains(t, lines[1], "`patches/002-two-hunks.patch` — **FORCE_FAILED** (apply+force)")
}
