package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	corepatch "github.com/example/patchrun/internal/core/patch"
	"github.com/example/patchrun/internal/ports/secondary"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

// ConsoleReporter renders run progress for a terminal. Progress goes to out;
// warnings and captured tool errors go to errOut.
type ConsoleReporter struct {
	out    io.Writer
	errOut io.Writer
}

// NewConsoleReporter creates a ConsoleReporter.
func NewConsoleReporter(out, errOut io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out, errOut: errOut}
}

// RunStarted prints the section header for a run.
func (r *ConsoleReporter) RunStarted(title string) {
	printHeader(r.out, title)
}

// PatchStarted announces the patch about to be processed.
func (r *ConsoleReporter) PatchStarted(patch string, mode corepatch.Mode) {
	fmt.Fprintf(r.out, "\n→ Processing patch: %s %s\n", patch, dimColor.Sprintf("[%s]", mode))
}

// PatchSucceeded reports a successful terminal status.
func (r *ConsoleReporter) PatchSucceeded(patch string, status corepatch.Status) {
	var msg string
	switch status {
	case corepatch.StatusCheckOK:
		msg = "Patch would apply cleanly"
	case corepatch.StatusAppliedWithRejects:
		msg = "Patch applied with rejects"
	default:
		msg = "Patch applied"
	}
	successColor.Fprintf(r.out, "✔ %s: %s\n", msg, patch)
}

// PrimaryFailed reports a failed primary attempt and its captured stderr.
func (r *ConsoleReporter) PrimaryFailed(patch, stderr string) {
	warnColor.Fprintf(r.errOut, "⚠ Primary apply failed for %s\n", patch)
	printStderr(r.errOut, stderr)
}

// RetryStarted announces the permissive retry.
func (r *ConsoleReporter) RetryStarted(patch string) {
	fmt.Fprintln(r.out, "… retrying with --reject --whitespace=nowarn (force mode)")
}

// RetryFailed reports a failed permissive retry and its captured stderr.
func (r *ConsoleReporter) RetryFailed(patch, stderr string) {
	failColor.Fprintf(r.errOut, "✖ Forced apply still failed for %s\n", patch)
	printStderr(r.errOut, stderr)
}

// RejectsLeft points the user at the conflict files the permissive retry
// wrote, which need manual work.
func (r *ConsoleReporter) RejectsLeft(patch string, rejects []string) {
	if len(rejects) == 0 {
		fmt.Fprintln(r.out, "   → No new *.rej files were written.")
		return
	}
	fmt.Fprintln(r.out, "   → Check these *.rej files and resolve conflicts manually:")
	for _, rej := range rejects {
		fmt.Fprintf(r.out, "     %s\n", warnColor.Sprint(rej))
	}
}

// Warn prints a non-fatal warning.
func (r *ConsoleReporter) Warn(message string) {
	warnColor.Fprintf(r.errOut, "⚠ %s\n", message)
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", headerColor.Sprintf("=== %s ===", title))
}

func printStderr(w io.Writer, stderr string) {
	if s := strings.TrimSpace(stderr); s != "" {
		fmt.Fprintln(w, s)
	}
}

// Ensure ConsoleReporter implements the interface
var _ secondary.ProgressReporter = (*ConsoleReporter)(nil)
