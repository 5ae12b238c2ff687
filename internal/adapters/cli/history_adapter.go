package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/patchrun/internal/ports/primary"
)

// HistoryAdapter is a thin adapter that translates CLI operations to HistoryService calls.
type HistoryAdapter struct {
	service primary.HistoryService
	out     io.Writer
}

// NewHistoryAdapter creates a new HistoryAdapter with the given service.
func NewHistoryAdapter(service primary.HistoryService, out io.Writer) *HistoryAdapter {
	return &HistoryAdapter{
		service: service,
		out:     out,
	}
}

// List lists recent runs. An empty workTree lists runs of every working tree.
func (a *HistoryAdapter) List(ctx context.Context, workTree string, limit int) ([]*primary.Run, error) {
	runs, err := a.service.ListRuns(ctx, primary.HistoryFilters{
		WorkTree: workTree,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs recorded.")
		return runs, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RUN\tMODE\tOUTCOME\tPATCHES\tSTARTED\tWORK TREE")
	fmt.Fprintln(w, "---\t----\t-------\t-------\t-------\t---------")

	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.ID,
			r.Mode,
			colorOutcome(r.Outcome),
			r.AttemptCount,
			r.PatchCount,
			r.StartedAt,
			r.WorkTree,
		)
	}

	w.Flush()
	return runs, nil
}

// Show displays a run and each of its attempts.
func (a *HistoryAdapter) Show(ctx context.Context, runID string) (*primary.RunDetail, error) {
	detail, err := a.service.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run := detail.Run
	fmt.Fprintf(a.out, "\nRun: %s\n", run.ID)
	fmt.Fprintf(a.out, "Work tree: %s\n", run.WorkTree)
	fmt.Fprintf(a.out, "Mode:      %s\n", run.Mode)
	fmt.Fprintf(a.out, "Outcome:   %s\n", colorOutcome(run.Outcome))
	fmt.Fprintf(a.out, "Started:   %s\n", run.StartedAt)
	if run.FinishedAt != "" {
		fmt.Fprintf(a.out, "Finished:  %s\n", run.FinishedAt)
	}
	fmt.Fprintln(a.out)

	for _, at := range detail.Attempts {
		fmt.Fprintf(a.out, "%3d. %s  %s\n", at.Seq, colorStatus(at.Status), at.Patch)
		if at.Stderr != "" {
			fmt.Fprintf(a.out, "     %s\n", dimColor.Sprint(at.Stderr))
		}
	}

	return detail, nil
}

func colorOutcome(outcome string) string {
	switch outcome {
	case "completed":
		return successColor.Sprint(outcome)
	case "halted":
		return failColor.Sprint(outcome)
	}
	return warnColor.Sprint(outcome)
}

func colorStatus(status string) string {
	switch status {
	case "CHECK_OK", "APPLIED":
		return successColor.Sprint(status)
	case "APPLIED_WITH_REJECTS":
		return warnColor.Sprint(status)
	}
	return failColor.Sprint(status)
}
