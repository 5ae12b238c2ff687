package cli

import (
	"github.com/spf13/cobra"
)

func historyCmd(g *globalFlags) *cobra.Command {
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs for this working tree",
		Long: `List recent runs recorded in the history database, newest first.

Examples:
  patchrun history
  patchrun history --limit 5
  patchrun history --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := newContainer(cmd, *g)
			if err != nil {
				return err
			}
			defer cleanup()

			adapter, err := c.HistoryAdapter()
			if err != nil {
				return err
			}

			workTree, err := resolveRoot(g.root)
			if err != nil {
				return err
			}
			if all {
				workTree = ""
			}

			_, err = adapter.List(cmd.Context(), workTree, limit)
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of runs to show (default 20)")
	cmd.Flags().BoolVar(&all, "all", false, "Show runs for every working tree")

	cmd.AddCommand(historyShowCmd(g))

	return cmd
}

func historyShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a run and each patch attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := newContainer(cmd, *g)
			if err != nil {
				return err
			}
			defer cleanup()

			adapter, err := c.HistoryAdapter()
			if err != nil {
				return err
			}

			_, err = adapter.Show(cmd.Context(), args[0])
			return err
		},
	}
}
