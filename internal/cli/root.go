// Package cli provides the patchrun command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/patchrun/internal/config"
	corepatch "github.com/example/patchrun/internal/core/patch"
	"github.com/example/patchrun/internal/logging"
	"github.com/example/patchrun/internal/version"
	"github.com/example/patchrun/internal/wire"
)

var warnColor = color.New(color.FgYellow)

// globalFlags are shared by the root command and its subcommands.
type globalFlags struct {
	root       string
	configPath string
	verbose    bool
}

// NewRootCmd returns the patchrun root command.
func NewRootCmd() *cobra.Command {
	var (
		opts  config.Options
		g     globalFlags
		alias bool
	)

	cmd := &cobra.Command{
		Use:   "patchrun",
		Short: "Check and apply a directory of patches to a git working tree",
		Long: `patchrun checks or applies every *.patch and *.diff file in the patch
directory, in sorted order, recording each outcome in PATCH_LOG.md.

Actions run in the order list, dry-run, apply. The first unrecoverable
failure stops the run; patches already applied are left in place.`,
		Example: `  patchrun --list
      List all detected patches in ./patches

  patchrun --dry-run
      Check that every patch applies cleanly, change nothing

  patchrun --apply
      Apply patches, stop at the first failure

  patchrun --apply --force
      Apply patches, retrying failures with --reject and leaving *.rej files`,
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				warn(cmd, fmt.Sprintf("Unknown option: %s", arg))
				opts.Help = true
			}
			if alias {
				opts.Help = true
			}
			if opts.Help || !opts.HasAction() {
				return cmd.Help()
			}
			return runActions(cmd, g, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.List, "list", false, "List all detected patches")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Check patches with git apply --3way --check")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "Apply patches with git apply --3way")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "With --apply, retry failures with --reject --whitespace=nowarn")
	cmd.Flags().BoolVarP(&opts.Help, "help", "h", false, "Show this help")
	cmd.Flags().BoolVarP(&alias, "help-alias", "?", false, "Show this help")
	_ = cmd.Flags().MarkHidden("help-alias")

	cmd.PersistentFlags().StringVar(&g.root, "root", "", "Working tree root (default: current directory)")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default: <root>/"+config.DefaultConfigFile+")")
	cmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Write debug-level entries to the diagnostic log")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		warn(c, err.Error())
		return c.Help()
	})

	cmd.AddCommand(historyCmd(&g))
	cmd.AddCommand(configCmd(&g))

	return cmd
}

func runActions(cmd *cobra.Command, g globalFlags, opts config.Options) error {
	c, cleanup, err := newContainer(cmd, g)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	adapter := c.PatchAdapter()

	if opts.List {
		if _, err := adapter.List(ctx); err != nil {
			return err
		}
	}
	if opts.DryRun {
		if _, err := adapter.Check(ctx); err != nil {
			return err
		}
	}
	if opts.Apply {
		if _, err := adapter.Apply(ctx, opts.Force); err != nil {
			return err
		}
	}
	return nil
}

// newContainer resolves the working tree, loads config and the diagnostic
// logger, and returns a container bound to the command's output streams.
func newContainer(cmd *cobra.Command, g globalFlags) (*wire.Container, func(), error) {
	root, err := resolveRoot(g.root)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(root, g.configPath)
	if err != nil {
		return nil, nil, &corepatch.ConfigurationError{Reason: "Invalid configuration", Err: err}
	}

	logger, closeLog := openLogger(cmd, cfg, root, g.verbose)
	logger.Debug("invocation",
		zap.String("root", root),
		zap.String("patch_dir", cfg.PatchDirPath(root)),
		zap.String("version", version.String()))

	c := wire.NewContainer(wire.Settings{
		Root:   root,
		Config: cfg,
		Logger: logger,
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	})

	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close history database", zap.Error(err))
		}
		_ = closeLog()
	}
	return c, cleanup, nil
}

func resolveRoot(flag string) (string, error) {
	if flag == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", &corepatch.ConfigurationError{Reason: "failed to get working directory", Err: err}
		}
		return wd, nil
	}
	abs, err := filepath.Abs(flag)
	if err != nil {
		return "", &corepatch.ConfigurationError{Reason: "invalid --root", Err: err}
	}
	return abs, nil
}

// openLogger falls back to a no-op logger when no log location can be
// determined; diagnostics never block a run.
func openLogger(cmd *cobra.Command, cfg *config.Config, root string, verbose bool) (*zap.Logger, func() error) {
	path, err := cfg.DebugLogPath(root)
	if err != nil {
		warn(cmd, fmt.Sprintf("Diagnostic log disabled: %v", err))
		return logging.New("", verbose)
	}
	return logging.New(path, verbose)
}

func warn(cmd *cobra.Command, msg string) {
	warnf(cmd.ErrOrStderr(), "⚠ %s\n", msg)
}

func warnf(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, format, args...)
}
