package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cunarist/rinf/automate/pkg"
	"github.com/cunarist/rinf/automate/pkg/automate"
	"github.com/cunarist/rinf/automate/pkg/config"
	"github.com/cunarist/rinf/automate/pkg/shell"
)

type rootOptions struct {
	root     string
	logLevel string
}

// NewRootCmd creates the automate command with one subcommand per procedure
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "automate option",
		Short: "Maintenance tasks for the rinf repository",
		Long: `This command bundles the one-off tasks used while developing rinf.
This includes updating the vendored cargokit copy and scaffolding apps for local testing.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		// Known names are dispatched to their subcommands before this runs.
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printOptions(cmd.OutOrStdout(), automate.MissingMessage)
			} else {
				printOptions(cmd.OutOrStdout(), automate.UnknownMessage)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "repository root; detected from the enclosing git checkout by default")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	for _, proc := range automate.Procedures() {
		rootCmd.AddCommand(procedureCmd(opts, proc))
	}

	return rootCmd
}

// procedureCmd ignores anything after the procedure name it doesn't understand
func procedureCmd(opts *rootOptions, proc automate.Procedure) *cobra.Command {
	return &cobra.Command{
		Use:                proc.Name,
		Short:              proc.Short,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcedure(cmd, opts, proc, args)
		},
	}
}

// Dispatch selects the procedure by args[0] before any flag parsing. Flags are only
// read after a known procedure name; everything else prints the available options.
func Dispatch(ctx context.Context, rootCmd *cobra.Command, args []string) error {
	_, selection := automate.Lookup(args)
	switch selection {
	case automate.Missing:
		printOptions(rootCmd.OutOrStdout(), automate.MissingMessage)
		return nil
	case automate.Unknown:
		printOptions(rootCmd.OutOrStdout(), automate.UnknownMessage)
		return nil
	}

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func printOptions(out io.Writer, msg string) {
	fmt.Fprintln(out, msg)
	fmt.Fprintln(out, "Available options:")

	procs := automate.Procedures()
	maxNameLen := 0
	for _, proc := range procs {
		if len(proc.Name) > maxNameLen {
			maxNameLen = len(proc.Name)
		}
	}

	lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
	for _, proc := range procs {
		fmt.Fprintf(out, lineFmt, proc.Name+":", proc.Short)
	}
}

func runProcedure(cmd *cobra.Command, opts *rootOptions, proc automate.Procedure, extra []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}

	root := opts.root
	if root == "" {
		root = cfg.Root
	}
	if root == "" {
		root, err = pkg.GetProjectRoot(wd)
		if err != nil {
			return err
		}
	}

	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}

	if root != wd {
		// the project root may carry its own config file
		cfg, err = config.Load(wd, root)
		if err != nil {
			return err
		}
	}
	cfg.Root = root

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	verbose := cfg.LogLevel() <= zerolog.DebugLevel
	setErrorTraces(verbose)
	logger := zerolog.New(NewConsoleWriter(cmd.ErrOrStderr(), verbose)).Level(cfg.LogLevel())
	ctx := pkg.WithLogger(cmd.Context(), &logger)
	if len(extra) > 0 {
		logger.Debug().Strs("args", extra).Msg("Ignoring extra arguments")
	}

	env := &automate.Env{
		Root:     cfg.Root,
		Config:   cfg,
		Runner:   newRunner(cmd),
		Out:      cmd.OutOrStdout(),
		Progress: cmd.ErrOrStderr(),
	}

	return proc.Execute(ctx, env)
}

// newRunner is replaced in tests
var newRunner = func(cmd *cobra.Command) shell.Runner {
	return &shell.ShellRunner{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Dispatch(ctx, NewRootCmd(), os.Args[1:]); err != nil {
		logger := zerolog.New(NewConsoleWriter(os.Stderr, false))
		logger.Error().Err(err).Msg("Automation failed")
		stop()
		os.Exit(1)
	}
}
