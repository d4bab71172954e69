package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpsank/breaker/internal/config"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// env carries flags and config shared by every subcommand.
type env struct {
	version string
	commit  string
	date    string

	configPath string
	logLevel   string

	cfg *config.Config
}

// Run executes the breaker CLI. It returns a process exit code.
func Run(args []string, version, commit, date string) int {
	return run(args, os.Stdout, os.Stderr, version, commit, date)
}

func run(args []string, stdout, stderr io.Writer, version, commit, date string) int {
	root := buildRootCommand(&env{version: version, commit: commit, date: date})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		var usage usageError
		if errors.As(err, &usage) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitOK
}

func buildRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "breaker",
		Short: "View RNA multiple sequence alignments",
		Long: `breaker - view Stockholm alignments with their consensus structure

  breaker view aln.sto       Open the interactive viewer
  breaker render aln.sto     Print one frame to stdout
  breaker logs               Show the latest log file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.loadConfig()
		},
	}
	root.Version = fmt.Sprintf("%s (commit: %s, built: %s)", e.version, e.commit, e.date)
	root.SetVersionTemplate("breaker {{.Version}}\n")
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default ~/.breaker/config.json)")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(buildViewCommand(e))
	root.AddCommand(buildRenderCommand(e))
	root.AddCommand(buildLogsCommand(e))
	return root
}

func (e *env) loadConfig() error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}
	if e.configPath != "" {
		paths.ConfigPath = e.configPath
	}
	cfg, err := config.LoadFrom(paths)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}
	e.cfg = cfg
	return nil
}

// exactFile requires exactly one alignment file argument.
func exactFile(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}
