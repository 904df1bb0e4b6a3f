package cli

import (
	"fmt"
	"os"

	"timecard/internal/config"
	"timecard/internal/logger"
	"timecard/internal/tracker"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	errorColor      = color.New(color.FgRed)
	successColor    = color.New(color.FgGreen)
	statusColor     = color.New(color.FgCyan)
	identifierColor = color.New(color.FgBlue, color.Bold)
	runningColor    = color.New(color.FgYellow)
)

// app carries what one invocation needs: flag values, the loaded config and
// the open tracker.
type app struct {
	configPath string
	backend    string
	dataDir    string
	verbose    bool

	cfg     config.Config
	tracker *tracker.Tracker
	opts    []tracker.Option
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "timecard",
		Short: "Track time spent on projects",
		Long: `Declare projects, check the current one out while you work on it and
check it back in when you stop. Elapsed time accumulates per project and every
session is kept as a record.

Run without a command to open the interactive dashboard.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(a.tracker)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/timecard/config.yaml)")
	flags.StringVar(&a.backend, "backend", "", "storage backend: sqlite or json")
	flags.StringVar(&a.dataDir, "data-dir", "", "directory holding tracker data")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "also write logs to stderr")

	root.AddCommand(
		a.checkoutCommand(),
		a.checkinCommand(),
		a.createCommand(),
		a.listCommand(),
		a.switchCommand(),
		a.deleteCommand(),
		a.statusCommand(),
		a.logCommand(),
		a.configCommand(),
	)
	return root
}

// loadConfig applies flags over the config file and environment.
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Backend = config.NormalizeBackend(a.backend)
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// builtin reports whether cmd is, or sits under, cobra's generated help or
// completion command. Those never touch config or data.
func builtin(cmd *cobra.Command) bool {
	for c := cmd; c.HasParent(); c = c.Parent() {
		if !c.Parent().HasParent() && (c.Name() == "help" || c.Name() == "completion") {
			return true
		}
	}
	return false
}

func (a *app) setup(cmd *cobra.Command) error {
	if builtin(cmd) {
		return nil
	}
	if err := a.loadConfig(); err != nil {
		return err
	}

	// The dashboard owns the terminal, so it never logs to stderr.
	stderr := a.verbose && cmd.HasParent()
	if err := logger.Init(logger.Options{Level: a.cfg.LogLevel, Stderr: stderr}); err != nil {
		return err
	}

	if cmd.Annotations["store"] == "none" {
		return nil
	}

	tr, err := tracker.Open(a.cfg, a.opts...)
	if err != nil {
		return err
	}
	a.tracker = tr
	logger.Debug("command started", "command", cmd.Name(), "backend", a.cfg.Backend)
	return nil
}

func (a *app) close() {
	if a.tracker != nil {
		if err := a.tracker.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
		a.tracker = nil
	}
	logger.Close()
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	a := &app{}
	err := a.rootCommand().Execute()
	if err != nil {
		logger.Error("command failed", "error", err)
	}
	a.close()
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
