// Package cli implements the taskflow command-line interface: a cobra command
// tree over one attached backend, configured by config.yaml through viper.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/taskflow/internal/backend"
	"github.com/mesh-intelligence/taskflow/internal/generator"
	"github.com/mesh-intelligence/taskflow/internal/paths"
	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by one command tree.
type app struct {
	flags    rootFlags
	settings settings
	logger   *log.Logger
}

// NewRootCmd creates the top-level "taskflow" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "A simulated task-management backend",
		Long: "taskflow drives a mock TaskFlow backend: workspaces, tasks, teams and users\n" +
			"generated from a seed, stored locally, with simulated latency and faults.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newSeedCmd(),
		a.newTaskCmd(),
		a.newUserCmd(),
		a.newWorkspaceCmd(),
		a.newTeamCmd(),
		a.newConfigCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newStatsCmd(),
		a.newResetCmd(),
		a.newLoginCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// systemError marks failures of the environment rather than of the input.
type systemError struct{ err error }

func (e systemError) Error() string { return e.err.Error() }
func (e systemError) Unwrap() error { return e.err }

func sysErr(format string, args ...any) error {
	return systemError{fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var se systemError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}

// setup builds the logger and loads config.yaml before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := log.WarnLevel
	if a.flags.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "taskflow",
	})

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr("resolve config dir: %w", err)
	}
	s, err := loadSettings(configDir)
	if err != nil {
		return sysErr("load config: %w", err)
	}
	s.ConfigDir = configDir
	a.settings = s
	a.logger.Debug("config loaded", "dir", configDir, "backend", s.Backend)
	return nil
}

// storageConfig resolves the data directory and returns the backend Config.
func (a *app) storageConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.settings.DataDir)
	if err != nil {
		return types.Config{}, sysErr("resolve data dir: %w", err)
	}
	return types.Config{Backend: a.settings.Backend, DataDir: dataDir}, nil
}

// withBackend attaches a backend for the duration of fn.
func (a *app) withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *backend.Backend) error) error {
	cfg, err := a.storageConfig()
	if err != nil {
		return err
	}
	logger := a.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts := generator.DefaultDatasetOptions()
	opts.Seed = a.settings.Seed
	b := backend.New(backend.Options{Logger: logger, Dataset: opts})
	if err := b.Attach(cfg); err != nil {
		return sysErr("attach backend: %w", err)
	}
	defer func() {
		if err := b.Detach(); err != nil {
			logger.Warn("detach backend", "err", err)
		}
	}()
	return fn(cmd.Context(), b)
}
