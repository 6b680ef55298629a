// Package cli implements the relstore command line.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/koustreak/relstore/internal/config"
	"github.com/koustreak/relstore/internal/database"
	"github.com/koustreak/relstore/internal/logger"
)

// RootOptions holds global flags and the state PersistentPreRunE derives
// from them.
type RootOptions struct {
	ConfigPath string
	Driver     string
	DSN        string
	LogLevel   string
	Format     string // "json" | "text"

	cfg *config.Config
	log *logger.Logger
	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the relstore CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{now: time.Now})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relstore",
		Short: "relstore - a small relational store client",
		Long: `relstore runs parameterized statements and table lifecycle actions
(create, drop, backup) against an embedded SQLite database, or MySQL and
Postgres through the same client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite|mysql|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database file or connection string")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewTableCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// setup validates global flags and layers them over the loaded config.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Database.Driver = database.Driver(o.Driver)
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = o.DSN
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	cfg.Log.Output = cmd.ErrOrStderr()

	o.cfg = cfg
	o.log = logger.New(&cfg.Log)
	return nil
}

// open connects to the configured database.
func (o *RootOptions) open(ctx context.Context) (*database.Client, error) {
	c, err := database.Open(ctx, &o.cfg.Database,
		database.WithLogger(o.log),
		database.WithClock(o.now),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return c, nil
}

// output returns a formatter bound to cmd's stdout.
func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}
