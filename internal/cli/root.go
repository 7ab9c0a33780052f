// Package cli implements the seating command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/config"
	"github.com/dezmenn/Konfem-RSVP-sub001/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Format     string // "json" | "text"

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the seating CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "seating",
		Short: "Seating arrangement engine for event guests",
		Long: `Assigns event guests to tables under capacity, relationship and side
balance constraints, keeps the guest and table directories consistent,
and reports a quality score with the conflicts it found.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.DBPath != "" {
				cfg.Storage.Driver = config.DriverSQLite
				cfg.Storage.Path = opts.DBPath
			}
			opts.Config = cfg

			opts.Logger = logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides the config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewArrangeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewChartCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewUnassignCommand(opts))
	cmd.AddCommand(NewLockCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
