package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/report"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/seed"
)

// withApp builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts.Config, opts.Logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// output writes v as indented JSON or through the text renderer.
func output(w io.Writer, format string, v any, text func(io.Writer) error) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Import an event with its guests and tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			file, err := seed.Parse(f)
			if err != nil {
				return err
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				sum, err := seed.Import(ctx, a.store, file)
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), rootOpts.Format, sum, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Imported event %s: %d guests, %d tables, %d seated\n",
						sum.EventID, sum.Guests, sum.Tables, sum.Seated)
					return err
				})
			})
		},
	}
}

// NewArrangeCommand creates the arrange command.
func NewArrangeCommand(rootOpts *RootOptions) *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "arrange <event-id>",
		Short: "Seat an event's guests automatically",
		Long: `Runs the arrangement engine for an event using a constraint preset from
the config file ("default" when omitted) and writes the result back to the
guest and table directories. Locked tables are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := rootOpts.Config.Preset(preset)
			if !ok {
				return fmt.Errorf("unknown preset %q", preset)
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				result, runErr := a.engine.Arrange(ctx, args[0], c)
				if result == nil {
					return runErr
				}
				if err := output(cmd.OutOrStdout(), rootOpts.Format, result, func(w io.Writer) error {
					return report.WriteResult(w, result)
				}); err != nil {
					return err
				}
				return runErr
			})
		},
	}

	cmd.Flags().StringVarP(&preset, "preset", "p", "", "constraint preset name")
	return cmd
}

// errInconsistent makes validate exit non-zero after printing the report.
var errInconsistent = errors.New("seating is inconsistent")

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <event-id>",
		Short: "Check guest and table assignments for consistency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				v, err := a.engine.Validate(ctx, args[0])
				if err != nil {
					return err
				}
				if err := output(cmd.OutOrStdout(), rootOpts.Format, v, func(w io.Writer) error {
					return report.WriteValidation(w, v)
				}); err != nil {
					return err
				}
				if !v.IsValid {
					return errInconsistent
				}
				return nil
			})
		},
	}
}

// NewChartCommand creates the chart command.
func NewChartCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chart <event-id>",
		Short: "Print the current seating chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				chart, err := a.engine.Chart(ctx, args[0])
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), rootOpts.Format, chart, func(w io.Writer) error {
					return report.WriteChart(w, chart)
				})
			})
		},
	}
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <event-id> <guest-id> <table-id>",
		Short: "Seat a guest at a table by hand",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.engine.AssignGuest(ctx, args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Guest %s seated at table %s\n", args[1], args[2])
				return nil
			})
		},
	}
}

// NewUnassignCommand creates the unassign command.
func NewUnassignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <event-id> <guest-id>",
		Short: "Remove a guest from their table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.engine.UnassignGuest(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Guest %s unassigned\n", args[1])
				return nil
			})
		},
	}
}

// NewLockCommand creates the lock command.
func NewLockCommand(rootOpts *RootOptions) *cobra.Command {
	var unlock bool

	cmd := &cobra.Command{
		Use:   "lock <event-id> <table-id>",
		Short: "Freeze a table so automatic arrangement leaves it alone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if err := a.engine.SetTableLock(ctx, args[0], args[1], !unlock); err != nil {
					return err
				}
				state := "locked"
				if unlock {
					state = "unlocked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Table %s %s\n", args[1], state)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&unlock, "unlock", false, "release the table instead")
	return cmd
}
