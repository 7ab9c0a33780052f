// Package report renders arrangement results, validation reports and seating
// charts as plain text for the command line.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// WriteResult renders the outcome of an arrangement run.
func WriteResult(w io.Writer, r *models.Result) error {
	fmt.Fprintf(w, "State:    %s\n", r.State)
	fmt.Fprintf(w, "Score:    %.2f\n", r.Score)
	fmt.Fprintf(w, "Arranged: %d guests (synced %d of %d moves)\n", r.ArrangedGuests, r.SyncedGuests, r.AttemptedGuests)
	fmt.Fprintf(w, "Message:  %s\n", r.Message)

	if len(r.Assignments) > 0 {
		fmt.Fprintln(w)
		tw := newTabWriter(w)
		fmt.Fprintln(tw, "TABLE\tGUESTS")
		for _, a := range r.Assignments {
			fmt.Fprintf(tw, "%s\t%s\n", a.TableName, orDash(strings.Join(a.GuestIDs, ", ")))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write assignments: %w", err)
		}
	}

	return writeConflicts(w, r.Conflicts)
}

func writeConflicts(w io.Writer, conflicts []models.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "SEVERITY\tKIND\tTABLE\tMESSAGE")
	for _, c := range conflicts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Severity, c.Kind, orDash(c.TableID), c.Message)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write conflicts: %w", err)
	}
	return nil
}

// WriteValidation renders a consistency report.
func WriteValidation(w io.Writer, v *models.ValidationReport) error {
	if v.IsValid {
		fmt.Fprintln(w, "Seating is consistent.")
	} else {
		fmt.Fprintf(w, "Seating has %d errors.\n", len(v.Errors))
	}
	for _, e := range v.Errors {
		fmt.Fprintf(w, "  error:   %s\n", e)
	}
	for _, warn := range v.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for _, note := range v.Notes {
		fmt.Fprintf(w, "  note:    %s\n", note)
	}
	return nil
}

// WriteChart renders the current seating of an event.
func WriteChart(w io.Writer, c *models.Chart) error {
	fmt.Fprintf(w, "Event: %s (%s)\n", c.Event.Name, c.Event.ID)
	fmt.Fprintf(w, "Seats: %d of %d\n", c.TotalSeats(), c.TotalCapacity())

	if len(c.Tables) > 0 {
		fmt.Fprintln(w)
		tw := newTabWriter(w)
		fmt.Fprintln(tw, "TABLE\tSEATS\tLOCKED\tGUESTS")
		for _, t := range c.Tables {
			locked := "no"
			if t.Table.IsLocked {
				locked = "yes"
			}
			fmt.Fprintf(tw, "%s\t%d/%d\t%s\t%s\n", t.Table.Name, t.Seats, t.Table.Capacity, locked, orDash(guestNames(t.Guests)))
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
	}

	if len(c.Unassigned) > 0 {
		fmt.Fprintf(w, "\nUnassigned (%d): %s\n", len(c.Unassigned), guestNames(c.Unassigned))
	}
	return nil
}

func guestNames(guests []models.Guest) string {
	names := make([]string, len(guests))
	for i, g := range guests {
		names[i] = g.Name
		if g.AdditionalGuestCount > 0 {
			names[i] += fmt.Sprintf(" (+%d)", g.AdditionalGuestCount)
		}
	}
	return strings.Join(names, ", ")
}
