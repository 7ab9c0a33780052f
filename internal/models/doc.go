// Package models defines the core domain models for the seating engine.
//
// # Long-lived Models
//
// Guests, tables and events are owned by external directories (see package
// storage). The engine reads a snapshot of them at the start of each run and
// writes assignment changes back through the synchronizer.
//   - Event: the scope every guest and table belongs to
//   - Guest: an invited person plus the seats they bring along
//   - Table: a seating table with a capacity and a membership set
//
// # Per-run Models
//
// The following models only live for the duration of one arrangement run:
//   - Constraints: the knobs a caller passes to Arrange
//   - Conflict: an issue detected while allocating or scoring
//   - Result: the outcome of a run
//
// # Read Models
//
//   - ValidationReport: the outcome of a read-only consistency check
//   - Chart: an event's current seating with guests resolved per table
//
// # Ownership
//
// The guest↔table link is bidirectional in storage but has a single owner:
// Table.AssignedGuests is the authoritative membership set and
// Guest.TableAssignment is a back-reference. Only package engine writes either
// side, through the same move primitive for arrangement runs and manual
// assignments, so the two never drift apart from separate call sites.
package models
