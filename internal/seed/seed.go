// Package seed imports an event with its guests and tables from a YAML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/validation"
)

// File is the on-disk layout of a seed file.
type File struct {
	Event  Event   `yaml:"event" json:"event"`
	Tables []Table `yaml:"tables" json:"tables" validate:"dive"`
	Guests []Guest `yaml:"guests" json:"guests" validate:"dive"`
}

// Event describes the event being imported.
type Event struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

// Table describes a venue table.
type Table struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name" validate:"required"`
	Capacity int     `yaml:"capacity" json:"capacity" validate:"gt=0"`
	Locked   bool    `yaml:"locked" json:"locked"`
	X        float64 `yaml:"x" json:"x"`
	Y        float64 `yaml:"y" json:"y"`
}

// Guest describes an invited person. Table names a table by name or ID.
type Guest struct {
	ID               string   `yaml:"id" json:"id"`
	Name             string   `yaml:"name" json:"name" validate:"required"`
	Relationship     string   `yaml:"relationship" json:"relationship" validate:"required,oneof=Bride Groom Parent Sibling Grandparent Uncle Aunt Cousin Friend Colleague Other"`
	Side             string   `yaml:"side" json:"side" validate:"required,oneof=bride groom"`
	RSVP             string   `yaml:"rsvp" json:"rsvp" validate:"omitempty,oneof=accepted declined pending not_invited"`
	AdditionalGuests int      `yaml:"additional_guests" json:"additional_guests" validate:"gte=0"`
	Dietary          []string `yaml:"dietary" json:"dietary"`
	Table            string   `yaml:"table" json:"table"`
}

// Summary reports what an import created.
type Summary struct {
	EventID string
	Guests  int
	Tables  int
	Seated  int
}

// Parse decodes and validates a seed file.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := validation.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	return &f, nil
}

// Import writes the parsed file into the store. Missing IDs are generated.
// Guests pointing at a table are seated on both sides of the guest↔table link.
func Import(ctx context.Context, store storage.Store, f *File) (*Summary, error) {
	event := &models.Event{ID: f.Event.ID, Name: f.Event.Name}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	tables := make([]*models.Table, len(f.Tables))
	byRef := make(map[string]*models.Table, 2*len(f.Tables))
	for i, t := range f.Tables {
		table := &models.Table{
			ID:       t.ID,
			EventID:  event.ID,
			Name:     t.Name,
			Capacity: t.Capacity,
			IsLocked: t.Locked,
			Position: models.Position{X: t.X, Y: t.Y},
		}
		if table.ID == "" {
			table.ID = uuid.New().String()
		}
		if _, dup := byRef[table.ID]; dup {
			return nil, fmt.Errorf("duplicate table id %s", table.ID)
		}
		if _, dup := byRef[table.Name]; dup {
			return nil, fmt.Errorf("duplicate table name %s", table.Name)
		}
		byRef[table.ID] = table
		byRef[table.Name] = table
		tables[i] = table
	}

	guests := make([]*models.Guest, len(f.Guests))
	seen := make(map[string]bool, len(f.Guests))
	seated := 0
	for i, g := range f.Guests {
		guest := &models.Guest{
			ID:                   g.ID,
			EventID:              event.ID,
			Name:                 g.Name,
			RelationshipType:     models.RelationshipType(g.Relationship),
			Side:                 models.Side(g.Side),
			RSVPStatus:           models.RSVPStatus(g.RSVP),
			AdditionalGuestCount: g.AdditionalGuests,
			DietaryRestrictions:  g.Dietary,
		}
		if guest.ID == "" {
			guest.ID = uuid.New().String()
		}
		if seen[guest.ID] {
			return nil, fmt.Errorf("duplicate guest id %s", guest.ID)
		}
		seen[guest.ID] = true
		if guest.RSVPStatus == "" {
			guest.RSVPStatus = models.RSVPAccepted
		}
		if ref := strings.TrimSpace(g.Table); ref != "" {
			table, ok := byRef[ref]
			if !ok {
				return nil, fmt.Errorf("guest %s references unknown table %q", guest.Name, ref)
			}
			guest.TableAssignment = table.ID
			table.AssignedGuests = append(table.AssignedGuests, guest.ID)
			seated++
		}
		guests[i] = guest
	}

	if err := store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	for _, table := range tables {
		if err := store.CreateTable(ctx, table); err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", table.Name, err)
		}
	}
	for _, guest := range guests {
		if err := store.CreateGuest(ctx, guest); err != nil {
			return nil, fmt.Errorf("failed to create guest %s: %w", guest.Name, err)
		}
	}

	slog.Info("Seed imported",
		"event_id", event.ID,
		"tables", len(tables),
		"guests", len(guests),
		"seated", seated,
	)

	return &Summary{
		EventID: event.ID,
		Guests:  len(guests),
		Tables:  len(tables),
		Seated:  seated,
	}, nil
}
