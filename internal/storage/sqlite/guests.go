package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// CreateGuest persists a new guest and its dietary restrictions.
func (s *SQLiteStore) CreateGuest(ctx context.Context, guest *models.Guest) error {
	if guest.ID == "" {
		guest.ID = uuid.New().String()
	}
	if guest.CreatedAt == 0 {
		guest.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO guests (id, event_id, name, relationship_type, side, rsvp_status,
		                     additional_guest_count, table_assignment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		guest.ID, guest.EventID, guest.Name, string(guest.RelationshipType), string(guest.Side),
		string(guest.RSVPStatus), guest.AdditionalGuestCount, guest.TableAssignment, guest.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert guest: %w", err)
	}

	for _, r := range guest.DietaryRestrictions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO guest_dietary (guest_id, restriction) VALUES (?, ?)",
			guest.ID, r,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dietary restriction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListGuests retrieves all guests of an event ordered by ID.
func (s *SQLiteStore) ListGuests(ctx context.Context, eventID string) ([]models.Guest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, name, relationship_type, side, rsvp_status,
		        additional_guest_count, table_assignment, created_at
		 FROM guests WHERE event_id = ? ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var guests []models.Guest
	index := make(map[string]int)
	for rows.Next() {
		var g models.Guest
		var rel, side, rsvp string
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &rel, &side, &rsvp,
			&g.AdditionalGuestCount, &g.TableAssignment, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		g.RelationshipType = models.RelationshipType(rel)
		g.Side = models.Side(side)
		g.RSVPStatus = models.RSVPStatus(rsvp)
		index[g.ID] = len(guests)
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guests: %w", err)
	}
	rows.Close()

	dietRows, err := s.db.QueryContext(ctx,
		`SELECT d.guest_id, d.restriction
		 FROM guest_dietary d JOIN guests g ON g.id = d.guest_id
		 WHERE g.event_id = ? ORDER BY d.guest_id, d.restriction`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dietary restrictions: %w", err)
	}
	defer dietRows.Close()

	for dietRows.Next() {
		var guestID, restriction string
		if err := dietRows.Scan(&guestID, &restriction); err != nil {
			return nil, fmt.Errorf("failed to scan dietary restriction: %w", err)
		}
		if i, ok := index[guestID]; ok {
			guests[i].DietaryRestrictions = append(guests[i].DietaryRestrictions, restriction)
		}
	}
	if err := dietRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dietary restrictions: %w", err)
	}

	return guests, nil
}

// SetTableAssignment updates a guest's back-reference.
func (s *SQLiteStore) SetTableAssignment(ctx context.Context, guestID, tableID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE guests SET table_assignment = ? WHERE id = ?",
		tableID, guestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update table assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("guest %s: %w", guestID, storage.ErrNotFound)
	}
	return nil
}
