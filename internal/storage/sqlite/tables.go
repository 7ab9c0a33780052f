package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// CreateTable persists a new table and its initial membership.
func (s *SQLiteStore) CreateTable(ctx context.Context, table *models.Table) error {
	if table.ID == "" {
		table.ID = uuid.New().String()
	}
	if table.CreatedAt == 0 {
		table.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO venue_tables (id, event_id, name, capacity, is_locked, pos_x, pos_y, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		table.ID, table.EventID, table.Name, table.Capacity, table.IsLocked,
		table.Position.X, table.Position.Y, table.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert table: %w", err)
	}

	for _, guestID := range table.AssignedGuests {
		if err := appendMember(ctx, tx, table.ID, guestID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTables retrieves all tables of an event with their memberships.
func (s *SQLiteStore) ListTables(ctx context.Context, eventID string) ([]models.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, name, capacity, is_locked, pos_x, pos_y, created_at
		 FROM venue_tables WHERE event_id = ? ORDER BY name, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []models.Table
	index := make(map[string]int)
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Capacity, &t.IsLocked,
			&t.Position.X, &t.Position.Y, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		index[t.ID] = len(tables)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}
	rows.Close()

	memberRows, err := s.db.QueryContext(ctx,
		`SELECT m.table_id, m.guest_id
		 FROM table_guests m JOIN venue_tables t ON t.id = m.table_id
		 WHERE t.event_id = ? ORDER BY m.table_id, m.seq`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list table members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var tableID, guestID string
		if err := memberRows.Scan(&tableID, &guestID); err != nil {
			return nil, fmt.Errorf("failed to scan table member: %w", err)
		}
		if i, ok := index[tableID]; ok {
			tables[i].AssignedGuests = append(tables[i].AssignedGuests, guestID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate table members: %w", err)
	}

	return tables, nil
}

// SetAssignedGuests replaces a table's membership.
func (s *SQLiteStore) SetAssignedGuests(ctx context.Context, tableID string, guestIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireRow(ctx, tx, "SELECT 1 FROM venue_tables WHERE id = ?", tableID, "table"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM table_guests WHERE table_id = ?", tableID); err != nil {
		return fmt.Errorf("failed to clear table members: %w", err)
	}
	for _, guestID := range guestIDs {
		if err := appendMember(ctx, tx, tableID, guestID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetTableLocked toggles a table's lock flag.
func (s *SQLiteStore) SetTableLocked(ctx context.Context, tableID string, locked bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE venue_tables SET is_locked = ? WHERE id = ?",
		locked, tableID,
	)
	if err != nil {
		return fmt.Errorf("failed to update table lock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("table %s: %w", tableID, storage.ErrNotFound)
	}
	return nil
}
