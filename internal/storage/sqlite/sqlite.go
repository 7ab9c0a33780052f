// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// Ensure SQLiteStore implements storage.Store and storage.Mover
var (
	_ storage.Store = (*SQLiteStore)(nil)
	_ storage.Mover = (*SQLiteStore)(nil)
)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps the pragma below in effect.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateEvent persists a new event to the database.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, name, created_at) VALUES (?, ?, ?)",
		event.ID, event.Name, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event := &models.Event{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM events WHERE id = ?",
		eventID,
	).Scan(&event.ID, &event.Name, &event.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// MoveGuest moves a guest between table memberships and updates its
// back-reference in a single transaction.
func (s *SQLiteStore) MoveGuest(ctx context.Context, guestID, fromTableID, toTableID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireRow(ctx, tx, "SELECT 1 FROM guests WHERE id = ?", guestID, "guest"); err != nil {
		return err
	}

	if fromTableID != "" {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM table_guests WHERE table_id = ? AND guest_id = ?",
			fromTableID, guestID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove guest from table: %w", err)
		}
	}

	if toTableID != "" {
		if err := requireRow(ctx, tx, "SELECT 1 FROM venue_tables WHERE id = ?", toTableID, "table"); err != nil {
			return err
		}
		if err := appendMember(ctx, tx, toTableID, guestID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE guests SET table_assignment = ? WHERE id = ?",
		toTableID, guestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update table assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// requireRow returns storage.ErrNotFound when the query yields no row.
func requireRow(ctx context.Context, tx *sql.Tx, query, id, kind string) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	return nil
}

// appendMember adds a guest at the end of a table's membership. Existing
// members keep their position.
func appendMember(ctx context.Context, tx *sql.Tx, tableID, guestID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO table_guests (table_id, guest_id, seq)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM table_guests WHERE table_id = ?))`,
		tableID, guestID, tableID,
	)
	if err != nil {
		return fmt.Errorf("failed to add guest to table: %w", err)
	}
	return nil
}
