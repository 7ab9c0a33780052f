// Package breaker guards a storage.Store with a circuit breaker so a failing
// backend is cut off instead of being hammered by every run.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
)

// Config holds configuration for the circuit breaker.
type Config struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration

	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests have been observed.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns the default breaker configuration.
func DefaultConfig() Config {
	return Config{
		Name:             "storage",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Store wraps a storage.Store. Not-found errors never count as failures.
type Store struct {
	next storage.Store
	cb   *gobreaker.CircuitBreaker
}

// MoverStore is a Store whose backend supports atomic moves.
type MoverStore struct {
	*Store
	mover storage.Mover
}

// Wrap guards next with a circuit breaker. The result implements
// storage.Mover exactly when next does.
func Wrap(next storage.Store, cfg Config, logger *slog.Logger) storage.Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, storage.ErrNotFound) || errors.Is(err, context.Canceled)
			},
		}),
	}
	if m, ok := next.(storage.Mover); ok {
		return &MoverStore{Store: s, mover: m}
	}
	return s
}

// State returns the breaker state.
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

func (s *Store) exec(fn func() error) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}

func query[T any](s *Store, fn func() (T, error)) (T, error) {
	var out T
	err := s.exec(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

// Close closes the wrapped store without going through the breaker.
func (s *Store) Close() error {
	return s.next.Close()
}

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	return s.exec(func() error { return s.next.CreateEvent(ctx, event) })
}

func (s *Store) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return query(s, func() (*models.Event, error) { return s.next.GetEvent(ctx, eventID) })
}

func (s *Store) CreateGuest(ctx context.Context, guest *models.Guest) error {
	return s.exec(func() error { return s.next.CreateGuest(ctx, guest) })
}

func (s *Store) ListGuests(ctx context.Context, eventID string) ([]models.Guest, error) {
	return query(s, func() ([]models.Guest, error) { return s.next.ListGuests(ctx, eventID) })
}

func (s *Store) SetTableAssignment(ctx context.Context, guestID, tableID string) error {
	return s.exec(func() error { return s.next.SetTableAssignment(ctx, guestID, tableID) })
}

func (s *Store) CreateTable(ctx context.Context, table *models.Table) error {
	return s.exec(func() error { return s.next.CreateTable(ctx, table) })
}

func (s *Store) ListTables(ctx context.Context, eventID string) ([]models.Table, error) {
	return query(s, func() ([]models.Table, error) { return s.next.ListTables(ctx, eventID) })
}

func (s *Store) SetAssignedGuests(ctx context.Context, tableID string, guestIDs []string) error {
	return s.exec(func() error { return s.next.SetAssignedGuests(ctx, tableID, guestIDs) })
}

func (s *Store) SetTableLocked(ctx context.Context, tableID string, locked bool) error {
	return s.exec(func() error { return s.next.SetTableLocked(ctx, tableID, locked) })
}

func (s *MoverStore) MoveGuest(ctx context.Context, guestID, fromTableID, toTableID string) error {
	return s.exec(func() error { return s.mover.MoveGuest(ctx, guestID, fromTableID, toTableID) })
}
