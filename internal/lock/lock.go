// Package lock serializes work per key, typically per event, within one
// process and optionally across replicas through a distributed locker.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrBusy is returned under the reject policy when the key is already held.
	ErrBusy = errors.New("lock busy")

	// ErrLockHeld is returned by DistributedLocker.TryLock when another holder
	// owns the key.
	ErrLockHeld = errors.New("lock held by another holder")

	// ErrLeaseLost is returned when a distributed lease could not be renewed
	// while work was running under it.
	ErrLeaseLost = errors.New("distributed lease lost")
)

// Lease is a held distributed lock.
type Lease interface {
	// Refresh extends the lease to ttl from now. It returns ErrLeaseLost when
	// the lease expired or another holder owns the key.
	Refresh(ctx context.Context, ttl time.Duration) error

	// Release gives the lock up. A lease owned by another holder is left alone.
	Release(ctx context.Context) error
}

// DistributedLocker coordinates access to a key across processes.
type DistributedLocker interface {
	// Lock blocks until the lock is acquired or ctx is done.
	Lock(ctx context.Context, key string, ttl time.Duration) (Lease, error)

	// TryLock acquires the lock or returns ErrLockHeld immediately.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Policy decides what happens when a key is already held.
type Policy string

const (
	// PolicyReject fails fast with ErrBusy.
	PolicyReject Policy = "reject"

	// PolicyWait queues the caller until the holder finishes or ctx is done.
	PolicyWait Policy = "wait"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyReject || p == PolicyWait
}

// entry holds the semaphore and the reference count.
type entry struct {
	sem  chan struct{}
	refs int
}

// Manager hands out per-key locks.
// It uses reference counting to garbage collect unused entries.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*entry

	policy Policy
	locker DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithPolicy sets the contention policy. Unknown policies are ignored.
func WithPolicy(p Policy) Option {
	return func(m *Manager) {
		if p.Valid() {
			m.policy = p
		}
	}
}

// WithLocker enables distributed locking with the given lease TTL. The lease is
// renewed every third of the TTL while work runs under it.
func WithLocker(locker DistributedLocker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a lock manager. The default policy is PolicyReject.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:  make(map[string]*entry),
		policy: PolicyReject,
		ttl:    time.Minute,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the contention policy in effect.
func (m *Manager) Policy() Policy {
	return m.policy
}

// acquire gets or creates an entry and increments its reference count.
// The caller must call release(key) once done with the entry.
func (m *Manager) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	return e
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(m.locks, key)
	}
}

// Held reports whether some caller currently holds or waits for key.
func (m *Manager) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.locks[key]
	return ok
}

// WithLock runs fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	e := m.acquire(key)
	defer m.release(key)

	switch m.policy {
	case PolicyWait:
		select {
		case e.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		select {
		case e.sem <- struct{}{}:
		default:
			return ErrBusy
		}
	}
	defer func() { <-e.sem }()

	if m.locker == nil {
		return fn(ctx)
	}

	lease, err := m.lockDistributed(ctx, key)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := m.keepAlive(runCtx, cancel, key, lease)
	defer func() {
		// The run context may already be done; the lease must still be released.
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"key", key,
				"error", err,
			)
		}
	}()

	err = fn(runCtx)
	stop()
	if cause := context.Cause(runCtx); errors.Is(cause, ErrLeaseLost) {
		return errors.Join(cause, err)
	}
	return err
}

// keepAlive refreshes lease until stop is called or ctx is done. A failed
// refresh cancels ctx with ErrLeaseLost so the work under the lock stops.
func (m *Manager) keepAlive(ctx context.Context, lost context.CancelCauseFunc, key string, lease Lease) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(max(m.ttl/3, time.Millisecond))
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := lease.Refresh(ctx, m.ttl); err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Error("Distributed lock lost while held", "key", key, "error", err)
				if !errors.Is(err, ErrLeaseLost) {
					err = fmt.Errorf("%w: %w", ErrLeaseLost, err)
				}
				lost(fmt.Errorf("key %s: %w", key, err))
				return
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (m *Manager) lockDistributed(ctx context.Context, key string) (Lease, error) {
	if m.policy == PolicyWait {
		lease, err := m.locker.Lock(ctx, key, m.ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		return lease, nil
	}

	lease, err := m.locker.TryLock(ctx, key, m.ttl)
	if errors.Is(err, ErrLockHeld) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	return lease, nil
}
