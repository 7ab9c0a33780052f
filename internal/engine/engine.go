// Package engine runs seating arrangements for events: it snapshots the
// directories, allocates guests to tables, writes the plan back and scores it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/arrangement"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/lock"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/observability"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/validation"
)

const tracerName = "github.com/dezmenn/Konfem-RSVP-sub001/internal/engine"

// DefaultRunTimeout bounds a run when Options.RunTimeout is zero.
const DefaultRunTimeout = 30 * time.Second

// Options configures an Engine. The zero value is usable.
type Options struct {
	// RunTimeout bounds each arrangement run and manual move, waiting for the
	// event lock included.
	RunTimeout time.Duration

	// Weights blends the score components. Zero weights use the defaults.
	Weights arrangement.Weights

	// Locks serializes runs and manual moves per event.
	Locks *lock.Manager

	Metrics *observability.Collector
	Tracer  trace.Tracer
	Logger  *slog.Logger
}

// Engine is the seating arrangement facade.
type Engine struct {
	store     storage.Store
	locks     *lock.Manager
	timeout   time.Duration
	weights   arrangement.Weights
	metrics   *observability.Collector
	tracer    trace.Tracer
	logger    *slog.Logger
	allocator *arrangement.Allocator
	sync      *synchronizer
}

// New creates an engine over the given store.
func New(store storage.Store, opts Options) *Engine {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.Weights == (arrangement.Weights{}) {
		opts.Weights = arrangement.DefaultWeights()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Locks == nil {
		opts.Locks = lock.NewManager(lock.WithLogger(opts.Logger))
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}

	return &Engine{
		store:     store,
		locks:     opts.Locks,
		timeout:   opts.RunTimeout,
		weights:   opts.Weights,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		logger:    opts.Logger,
		allocator: arrangement.NewAllocator(opts.Logger),
		sync:      newSynchronizer(store, opts.Metrics, opts.Logger),
	}
}

// Arrange seats the event's eligible guests under the given constraints.
//
// Invalid input is rejected before any write. Placement problems are reported
// as conflicts on a successful result. When a data-access fault stops the run,
// the returned result has Success=false and State=RunFailed and the error
// wraps ErrRunFailed; guests already moved stay moved.
func (e *Engine) Arrange(ctx context.Context, eventID string, c models.Constraints) (*models.Result, error) {
	if err := validation.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstraints, err)
	}
	if err := e.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	var result *models.Result
	var runErr error
	err := e.withEventLock(ctx, eventID, func(ctx context.Context) error {
		result, runErr = e.run(ctx, eventID, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, runErr
}

func (e *Engine) run(ctx context.Context, eventID string, c models.Constraints) (*models.Result, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Arrange", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.Bool("constraints.respect_relationships", c.RespectRelationships),
		attribute.Bool("constraints.balance_sides", c.BalanceBrideGroomSides),
		attribute.Bool("constraints.enhanced", c.Enhanced),
	))
	defer span.End()

	started := time.Now()
	r := newRun(eventID, span, e.logger)
	e.logger.Info("Arrangement started", "event_id", eventID)

	fail := func(stage string, stats syncStats, conflicts []models.Conflict, err error) (*models.Result, error) {
		failedIn := r.state
		r.to(models.RunFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)

		result := &models.Result{
			Success:         false,
			Message:         fmt.Sprintf("arrangement failed during %s: %v", stage, err),
			State:           models.RunFailed,
			Conflicts:       conflicts,
			SyncedGuests:    stats.synced,
			AttemptedGuests: stats.attempted,
		}
		e.metrics.RunFinished(result, time.Since(started))
		e.logger.Error("Arrangement failed",
			"event_id", eventID,
			"state", failedIn.String(),
			"synced", stats.synced,
			"attempted", stats.attempted,
			"error", err,
		)
		return result, fmt.Errorf("%w: %w", ErrRunFailed, err)
	}

	guests, err := e.store.ListGuests(ctx, eventID)
	if err != nil {
		return fail("load", syncStats{}, nil, fmt.Errorf("failed to list guests: %w", err))
	}
	tables, err := e.store.ListTables(ctx, eventID)
	if err != nil {
		return fail("load", syncStats{}, nil, fmt.Errorf("failed to list tables: %w", err))
	}

	r.to(models.RunGrouping)
	snap := arrangement.NewSnapshot(guests, tables, c)
	groups := arrangement.GroupGuests(snap.Eligible)
	span.SetAttributes(
		attribute.Int("guests.eligible", len(snap.Eligible)),
		attribute.Int("guests.frozen", len(snap.Frozen)),
		attribute.Int("groups", len(groups)),
		attribute.Int("tables", len(snap.Tables)),
	)

	r.to(models.RunAllocating)
	plan, err := e.allocator.Allocate(ctx, snap, groups)
	if err != nil {
		return fail("allocate", syncStats{}, nil, err)
	}

	r.to(models.RunSynchronizing)
	stats, err := e.sync.apply(ctx, snap, plan)
	if err != nil {
		return fail("synchronize", stats, plan.Conflicts, err)
	}

	r.to(models.RunScoring)
	report := arrangement.Evaluate(plan, e.weights)

	r.to(models.RunComplete)
	result := &models.Result{
		Success:         true,
		Message:         summary(plan, report, stats.assigned),
		State:           models.RunComplete,
		ArrangedGuests:  stats.assigned,
		Score:           report.Score,
		Conflicts:       report.Conflicts,
		Assignments:     plan.TableAssignments(),
		SyncedGuests:    stats.synced,
		AttemptedGuests: stats.attempted,
	}
	span.SetAttributes(
		attribute.Float64("result.score", result.Score),
		attribute.Int("result.conflicts", len(result.Conflicts)),
		attribute.Int("result.synced", result.SyncedGuests),
	)
	e.metrics.RunFinished(result, time.Since(started))
	e.logger.Info("Arrangement complete",
		"event_id", eventID,
		"arranged", result.ArrangedGuests,
		"unplaced", len(plan.Unplaced),
		"score", result.Score,
		"conflicts", len(result.Conflicts),
		"synced", result.SyncedGuests,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

func summary(plan *arrangement.Plan, report arrangement.Report, arranged int) string {
	used := 0
	for _, t := range plan.Tables {
		if len(t.Guests) > 0 {
			used++
		}
	}
	msg := fmt.Sprintf("arranged %d guests across %d tables", arranged, used)
	if n := len(plan.Unplaced); n > 0 {
		msg += fmt.Sprintf(", %d could not be seated", n)
	}
	if n := len(report.Conflicts); n > 0 {
		msg += fmt.Sprintf(" (%d conflicts)", n)
	}
	return msg
}

// requireEvent maps a missing event to ErrEventNotFound.
func (e *Engine) requireEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrEventNotFound
	}
	if _, err := e.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	return nil
}

// withEventLock runs fn under the event's lock and maps contention to
// ErrArrangementInProgress. Waiting for the lock and fn share one run timeout.
func (e *Engine) withEventLock(ctx context.Context, eventID string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.locks.WithLock(ctx, eventID, fn)
	switch {
	case errors.Is(err, lock.ErrBusy):
		e.metrics.RunRejected()
		e.logger.Warn("Event is busy", "event_id", eventID)
		return ErrArrangementInProgress
	case errors.Is(err, lock.ErrLeaseLost):
		e.logger.Error("Event lock lost before the work finished", "event_id", eventID, "error", err)
	}
	return err
}
