package engine

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

// transitions lists the legal next states of each state.
var transitions = map[models.RunState][]models.RunState{
	models.RunIdle:          {models.RunGrouping, models.RunFailed},
	models.RunGrouping:      {models.RunAllocating, models.RunFailed},
	models.RunAllocating:    {models.RunSynchronizing, models.RunFailed},
	models.RunSynchronizing: {models.RunScoring, models.RunFailed},
	models.RunScoring:       {models.RunComplete, models.RunFailed},
}

// run tracks the state of one arrangement run.
type run struct {
	eventID string
	state   models.RunState
	span    trace.Span
	logger  *slog.Logger
}

func newRun(eventID string, span trace.Span, logger *slog.Logger) *run {
	return &run{
		eventID: eventID,
		state:   models.RunIdle,
		span:    span,
		logger:  logger,
	}
}

// to advances the state machine. An illegal transition is a programming error.
func (r *run) to(next models.RunState) {
	if !legal(r.state, next) {
		panic(fmt.Sprintf("engine: illegal run transition %s -> %s", r.state, next))
	}
	r.logger.Debug("Run state changed", "event_id", r.eventID, "from", r.state.String(), "to", next.String())
	r.state = next
	r.span.AddEvent(next.String(), trace.WithAttributes(attribute.String("run.state", next.String())))
}

func legal(from, to models.RunState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
