package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/engine"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/lock"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/rpc"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/storage"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/validation"
)

// SeatingService implements the Connect SeatingService.
type SeatingService struct {
	engine  *engine.Engine
	presets map[string]models.Constraints
}

var _ rpc.SeatingServiceHandler = (*SeatingService)(nil)

// NewSeatingService creates a SeatingService over the given engine.
// Presets are looked up by ArrangeRequest.Preset.
func NewSeatingService(eng *engine.Engine, presets map[string]models.Constraints) *SeatingService {
	return &SeatingService{engine: eng, presets: presets}
}

// Arrange runs an automatic arrangement for an event.
func (s *SeatingService) Arrange(ctx context.Context, req *connect.Request[rpc.ArrangeRequest]) (*connect.Response[rpc.ArrangeResponse], error) {
	slog.Info("Arrange request received",
		"event_id", req.Msg.EventID,
		"preset", req.Msg.Preset,
		"custom_constraints", req.Msg.Constraints != nil,
	)

	if err := validation.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	c, err := s.constraints(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := s.engine.Arrange(ctx, req.Msg.EventID, c)
	if err != nil && result == nil {
		slog.Error("Arrange failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}
	if err != nil {
		// The failed result carries the synced/attempted counts.
		slog.Error("Arrange stopped", "event_id", req.Msg.EventID, "error", err)
	}

	slog.Info("Arrange finished",
		"event_id", req.Msg.EventID,
		"success", result.Success,
		"score", result.Score,
		"conflicts", len(result.Conflicts),
	)
	return connect.NewResponse(toArrangeResponse(result)), nil
}

func (s *SeatingService) constraints(msg *rpc.ArrangeRequest) (models.Constraints, error) {
	if msg.Constraints != nil {
		return *msg.Constraints, nil
	}
	name := msg.Preset
	if name == "" {
		name = "default"
	}
	if c, ok := s.presets[name]; ok {
		return c, nil
	}
	if name == "default" {
		return models.DefaultConstraints(), nil
	}
	return models.Constraints{}, fmt.Errorf("unknown preset %q", msg.Preset)
}

// Validate checks the guest↔table link of an event without writing.
func (s *SeatingService) Validate(ctx context.Context, req *connect.Request[rpc.ValidateRequest]) (*connect.Response[rpc.ValidateResponse], error) {
	slog.Info("Validate request received", "event_id", req.Msg.EventID)

	if err := validation.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	report, err := s.engine.Validate(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("Validate failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Validate successful",
		"event_id", req.Msg.EventID,
		"valid", report.IsValid,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"notes", len(report.Notes),
	)
	return connect.NewResponse(&rpc.ValidateResponse{
		IsValid:  report.IsValid,
		Errors:   nonNil(report.Errors),
		Warnings: nonNil(report.Warnings),
		Notes:    nonNil(report.Notes),
	}), nil
}

// AssignGuest seats a guest at a table by hand.
func (s *SeatingService) AssignGuest(ctx context.Context, req *connect.Request[rpc.AssignGuestRequest]) (*connect.Response[rpc.AssignGuestResponse], error) {
	slog.Info("AssignGuest request received",
		"event_id", req.Msg.EventID,
		"guest_id", req.Msg.GuestID,
		"table_id", req.Msg.TableID,
	)

	if err := validation.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.engine.AssignGuest(ctx, req.Msg.EventID, req.Msg.GuestID, req.Msg.TableID); err != nil {
		slog.Error("AssignGuest failed", "guest_id", req.Msg.GuestID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Guest assigned", "guest_id", req.Msg.GuestID, "table_id", req.Msg.TableID)
	return connect.NewResponse(&rpc.AssignGuestResponse{}), nil
}

// UnassignGuest removes a guest from their table.
func (s *SeatingService) UnassignGuest(ctx context.Context, req *connect.Request[rpc.UnassignGuestRequest]) (*connect.Response[rpc.UnassignGuestResponse], error) {
	slog.Info("UnassignGuest request received", "event_id", req.Msg.EventID, "guest_id", req.Msg.GuestID)

	if err := validation.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.engine.UnassignGuest(ctx, req.Msg.EventID, req.Msg.GuestID); err != nil {
		slog.Error("UnassignGuest failed", "guest_id", req.Msg.GuestID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Guest unassigned", "guest_id", req.Msg.GuestID)
	return connect.NewResponse(&rpc.UnassignGuestResponse{}), nil
}

// SetTableLock freezes or releases a table for automatic arrangement.
func (s *SeatingService) SetTableLock(ctx context.Context, req *connect.Request[rpc.SetTableLockRequest]) (*connect.Response[rpc.SetTableLockResponse], error) {
	slog.Info("SetTableLock request received",
		"event_id", req.Msg.EventID,
		"table_id", req.Msg.TableID,
		"locked", req.Msg.Locked,
	)

	if err := validation.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.engine.SetTableLock(ctx, req.Msg.EventID, req.Msg.TableID, req.Msg.Locked); err != nil {
		slog.Error("SetTableLock failed", "table_id", req.Msg.TableID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&rpc.SetTableLockResponse{}), nil
}

// GetChart returns the current seating of an event.
func (s *SeatingService) GetChart(ctx context.Context, req *connect.Request[rpc.GetChartRequest]) (*connect.Response[rpc.GetChartResponse], error) {
	slog.Info("GetChart request received", "event_id", req.Msg.EventID)

	if err := validation.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	chart, err := s.engine.Chart(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("GetChart failed", "event_id", req.Msg.EventID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetChart successful", "event_id", req.Msg.EventID, "tables", len(chart.Tables))
	return connect.NewResponse(toChartResponse(chart)), nil
}

// toConnectError maps engine and storage errors to Connect codes.
func toConnectError(err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, engine.ErrEventNotFound),
		errors.Is(err, engine.ErrGuestNotFound),
		errors.Is(err, engine.ErrTableNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, engine.ErrInvalidConstraints):
		code = connect.CodeInvalidArgument
	case errors.Is(err, engine.ErrArrangementInProgress),
		errors.Is(err, lock.ErrLeaseLost):
		code = connect.CodeAborted
	case errors.Is(err, engine.ErrTableFull):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, storage.ErrUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}
	return connect.NewError(code, err)
}
