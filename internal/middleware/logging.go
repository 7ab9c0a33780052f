package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// eventScoped is implemented by request messages that target one event.
type eventScoped interface {
	GetEventID() string
}

// LoggingInterceptor returns a Connect interceptor that writes one line per
// RPC: procedure, target event, chi request ID, duration and, on failure, the
// Connect code. Caller mistakes log at Warn, server faults at Error.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if m, ok := req.Any().(eventScoped); ok && m.GetEventID() != "" {
				attrs = append(attrs, slog.String("event_id", m.GetEventID()))
			}
			if id := chimw.GetReqID(ctx); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			if err == nil {
				logger.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs,
				slog.String("code", code.String()),
				slog.String("error", errorMessage(err)),
			)
			logger.LogAttrs(ctx, levelFor(code), "RPC failed", attrs...)
			return resp, err
		}
	}
}

// levelFor maps a Connect code to the level its failure is logged at.
func levelFor(code connect.Code) slog.Level {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return slog.LevelError
	case connect.CodeAborted:
		// Another run holds the event.
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func errorMessage(err error) string {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Message()
	}
	return err.Error()
}
