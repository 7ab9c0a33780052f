// Package server wires the HTTP surface: Connect RPC routes, health and
// metrics endpoints, and the shared middleware.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/middleware"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/observability"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/rpc"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Metrics        *observability.Collector
	Logger         *slog.Logger
}

// NewRouter mounts the seating service and the operational endpoints.
func NewRouter(svc rpc.SeatingServiceHandler, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(opts.Logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms", "X-Request-ID"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms", "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/healthz", healthCheck)
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	path, handler := rpc.NewSeatingServiceHandler(svc, connect.WithInterceptors(
		middleware.MetricsInterceptor(opts.Metrics),
		middleware.LoggingInterceptor(opts.Logger),
	))
	router.Mount(path, handler)

	return router
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs all incoming requests
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", chimiddleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
