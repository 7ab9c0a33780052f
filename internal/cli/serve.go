package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/server"
	"github.com/dezmenn/Konfem-RSVP-sub001/internal/service"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Connect RPC server",
		Long: `Serves seating.v1.SeatingService over Connect (HTTP/1.1 and h2c),
plus /healthz and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				rootOpts.Config.Server.Address = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, nil)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides the config)")
	return cmd
}

// runServe serves until ctx is done. When ready is non-nil it receives the
// bound address once the listener is open.
func runServe(ctx context.Context, opts *RootOptions, ready chan<- string) error {
	cfg, logger := opts.Config, opts.Logger

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := server.NewRouter(service.NewSeatingService(a.engine, cfg.PresetMap()), server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        a.metrics,
		Logger:         logger,
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect gRPC clients)
	srv := &http.Server{
		Handler: h2c.NewHandler(router, &http2.Server{}),
	}

	ln, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return err
	}
	logger.Info("Connect server starting", "address", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
