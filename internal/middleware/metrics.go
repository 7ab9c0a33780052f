package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/observability"
)

// MetricsInterceptor records the count and latency of every RPC by procedure
// and status code. A nil collector records nothing.
func MetricsInterceptor(c *observability.Collector) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			c.RPC(req.Spec().Procedure, code, time.Since(start))
			return resp, err
		}
	}
}
