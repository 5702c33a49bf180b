package kit

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Logging returns a middleware that logs every endpoint call with its
// duration and the transport, session and request tags riding in the
// context.
func Logging(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			dur := time.Since(start)

			attrs := []any{
				"duration_ms", dur.Milliseconds(),
				"transport", GetTransport(ctx),
			}
			if sid := GetSessionID(ctx); sid != "" {
				attrs = append(attrs, "session_id", sid)
			}
			if rid := GetRequestID(ctx); rid != "" {
				attrs = append(attrs, "request_id", rid)
			}
			if err != nil {
				logger.ErrorContext(ctx, "endpoint failed", append(attrs, "error", err)...)
			} else {
				logger.DebugContext(ctx, "endpoint ok", attrs...)
			}
			return resp, err
		}
	}
}

// Recovery returns a middleware that converts endpoint panics into
// errors instead of crashing the serving transport.
func Recovery(logger *slog.Logger) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (resp any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "endpoint panic recovered",
						"panic", r,
						"stack", string(debug.Stack()))
					err = fmt.Errorf("kit: endpoint panicked: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}
