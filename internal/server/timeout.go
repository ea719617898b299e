package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware caps how long a single MCP request may run by attaching
// a deadline to its context. Cancellation is cooperative: long tool calls
// (video jobs poll upstream for minutes) observe ctx.Done() through the
// provider client; the handler is never forcibly terminated.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
