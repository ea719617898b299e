package server

import (
	"log/slog"
	"net/http"

	"github.com/fargo-family/openai-mcp/internal/auth"
)

// AuthMiddleware rejects every request that does not carry the shared API
// key as a bearer token, before any tool logic runs. The token is never
// logged in full.
func AuthMiddleware(verifier *auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				logger.Warn("request rejected: no bearer token",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := verifier.Verify(token); err != nil {
				logger.Warn("request rejected: API key mismatch",
					slog.String("path", r.URL.Path),
					slog.String("masked_token", auth.MaskToken(token)),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
