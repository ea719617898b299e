// Package server provides the HTTP transport: a chi router that fronts the
// MCP handler with request-id, logging, bearer-auth, timeout, and tracing
// middleware. Every tool invocation runs on its own request goroutine;
// invocations share no mutable state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fargo-family/openai-mcp/internal/auth"
	"github.com/fargo-family/openai-mcp/internal/config"
)

// requestTimeout bounds a single tool invocation. Video jobs poll for up to
// ten minutes, so this must stay comfortably above that.
const requestTimeout = 15 * time.Minute

// Server hosts the MCP endpoint over HTTP/SSE.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the server. mcpHandler is the streamable HTTP handler serving
// the MCP protocol; it is mounted at /mcp behind the auth middleware. The
// /healthz liveness probe stays unauthenticated.
func New(cfg config.ServerConfig, mcpHandler http.Handler, logger *slog.Logger) *Server {
	verifier := auth.NewVerifier(cfg.APIKey)

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		// Apply middleware in order
		r.Use(RequestIDMiddleware)
		r.Use(LoggingMiddleware(logger))
		r.Use(AuthMiddleware(verifier, logger))
		r.Use(TimeoutMiddleware(requestTimeout))
		r.Use(middleware.Recoverer)
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "openai-mcp-gateway")
		})

		r.Handle("/mcp", mcpHandler)
		r.Handle("/mcp/*", mcpHandler)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: r,
		},
		logger: logger,
	}
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
