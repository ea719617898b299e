package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	openaiapi "github.com/fargo-family/openai-mcp/internal/api/openai"
	"github.com/fargo-family/openai-mcp/internal/codec"
	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/server"
	"github.com/fargo-family/openai-mcp/internal/service"
	"github.com/fargo-family/openai-mcp/internal/storage"
	"github.com/fargo-family/openai-mcp/internal/telemetry"
	"github.com/fargo-family/openai-mcp/internal/tools"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "optional YAML config file (environment overrides it)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := newLogger()
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("openai-mcp-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.Any("error", err))
		}
	}()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client := newProviderClient(cfg)
	extractor := codec.NewExtractor()

	var store *storage.Store
	if cfg.Storage.Enabled() {
		uploader, err := storage.NewAzureUploader(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize blob storage: %v", err)
		}
		store = storage.NewStore(cfg.Storage, uploader)
		logger.Info("blob storage configured",
			slog.String("container", cfg.Storage.Container),
			slog.String("public_base_url", cfg.Storage.PublicBaseURL),
		)
	} else {
		logger.Warn("blob storage not configured; media tools will fail fast",
			slog.Any("missing", cfg.Storage.Missing()),
		)
	}

	svc := service.New(cfg, client, extractor, store, logger)
	mcpServer := tools.NewServer(cfg, svc, version)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	srv := server.New(cfg.Server, mcpHandler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("gateway started",
		slog.String("provider", cfg.OpenAI.Provider),
		slog.String("chat_model", cfg.OpenAI.ChatModel),
		slog.String("version", version),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("gateway shutdown complete")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func newProviderClient(cfg *config.Config) *openaiapi.Client {
	opts := []openaiapi.ClientOption{}
	if cfg.OpenAI.IsAzure() {
		opts = append(opts, openaiapi.WithAzure(cfg.OpenAI.AzureEndpoint, cfg.OpenAI.AzureAPIVersion))
	} else {
		opts = append(opts,
			openaiapi.WithBaseURL(cfg.OpenAI.BaseURL),
			openaiapi.WithOrganization(cfg.OpenAI.Organization),
		)
	}
	return openaiapi.NewClient(cfg.OpenAI.APIKey, opts...)
}
