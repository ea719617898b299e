// Package service implements the gateway's tool operations: it validates an
// inbound call, forwards it to the provider, extracts any binary payloads,
// persists them to blob storage, and assembles the structured result
// returned to the caller.
package service

import (
	"context"
	"log/slog"
	"strings"

	openaiapi "github.com/fargo-family/openai-mcp/internal/api/openai"
	"github.com/fargo-family/openai-mcp/internal/codec"
	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/domain"
	"github.com/fargo-family/openai-mcp/internal/storage"
)

// ProviderClient is the subset of the OpenAI client the service depends on.
type ProviderClient interface {
	CreateChatCompletion(ctx context.Context, req *openaiapi.ChatCompletionRequest) (*openaiapi.ChatCompletionResponse, error)
	GenerateImage(ctx context.Context, req *openaiapi.ImageGenerationRequest) (*openaiapi.ImageGenerationResponse, error)
	CreateSpeech(ctx context.Context, req *openaiapi.SpeechRequest) ([]byte, error)
	CreateVideo(ctx context.Context, req *openaiapi.VideoGenerationRequest) (*openaiapi.VideoJob, error)
	WaitForVideo(ctx context.Context, id string) (*openaiapi.VideoJob, error)
	DownloadVideoContent(ctx context.Context, id, variant string) ([]byte, error)
}

// Service executes tool invocations. It is constructed once at startup and
// is safe for concurrent use: all fields are read-only after construction
// and invocations share no mutable state.
type Service struct {
	cfg       *config.Config
	client    ProviderClient
	extractor *codec.Extractor
	store     *storage.Store // nil when blob storage is not configured
	logger    *slog.Logger
}

// New creates a service. store may be nil when storage is unconfigured; in
// that case every media tool fails fast with a configuration error.
func New(cfg *config.Config, client ProviderClient, extractor *codec.Extractor, store *storage.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		client:    client,
		extractor: extractor,
		store:     store,
		logger:    logger,
	}
}

// requireStorage gates media tools on a complete storage configuration,
// naming every missing variable. Runs before any provider call.
func (s *Service) requireStorage() error {
	if missing := s.cfg.Storage.Missing(); len(missing) > 0 {
		return domain.ErrConfiguration(
			"media uploads are not configured; set " + strings.Join(missing, ", "))
	}
	if s.store == nil {
		return domain.ErrConfiguration("blob storage is not initialized")
	}
	return nil
}

// persistAll uploads every asset in order. If any upload fails the whole
// operation fails; assets already uploaded are left in place (no
// compensating delete) and no URLs are returned.
func (s *Service) persistAll(ctx context.Context, assets []domain.MediaAsset) ([]domain.AssetRef, error) {
	refs := make([]domain.AssetRef, 0, len(assets))
	for _, asset := range assets {
		ref, err := s.store.Persist(ctx, asset)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ChatRequest carries the arguments of the chat_completion tool.
type ChatRequest struct {
	Prompt           string
	SystemPrompt     string
	Model            string
	Temperature      float64
	TopP             float64
	MaxOutputTokens  *int
	User             string
	ResponseFormat   string
	PresencePenalty  float64
	FrequencyPenalty float64
	Seed             *int
	Metadata         map[string]string
}

// ChatResult is the chat_completion tool result. Chat never touches the
// storage path, so no blob metadata appears here.
type ChatResult struct {
	Text         string           `json:"text"`
	FinishReason string           `json:"finish_reason"`
	Model        string           `json:"model"`
	Usage        *openaiapi.Usage `json:"usage,omitempty"`
}

// ChatCompletion executes a chat completion call and normalizes the output.
func (s *Service) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrInvalidRequest("prompt must not be empty")
	}

	model := req.Model
	if model == "" {
		model = s.cfg.OpenAI.ChatModel
	}

	messages := make([]openaiapi.ChatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openaiapi.ChatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openaiapi.ChatMessage{Role: "user", Content: req.Prompt})

	var responseFormat *openaiapi.ResponseFormat
	if req.ResponseFormat != "" {
		formatType := req.ResponseFormat
		if strings.EqualFold(formatType, "json") {
			formatType = "json_object"
		}
		responseFormat = &openaiapi.ResponseFormat{Type: formatType}
	}

	completion, err := s.client.CreateChatCompletion(ctx, &openaiapi.ChatCompletionRequest{
		Model:            model,
		Messages:         messages,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxTokens:        req.MaxOutputTokens,
		ResponseFormat:   responseFormat,
		User:             req.User,
		Seed:             req.Seed,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
		Metadata:         req.Metadata,
	})
	if err != nil {
		return nil, domain.ErrUpstream("chat completion failed", err)
	}
	if len(completion.Choices) == 0 {
		return nil, domain.ErrMalformedResponse("chat completion returned no choices")
	}

	choice := completion.Choices[0]
	return &ChatResult{
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Model:        completion.Model,
		Usage:        completion.Usage,
	}, nil
}

// CapabilityModel describes the configured model for one capability.
type CapabilityModel struct {
	ConfiguredModel string `json:"configured_model"`
	Provider        string `json:"provider"`
	AzureSupported  bool   `json:"azure_supported"`
	Notes           string `json:"notes,omitempty"`
}

// ProviderMetadata describes the active provider endpoints.
type ProviderMetadata struct {
	Provider      string `json:"provider"`
	BaseURL       string `json:"base_url,omitempty"`
	AzureEndpoint string `json:"azure_endpoint,omitempty"`
}

// ModelsResult is the list_supported_models tool result.
type ModelsResult struct {
	Capabilities map[domain.Capability]CapabilityModel `json:"capabilities"`
	Provider     *ProviderMetadata                     `json:"provider,omitempty"`
}

// ListSupportedModels reports the configured model or deployment per
// capability, optionally filtered to a single capability.
func (s *Service) ListSupportedModels(capability string, includeProviderMetadata bool) (*ModelsResult, error) {
	var filter domain.Capability
	if capability != "" {
		filter = domain.Capability(strings.ToLower(capability))
		if !filter.Valid() {
			return nil, domain.ErrInvalidRequest("capability must be one of chat, image, audio, video")
		}
	}

	azure := s.cfg.OpenAI.IsAzure()
	result := &ModelsResult{Capabilities: make(map[domain.Capability]CapabilityModel)}
	for _, cap := range domain.Capabilities() {
		if filter != "" && cap != filter {
			continue
		}
		model := s.cfg.OpenAI.ModelFor(cap)
		if model == "" {
			continue
		}
		entry := CapabilityModel{
			ConfiguredModel: model,
			Provider:        s.cfg.OpenAI.Provider,
			AzureSupported:  azure && cap != domain.CapabilityVideo,
		}
		if cap == domain.CapabilityVideo {
			entry.Notes = "Video generation requires api.openai.com; Azure deployments do not support /videos."
		}
		result.Capabilities[cap] = entry
	}

	if includeProviderMetadata {
		result.Provider = &ProviderMetadata{
			Provider:      s.cfg.OpenAI.Provider,
			BaseURL:       s.cfg.OpenAI.BaseURL,
			AzureEndpoint: s.cfg.OpenAI.AzureEndpoint,
		}
	}
	return result, nil
}
