package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openaiapi "github.com/fargo-family/openai-mcp/internal/api/openai"
	"github.com/fargo-family/openai-mcp/internal/codec"
	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/domain"
	"github.com/fargo-family/openai-mcp/internal/storage"
)

// fakeProvider records every provider call and returns canned responses.
type fakeProvider struct {
	calls []string

	chatReq  *openaiapi.ChatCompletionRequest
	chatResp *openaiapi.ChatCompletionResponse
	chatErr  error

	imageReq  *openaiapi.ImageGenerationRequest
	imageResp *openaiapi.ImageGenerationResponse
	imageErr  error

	speechReq  *openaiapi.SpeechRequest
	speechData []byte
	speechErr  error

	videoReq    *openaiapi.VideoGenerationRequest
	createJob   *openaiapi.VideoJob
	createErr   error
	waitJob     *openaiapi.VideoJob
	waitErr     error
	downloads   map[string][]byte
	downloadErr map[string]error
}

func (f *fakeProvider) CreateChatCompletion(_ context.Context, req *openaiapi.ChatCompletionRequest) (*openaiapi.ChatCompletionResponse, error) {
	f.calls = append(f.calls, "chat")
	f.chatReq = req
	return f.chatResp, f.chatErr
}

func (f *fakeProvider) GenerateImage(_ context.Context, req *openaiapi.ImageGenerationRequest) (*openaiapi.ImageGenerationResponse, error) {
	f.calls = append(f.calls, "image")
	f.imageReq = req
	return f.imageResp, f.imageErr
}

func (f *fakeProvider) CreateSpeech(_ context.Context, req *openaiapi.SpeechRequest) ([]byte, error) {
	f.calls = append(f.calls, "speech")
	f.speechReq = req
	return f.speechData, f.speechErr
}

func (f *fakeProvider) CreateVideo(_ context.Context, req *openaiapi.VideoGenerationRequest) (*openaiapi.VideoJob, error) {
	f.calls = append(f.calls, "video.create")
	f.videoReq = req
	return f.createJob, f.createErr
}

func (f *fakeProvider) WaitForVideo(_ context.Context, id string) (*openaiapi.VideoJob, error) {
	f.calls = append(f.calls, "video.wait")
	return f.waitJob, f.waitErr
}

func (f *fakeProvider) DownloadVideoContent(_ context.Context, id, variant string) ([]byte, error) {
	f.calls = append(f.calls, "video.download."+variant)
	if err := f.downloadErr[variant]; err != nil {
		return nil, err
	}
	return f.downloads[variant], nil
}

// fakeUploader implements storage.Uploader in memory.
type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func testConfig(storageConfigured bool) *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{APIKey: "secret", Port: 8000},
		OpenAI: config.OpenAIConfig{
			Provider:     config.ProviderOpenAI,
			APIKey:       "sk-test",
			ChatModel:    "gpt-4.1-mini",
			ImageModel:   "gpt-image-1",
			AudioModel:   "gpt-4o-mini-tts",
			VideoModel:   "sora-2",
			DefaultVoice: "alloy",
		},
	}
	if storageConfigured {
		cfg.Storage = config.StorageConfig{
			ConnectionString: "UseDevelopmentStorage=true",
			Container:        "media",
			PublicBaseURL:    "https://cdn.example.com/media",
			PathPrefix:       "mcp",
		}
	}
	return cfg
}

func newTestService(cfg *config.Config, client ProviderClient, up storage.Uploader) *Service {
	var store *storage.Store
	if cfg.Storage.Enabled() && up != nil {
		store = storage.NewStore(cfg.Storage, up)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, client, codec.NewExtractor(), store, logger)
}

func TestChatCompletion(t *testing.T) {
	provider := &fakeProvider{
		chatResp: &openaiapi.ChatCompletionResponse{
			Model: "gpt-4.1-mini",
			Choices: []openaiapi.ChatChoice{
				{Message: openaiapi.ChatMessage{Role: "assistant", Content: "hello there"}, FinishReason: "stop"},
			},
			Usage: &openaiapi.Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
		},
	}
	// Storage deliberately unconfigured: chat must not depend on it.
	svc := newTestService(testConfig(false), provider, nil)

	result, err := svc.ChatCompletion(context.Background(), ChatRequest{
		Prompt:         "say hi",
		SystemPrompt:   "be brief",
		Temperature:    0.2,
		TopP:           1.0,
		ResponseFormat: "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", result.Text)
	assert.Equal(t, "stop", result.FinishReason)
	assert.Equal(t, 10, result.Usage.TotalTokens)

	require.Len(t, provider.chatReq.Messages, 2)
	assert.Equal(t, "system", provider.chatReq.Messages[0].Role)
	assert.Equal(t, "user", provider.chatReq.Messages[1].Role)
	assert.Equal(t, "gpt-4.1-mini", provider.chatReq.Model)
	require.NotNil(t, provider.chatReq.ResponseFormat)
	assert.Equal(t, "json_object", provider.chatReq.ResponseFormat.Type, "json alias normalizes to json_object")
}

func TestChatCompletionEmptyPrompt(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(testConfig(false), provider, nil)

	_, err := svc.ChatCompletion(context.Background(), ChatRequest{Prompt: "   "})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInvalidRequest, domain.AsToolError(err).Type)
	assert.Empty(t, provider.calls, "validation failures must not reach the provider")
}

func TestChatCompletionNoChoices(t *testing.T) {
	provider := &fakeProvider{chatResp: &openaiapi.ChatCompletionResponse{Model: "gpt-4.1-mini"}}
	svc := newTestService(testConfig(false), provider, nil)

	_, err := svc.ChatCompletion(context.Background(), ChatRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeMalformedResponse, domain.AsToolError(err).Type)
}

func TestChatCompletionUpstreamError(t *testing.T) {
	cause := errors.New("429 rate limited")
	provider := &fakeProvider{chatErr: cause}
	svc := newTestService(testConfig(false), provider, nil)

	_, err := svc.ChatCompletion(context.Background(), ChatRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.AsToolError(err).Type)
	assert.ErrorIs(t, err, cause)
}

func TestListSupportedModels(t *testing.T) {
	svc := newTestService(testConfig(false), &fakeProvider{}, nil)

	result, err := svc.ListSupportedModels("", true)
	require.NoError(t, err)
	require.Len(t, result.Capabilities, 4)

	chat := result.Capabilities[domain.CapabilityChat]
	assert.Equal(t, "gpt-4.1-mini", chat.ConfiguredModel)
	assert.Equal(t, "openai", chat.Provider)

	video := result.Capabilities[domain.CapabilityVideo]
	assert.False(t, video.AzureSupported)
	assert.NotEmpty(t, video.Notes)

	require.NotNil(t, result.Provider)
	assert.Equal(t, "openai", result.Provider.Provider)
}

func TestListSupportedModelsFilter(t *testing.T) {
	svc := newTestService(testConfig(false), &fakeProvider{}, nil)

	result, err := svc.ListSupportedModels("IMAGE", false)
	require.NoError(t, err)
	require.Len(t, result.Capabilities, 1)
	assert.Contains(t, result.Capabilities, domain.CapabilityImage)
	assert.Nil(t, result.Provider)

	_, err = svc.ListSupportedModels("speech", false)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInvalidRequest, domain.AsToolError(err).Type)
}

func TestListSupportedModelsAzure(t *testing.T) {
	cfg := testConfig(false)
	cfg.OpenAI.Provider = config.ProviderAzure
	cfg.OpenAI.AzureEndpoint = "https://example.openai.azure.com"
	svc := newTestService(cfg, &fakeProvider{}, nil)

	result, err := svc.ListSupportedModels("", true)
	require.NoError(t, err)

	assert.True(t, result.Capabilities[domain.CapabilityChat].AzureSupported)
	assert.False(t, result.Capabilities[domain.CapabilityVideo].AzureSupported)
	assert.Equal(t, "https://example.openai.azure.com", result.Provider.AzureEndpoint)
}
