package tools

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	openaiapi "github.com/fargo-family/openai-mcp/internal/api/openai"
	"github.com/fargo-family/openai-mcp/internal/codec"
	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/service"
)

// stubProvider satisfies service.ProviderClient with canned chat output.
type stubProvider struct{}

func (stubProvider) CreateChatCompletion(context.Context, *openaiapi.ChatCompletionRequest) (*openaiapi.ChatCompletionResponse, error) {
	return &openaiapi.ChatCompletionResponse{
		Model: "gpt-4.1-mini",
		Choices: []openaiapi.ChatChoice{
			{Message: openaiapi.ChatMessage{Role: "assistant", Content: "pong"}, FinishReason: "stop"},
		},
	}, nil
}

func (stubProvider) GenerateImage(context.Context, *openaiapi.ImageGenerationRequest) (*openaiapi.ImageGenerationResponse, error) {
	return &openaiapi.ImageGenerationResponse{}, nil
}

func (stubProvider) CreateSpeech(context.Context, *openaiapi.SpeechRequest) ([]byte, error) {
	return nil, nil
}

func (stubProvider) CreateVideo(context.Context, *openaiapi.VideoGenerationRequest) (*openaiapi.VideoJob, error) {
	return &openaiapi.VideoJob{}, nil
}

func (stubProvider) WaitForVideo(context.Context, string) (*openaiapi.VideoJob, error) {
	return &openaiapi.VideoJob{}, nil
}

func (stubProvider) DownloadVideoContent(context.Context, string, string) ([]byte, error) {
	return nil, nil
}

func newStubService() *service.Service {
	cfg := &config.Config{
		Server: config.ServerConfig{Name: "test-gateway", APIKey: "secret"},
		OpenAI: config.OpenAIConfig{
			Provider:   config.ProviderOpenAI,
			APIKey:     "sk-test",
			ChatModel:  "gpt-4.1-mini",
			ImageModel: "gpt-image-1",
			AudioModel: "gpt-4o-mini-tts",
			VideoModel: "sora-2",
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.New(cfg, stubProvider{}, codec.NewExtractor(), nil, logger)
}

func TestHandleChat(t *testing.T) {
	handler := handleChat(newStubService())

	res, out, err := handler(context.Background(), nil, chatInput{Prompt: "ping"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res != nil {
		t.Fatalf("unexpected error result: %+v", res)
	}
	chat, ok := out.(*service.ChatResult)
	if !ok {
		t.Fatalf("result type = %T, want *service.ChatResult", out)
	}
	if chat.Text != "pong" {
		t.Errorf("text = %q, want pong", chat.Text)
	}
}

func TestHandleChatValidationFailure(t *testing.T) {
	handler := handleChat(newStubService())

	res, out, err := handler(context.Background(), nil, chatInput{Prompt: "  "})
	if err != nil {
		t.Fatalf("validation failures must surface as tool errors, got protocol error: %v", err)
	}
	if out != nil {
		t.Errorf("result = %v, want nil on failure", out)
	}
	if res == nil || !res.IsError {
		t.Fatal("expected an IsError tool result")
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "invalid_request") {
		t.Errorf("error text = %q, want taxonomy type included", text)
	}
}

func TestHandleImageStorageGate(t *testing.T) {
	handler := handleImage(newStubService())

	res, _, err := handler(context.Background(), nil, imageInput{Prompt: "a fox"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res == nil || !res.IsError {
		t.Fatal("expected an IsError tool result when storage is unconfigured")
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "configuration") || !strings.Contains(text, "AZURE_BLOB_CONTAINER") {
		t.Errorf("error text = %q, want configuration error naming missing variables", text)
	}
}

func TestHandleModels(t *testing.T) {
	handler := handleModels(newStubService())

	res, out, err := handler(context.Background(), nil, modelsInput{})
	if err != nil || res != nil {
		t.Fatalf("handler = (%v, %v), want clean result", res, err)
	}
	models, ok := out.(*service.ModelsResult)
	if !ok {
		t.Fatalf("result type = %T, want *service.ModelsResult", out)
	}
	if len(models.Capabilities) != 4 {
		t.Errorf("capabilities = %d, want 4", len(models.Capabilities))
	}
	if models.Provider == nil {
		t.Error("provider metadata should default to included")
	}

	off := false
	_, out, _ = handler(context.Background(), nil, modelsInput{IncludeProviderMetadata: &off})
	if out.(*service.ModelsResult).Provider != nil {
		t.Error("provider metadata should be omitted when disabled")
	}
}

func TestInputSchemas(t *testing.T) {
	if got := chatInputSchema.Required; len(got) != 1 || got[0] != "prompt" {
		t.Errorf("chat required = %v, want [prompt]", got)
	}
	if got := speechInputSchema.Required; len(got) != 1 || got[0] != "text" {
		t.Errorf("speech required = %v, want [text]", got)
	}
	for _, name := range []string{"size", "quality", "format", "count"} {
		if imageInputSchema.Properties[name] == nil {
			t.Errorf("image schema missing property %q", name)
		}
	}
	if len(imageInputSchema.Properties["size"].Enum) != 4 {
		t.Errorf("size enum = %v, want 4 values", imageInputSchema.Properties["size"].Enum)
	}
	if videoInputSchema.Properties["variant"].Enum[2] != "spritesheet" {
		t.Errorf("variant enum = %v", videoInputSchema.Properties["variant"].Enum)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Name: "test-gateway", Instructions: "test instructions"},
		OpenAI: config.OpenAIConfig{Provider: config.ProviderOpenAI, ChatModel: "gpt-4.1-mini"},
	}
	svc := newStubService()

	server := NewServer(cfg, svc, "test")
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}
