// Package tools registers the gateway's five MCP tools on an MCP server.
// Each tool validates its arguments, delegates to the service layer, and
// maps taxonomy errors to tool failures. Media tool results carry public
// blob URLs only, never raw bytes.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/domain"
	"github.com/fargo-family/openai-mcp/internal/service"
)

// NewServer builds an MCP server with every gateway tool registered.
func NewServer(cfg *config.Config, svc *service.Service, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: cfg.Server.Name, Version: version},
		&mcp.ServerOptions{Instructions: cfg.Server.Instructions},
	)
	Register(server, svc)
	return server
}

// Register adds the gateway tools to an existing MCP server.
func Register(server *mcp.Server, svc *service.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "chat_completion",
		Description: "Call the chat completions API and return the first choice once the model finishes. " +
			"Supply an optional system_prompt to steer tone or inject hidden instructions; sampling controls " +
			"mirror the native API and default to conservative values. Set response_format to \"json\" to force " +
			"JSON output. Returns the final text, finish reason, model id, and usage statistics.",
		InputSchema: chatInputSchema,
	}, handleChat(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name: "generate_image",
		Description: "Generate images, upload each variation to blob storage, and return publicly accessible " +
			"URLs. size covers 1024x1024, 1024x1536, 1536x1024, or auto; quality covers low, medium, high, or " +
			"auto; count controls how many variations (1-10). The response includes the model name, creation " +
			"timestamp, and one blob_url entry per image (plus any revised_prompt annotations).",
		InputSchema: imageInputSchema,
	}, handleImage(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name: "synthesize_speech",
		Description: "Convert plain text into audio via the speech API. Optionally pick an alternate voice, " +
			"model, or output format (mp3, wav, flac, opus). The rendered audio is uploaded to blob storage and " +
			"the blob URL is returned along with the effective format, selected voice, and byte length.",
		InputSchema: speechInputSchema,
	}, handleSpeech(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name: "generate_video",
		Description: "Create a short-form video clip. Submits a video job, polls until completion, downloads " +
			"the requested variant (video, thumbnail, or spritesheet), uploads it to blob storage, and returns " +
			"the job metadata with blob URLs. seconds must be 4, 8, or 12. Not available when the server is " +
			"configured for Azure OpenAI; callers should fall back in that case.",
		InputSchema: videoInputSchema,
	}, handleVideo(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name: "list_supported_models",
		Description: "Report the configured models/deployments per capability (chat, image, audio, video). " +
			"Call this at the start of a session to understand what the other tools on this server can do. " +
			"Optionally filter by capability; set include_provider_metadata to append provider endpoints.",
		InputSchema: modelsInputSchema,
	}, handleModels(svc))
}

// toolFailure converts a taxonomy error into a tool error result so the
// failure reaches the caller as a tool-invocation failure rather than a
// protocol error.
func toolFailure(err error) *mcp.CallToolResult {
	te := domain.AsToolError(err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: te.Error()}},
	}
}

type chatInput struct {
	Prompt           string            `json:"prompt"`
	SystemPrompt     string            `json:"system_prompt,omitempty"`
	Model            string            `json:"model,omitempty"`
	Temperature      *float64          `json:"temperature,omitempty"`
	TopP             *float64          `json:"top_p,omitempty"`
	MaxOutputTokens  *int              `json:"max_output_tokens,omitempty"`
	User             string            `json:"user,omitempty"`
	ResponseFormat   string            `json:"response_format,omitempty"`
	PresencePenalty  float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64           `json:"frequency_penalty,omitempty"`
	Seed             *int              `json:"seed,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

func handleChat(svc *service.Service) mcp.ToolHandlerFor[chatInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in chatInput) (*mcp.CallToolResult, any, error) {
		req := service.ChatRequest{
			Prompt:           in.Prompt,
			SystemPrompt:     in.SystemPrompt,
			Model:            in.Model,
			Temperature:      0.2,
			TopP:             1.0,
			MaxOutputTokens:  in.MaxOutputTokens,
			User:             in.User,
			ResponseFormat:   in.ResponseFormat,
			PresencePenalty:  in.PresencePenalty,
			FrequencyPenalty: in.FrequencyPenalty,
			Seed:             in.Seed,
			Metadata:         in.Metadata,
		}
		if in.Temperature != nil {
			req.Temperature = *in.Temperature
		}
		if in.TopP != nil {
			req.TopP = *in.TopP
		}

		result, err := svc.ChatCompletion(ctx, req)
		if err != nil {
			return toolFailure(err), nil, nil
		}
		return nil, result, nil
	}
}

type imageInput struct {
	Prompt  string `json:"prompt"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
	Count   int    `json:"count,omitempty"`
	User    string `json:"user,omitempty"`
}

func handleImage(svc *service.Service) mcp.ToolHandlerFor[imageInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in imageInput) (*mcp.CallToolResult, any, error) {
		result, err := svc.GenerateImage(ctx, service.ImageRequest{
			Prompt:  in.Prompt,
			Size:    in.Size,
			Quality: in.Quality,
			Format:  in.Format,
			Count:   in.Count,
			User:    in.User,
		})
		if err != nil {
			return toolFailure(err), nil, nil
		}
		return nil, result, nil
	}
}

type speechInput struct {
	Text           string  `json:"text"`
	Model          string  `json:"model,omitempty"`
	Voice          string  `json:"voice,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

func handleSpeech(svc *service.Service) mcp.ToolHandlerFor[speechInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in speechInput) (*mcp.CallToolResult, any, error) {
		result, err := svc.SynthesizeSpeech(ctx, service.SpeechRequest{
			Text:   in.Text,
			Model:  in.Model,
			Voice:  in.Voice,
			Format: in.ResponseFormat,
			Speed:  in.Speed,
		})
		if err != nil {
			return toolFailure(err), nil, nil
		}
		return nil, result, nil
	}
}

type videoInput struct {
	Prompt  string `json:"prompt"`
	Model   string `json:"model,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
	Size    string `json:"size,omitempty"`
	Variant string `json:"variant,omitempty"`
}

func handleVideo(svc *service.Service) mcp.ToolHandlerFor[videoInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in videoInput) (*mcp.CallToolResult, any, error) {
		result, err := svc.GenerateVideo(ctx, service.VideoRequest{
			Prompt:  in.Prompt,
			Model:   in.Model,
			Seconds: in.Seconds,
			Size:    in.Size,
			Variant: in.Variant,
		})
		if err != nil {
			return toolFailure(err), nil, nil
		}
		return nil, result, nil
	}
}

type modelsInput struct {
	Capability              string `json:"capability,omitempty"`
	IncludeProviderMetadata *bool  `json:"include_provider_metadata,omitempty"`
}

func handleModels(svc *service.Service) mcp.ToolHandlerFor[modelsInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in modelsInput) (*mcp.CallToolResult, any, error) {
		includeMetadata := true
		if in.IncludeProviderMetadata != nil {
			includeMetadata = *in.IncludeProviderMetadata
		}
		result, err := svc.ListSupportedModels(in.Capability, includeMetadata)
		if err != nil {
			return toolFailure(err), nil, nil
		}
		return nil, result, nil
	}
}
