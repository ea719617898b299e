package openai

import "encoding/json"

// ChatMessage is a single entry in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat requests structured output from the chat endpoint.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionRequest is the payload for POST /chat/completions.
type ChatCompletionRequest struct {
	Model            string            `json:"model"`
	Messages         []ChatMessage     `json:"messages"`
	Temperature      float64           `json:"temperature"`
	TopP             float64           `json:"top_p"`
	MaxTokens        *int              `json:"max_tokens,omitempty"`
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`
	User             string            `json:"user,omitempty"`
	Seed             *int              `json:"seed,omitempty"`
	PresencePenalty  float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64           `json:"frequency_penalty,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// ChatChoice is one completion candidate.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the payload returned by POST /chat/completions.
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Created int64        `json:"created"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ImageGenerationRequest is the payload for POST /images/generations.
type ImageGenerationRequest struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	Size         string `json:"size,omitempty"`
	Quality      string `json:"quality,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	N            int    `json:"n,omitempty"`
	User         string `json:"user,omitempty"`
}

// ImageDatum is one generated image. Exactly one of B64JSON or URL is set,
// depending on the provider's response mode.
type ImageDatum struct {
	B64JSON       string `json:"b64_json,omitempty"`
	URL           string `json:"url,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageGenerationResponse is the payload returned by POST /images/generations.
type ImageGenerationResponse struct {
	Created int64        `json:"created"`
	Model   string       `json:"model,omitempty"`
	Data    []ImageDatum `json:"data"`
}

// SpeechRequest is the payload for POST /audio/speech. The response body is
// the raw audio stream.
type SpeechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// VideoGenerationRequest is the payload for POST /videos.
type VideoGenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Seconds string `json:"seconds,omitempty"`
	Size    string `json:"size,omitempty"`
}

// VideoJob describes a video generation job. Status progresses through
// queued/in_progress to completed or failed.
type VideoJob struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Model   string `json:"model"`
	Seconds string `json:"seconds,omitempty"`
	Size    string `json:"size,omitempty"`
	Error   *struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

// VideoJobStatuses considered terminal.
const (
	VideoStatusCompleted = "completed"
	VideoStatusFailed    = "failed"
)

// APIError is the error object embedded in provider error responses.
type APIError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// ErrorResponse is the wrapper the provider uses for error payloads.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// ParseErrorResponse attempts to parse a provider error payload from JSON.
// Returns (nil, nil) when the body carries no error object.
func ParseErrorResponse(data []byte) (*APIError, error) {
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return nil, err
	}
	return errResp.Error, nil
}
