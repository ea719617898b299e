// Package openai is a minimal HTTP client for the OpenAI REST API and its
// Azure OpenAI deployment variant, covering the chat, image, speech, and
// video endpoints the gateway republishes.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	videoPollInterval = 2 * time.Second
	videoPollTimeout  = 10 * time.Minute
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL for the generic API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) ClientOption {
	return func(c *Client) {
		c.organization = org
	}
}

// WithAzure switches the client to Azure deployment endpoints. Requests are
// routed to {endpoint}/openai/deployments/{deployment}/... with the given
// api-version, authenticated via the api-key header.
func WithAzure(endpoint, apiVersion string) ClientOption {
	return func(c *Client) {
		c.azureEndpoint = strings.TrimSuffix(endpoint, "/")
		c.azureAPIVersion = apiVersion
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is a custom HTTP client for the OpenAI and Azure OpenAI APIs.
type Client struct {
	apiKey          string
	baseURL         string
	organization    string
	azureEndpoint   string
	azureAPIVersion string
	httpClient      *http.Client
}

// NewClient creates a new API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAzure reports whether the client targets Azure deployment endpoints.
func (c *Client) IsAzure() bool {
	return c.azureEndpoint != ""
}

// CreateChatCompletion sends a chat completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := c.postJSON(ctx, c.endpoint("chat/completions", req.Model), req)
	if err != nil {
		return nil, err
	}
	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat response: %w", err)
	}
	return &result, nil
}

// GenerateImage sends an image generation request.
func (c *Client) GenerateImage(ctx context.Context, req *ImageGenerationRequest) (*ImageGenerationResponse, error) {
	body, err := c.postJSON(ctx, c.endpoint("images/generations", req.Model), req)
	if err != nil {
		return nil, err
	}
	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image response: %w", err)
	}
	return &result, nil
}

// CreateSpeech sends a speech synthesis request and returns the raw audio
// bytes in the requested format.
func (c *Client) CreateSpeech(ctx context.Context, req *SpeechRequest) ([]byte, error) {
	return c.postJSON(ctx, c.endpoint("audio/speech", req.Model), req)
}

// CreateVideo submits a video generation job. Only available on the generic
// API; the caller is responsible for not invoking this in Azure mode.
func (c *Client) CreateVideo(ctx context.Context, req *VideoGenerationRequest) (*VideoJob, error) {
	body, err := c.postJSON(ctx, c.baseURL+"/videos", req)
	if err != nil {
		return nil, err
	}
	var job VideoJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video job: %w", err)
	}
	return &job, nil
}

// GetVideo fetches the current state of a video job.
func (c *Client) GetVideo(ctx context.Context, id string) (*VideoJob, error) {
	body, err := c.get(ctx, c.baseURL+"/videos/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var job VideoJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video job: %w", err)
	}
	return &job, nil
}

// WaitForVideo polls a video job until it reaches a terminal status or the
// context is cancelled.
func (c *Client) WaitForVideo(ctx context.Context, id string) (*VideoJob, error) {
	ctx, cancel := context.WithTimeout(ctx, videoPollTimeout)
	defer cancel()

	ticker := time.NewTicker(videoPollInterval)
	defer ticker.Stop()

	for {
		job, err := c.GetVideo(ctx, id)
		if err != nil {
			return nil, err
		}
		switch job.Status {
		case VideoStatusCompleted, VideoStatusFailed:
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("video job %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// DownloadVideoContent downloads a completed job's asset variant (video,
// thumbnail, or spritesheet).
func (c *Client) DownloadVideoContent(ctx context.Context, id, variant string) ([]byte, error) {
	u := c.baseURL + "/videos/" + url.PathEscape(id) + "/content"
	if variant != "" {
		u += "?variant=" + url.QueryEscape(variant)
	}
	return c.get(ctx, u)
}

// endpoint builds the URL for a capability path. In Azure mode the model
// name selects the deployment segment.
func (c *Client) endpoint(path, model string) string {
	if c.IsAzure() {
		return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
			c.azureEndpoint, url.PathEscape(model), path, url.QueryEscape(c.azureAPIVersion))
	}
	return c.baseURL + "/" + path
}

func (c *Client) postJSON(ctx context.Context, u string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if apiErr, perr := ParseErrorResponse(respBody); perr == nil && apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	if c.IsAzure() {
		req.Header.Set("api-key", c.apiKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}
	req.Header.Set("User-Agent", "openai-mcp-gateway/1.0")
}
