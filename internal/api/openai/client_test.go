package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fargo-family/openai-mcp/internal/testutil"
)

func TestCreateChatCompletionGeneric(t *testing.T) {
	var gotPath, gotAuth, gotOrg string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotOrg = r.Header.Get("OpenAI-Organization")

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4.1-mini" {
			t.Errorf("model = %q, want gpt-4.1-mini", req.Model)
		}

		json.NewEncoder(w).Encode(ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4.1-mini",
			Choices: []ChatChoice{
				{Message: ChatMessage{Role: "assistant", Content: "hi"}, FinishReason: "stop"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL), WithOrganization("org-42"))
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "gpt-4.1-mini",
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion() error: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer sk-test", gotAuth)
	}
	if gotOrg != "org-42" {
		t.Errorf("OpenAI-Organization = %q, want org-42", gotOrg)
	}
	if resp.Choices[0].Message.Content != "hi" {
		t.Errorf("content = %q, want hi", resp.Choices[0].Message.Content)
	}
}

func TestCreateChatCompletionAzure(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("api-key")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ChatCompletionResponse{Choices: []ChatChoice{{}}})
	}))
	defer srv.Close()

	client := NewClient("azure-key", WithAzure(srv.URL+"/", "2024-10-21"))
	if !client.IsAzure() {
		t.Fatal("expected azure mode")
	}
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "chat-deploy",
		Messages: []ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion() error: %v", err)
	}

	if gotPath != "/openai/deployments/chat-deploy/chat/completions" {
		t.Errorf("path = %q, want deployment-scoped path", gotPath)
	}
	if gotQuery != "api-version=2024-10-21" {
		t.Errorf("query = %q, want api-version=2024-10-21", gotQuery)
	}
	if gotAPIKey != "azure-key" {
		t.Errorf("api-key header = %q, want azure-key", gotAPIKey)
	}
	if gotAuth != "" {
		t.Errorf("Authorization header = %q, want unset in azure mode", gotAuth)
	}
}

func TestGenerateImageRequestBody(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ImageGenerationResponse{})
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := client.GenerateImage(context.Background(), &ImageGenerationRequest{
		Model:        "gpt-image-1",
		Prompt:       "a fox",
		Size:         "1024x1024",
		Quality:      "high",
		OutputFormat: "jpeg",
		N:            2,
	})
	if err != nil {
		t.Fatalf("GenerateImage() error: %v", err)
	}

	if got := body["output_format"]; got != "jpeg" {
		t.Errorf("output_format = %v, want jpeg", got)
	}
	if got := body["n"]; got != float64(2) {
		t.Errorf("n = %v, want 2", got)
	}
}

func TestCreateSpeechReturnsRawBytes(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("path = %q, want /audio/speech", r.URL.Path)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	got, err := client.CreateSpeech(context.Background(), &SpeechRequest{Model: "gpt-4o-mini-tts", Input: "hi", Voice: "alloy"})
	if err != nil {
		t.Fatalf("CreateSpeech() error: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("audio bytes = %v, want %v", got, audio)
	}
}

func TestAPIErrorParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","code":"rate_limit_exceeded","message":"Slow down."}}`))
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := client.GenerateImage(context.Background(), &ImageGenerationRequest{Model: "gpt-image-1", Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.Code != "rate_limit_exceeded" || apiErr.Message != "Slow down." {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := client.GetVideo(context.Background(), "video_abc")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("plain text body should not parse as *APIError, got %+v", apiErr)
	}
}

func TestVideoLifecycle(t *testing.T) {
	statuses := []string{"queued", "in_progress", "completed"}
	var polls int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /videos", func(w http.ResponseWriter, r *http.Request) {
		var req VideoGenerationRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Seconds != "4" {
			t.Errorf("seconds = %q, want string \"4\"", req.Seconds)
		}
		json.NewEncoder(w).Encode(VideoJob{ID: "video_abc", Status: "queued", Model: req.Model})
	})
	mux.HandleFunc("GET /videos/video_abc", func(w http.ResponseWriter, r *http.Request) {
		status := statuses[min(polls, len(statuses)-1)]
		polls++
		json.NewEncoder(w).Encode(VideoJob{ID: "video_abc", Status: status, Model: "sora-2"})
	})
	mux.HandleFunc("GET /videos/video_abc/content", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("variant"); got != "thumbnail" {
			t.Errorf("variant = %q, want thumbnail", got)
		}
		w.Write([]byte("jpg-bytes"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))

	job, err := client.CreateVideo(context.Background(), &VideoGenerationRequest{Model: "sora-2", Prompt: "a fox", Seconds: "4"})
	if err != nil {
		t.Fatalf("CreateVideo() error: %v", err)
	}
	if job.ID != "video_abc" {
		t.Fatalf("job ID = %q", job.ID)
	}

	job, err = client.WaitForVideo(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("WaitForVideo() error: %v", err)
	}
	if job.Status != VideoStatusCompleted {
		t.Errorf("status = %q, want completed", job.Status)
	}
	if polls < 3 {
		t.Errorf("polls = %d, want at least 3", polls)
	}

	data, err := client.DownloadVideoContent(context.Background(), job.ID, "thumbnail")
	if err != nil {
		t.Fatalf("DownloadVideoContent() error: %v", err)
	}
	if string(data) != "jpg-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestWaitForVideoContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VideoJob{ID: "video_abc", Status: "in_progress"})
	}))
	defer srv.Close()

	client := NewClient("sk-test", WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.WaitForVideo(ctx, "video_abc")
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestCreateChatCompletionReplay(t *testing.T) {
	r, cleanup := testutil.NewVCRRecorder(t, "chat_completion")
	defer cleanup()

	client := NewClient("sk-test", WithHTTPClient(testutil.VCRHTTPClient(r)))
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:       "gpt-4.1-mini",
		Messages:    []ChatMessage{{Role: "user", Content: "Say hello in one word."}},
		Temperature: 0.2,
		TopP:        1.0,
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion() error: %v", err)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(resp.Choices))
	}
	if resp.Choices[0].Message.Content != "Hello!" {
		t.Errorf("content = %q, want Hello!", resp.Choices[0].Message.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v, want total_tokens 15", resp.Usage)
	}
}
