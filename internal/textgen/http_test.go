package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSystem = "You are a customer of Acme Health. Only respond with the review."

func TestClaudeGeneratorGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected /v1/messages, got %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-test" {
			t.Errorf("x-api-key: got %q, want %q", got, "sk-test")
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version: got %q, want %q", got, "2023-06-01")
		}

		var req claudeMessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != testSystem {
			t.Errorf("system: got %q, want %q", req.System, testSystem)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("messages: got %+v", req.Messages)
		}
		if req.MaxTokens != DefaultMaxTokens {
			t.Errorf("max_tokens: got %d, want %d", req.MaxTokens, DefaultMaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(claudeMessagesResponse{
			Content: []claudeContentBlock{{Type: "text", Text: "  Claims were paid quickly.  "}},
		})
	}))
	defer srv.Close()

	g := &ClaudeGenerator{
		BaseURL: srv.URL,
		APIKey:  "sk-test",
		Model:   "claude-sonnet-4-5-20250929",
		Client:  &http.Client{Timeout: 5 * time.Second},
	}

	got, err := g.Generate(context.Background(), testSystem, "Write a positive customer review for Acme Health.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Claims were paid quickly." {
		t.Errorf("got %q, want %q", got, "Claims were paid quickly.")
	}
}

func TestClaudeGeneratorAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer srv.Close()

	g := &ClaudeGenerator{BaseURL: srv.URL, APIKey: "sk-test", Model: "m", Client: &http.Client{Timeout: 5 * time.Second}}

	_, err := g.Generate(context.Background(), testSystem, "prompt")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusTooManyRequests || se.Message != "slow down" {
		t.Errorf("got %+v", se)
	}
	if !IsTransient(err) {
		t.Error("429 should be transient")
	}
}

func TestClaudeGeneratorEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(claudeMessagesResponse{})
	}))
	defer srv.Close()

	g := &ClaudeGenerator{BaseURL: srv.URL, APIKey: "sk-test", Model: "m", Client: &http.Client{Timeout: 5 * time.Second}}

	_, err := g.Generate(context.Background(), testSystem, "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestClaudeGeneratorAvailable(t *testing.T) {
	if (&ClaudeGenerator{}).Available() {
		t.Error("expected unavailable without API key")
	}
	if !(&ClaudeGenerator{APIKey: "k"}).Available() {
		t.Error("expected available with API key")
	}
}

func TestOllamaGeneratorGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected /api/chat, got %s", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("roles: got %q, %q", req.Messages[0].Role, req.Messages[1].Role)
		}
		if req.Options == nil || req.Options.NumPredict != 150 {
			t.Errorf("options: got %+v", req.Options)
		}

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "It was fine."},
		})
	}))
	defer srv.Close()

	g := &OllamaGenerator{BaseURL: srv.URL, Model: "qwen2.5:1.5b", MaxTokens: 150, Client: &http.Client{Timeout: 5 * time.Second}}

	got, err := g.Generate(context.Background(), testSystem, "Write a neutral customer review.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "It was fine." {
		t.Errorf("got %q, want %q", got, "It was fine.")
	}
}

func TestOllamaGeneratorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := &OllamaGenerator{BaseURL: srv.URL, Model: "qwen2.5:1.5b", Client: &http.Client{Timeout: 5 * time.Second}}

	_, err := g.Generate(context.Background(), testSystem, "hello")
	if err == nil {
		t.Fatal("expected error on 500 response, got nil")
	}
	if !IsTransient(err) {
		t.Error("500 should be transient")
	}
}

func TestOllamaGeneratorContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	g := &OllamaGenerator{BaseURL: srv.URL, Model: "qwen2.5:1.5b", Client: &http.Client{Timeout: 5 * time.Second}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, testSystem, "hello")
	if err == nil {
		t.Fatal("expected error on cancelled context, got nil")
	}
	if IsTransient(err) {
		t.Error("cancellation should not be transient")
	}
}

func TestOllamaGeneratorAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	up := &OllamaGenerator{BaseURL: srv.URL, Client: &http.Client{Timeout: time.Second}}
	if !up.Available() {
		t.Error("expected available when server is up")
	}

	down := &OllamaGenerator{BaseURL: "http://localhost:99999", Client: &http.Client{Timeout: time.Second}}
	if down.Available() {
		t.Error("expected not available when server is unreachable")
	}
}

func TestLlamaCppGeneratorGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		var req llamaCppChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MaxTokens != 150 {
			t.Errorf("max_tokens: got %d, want 150", req.MaxTokens)
		}
		json.NewEncoder(w).Encode(llamaCppChatResponse{
			Choices: []llamaCppChoice{{Message: llamaCppMessage{Role: "assistant", Content: "Billing was a mess."}}},
		})
	}))
	defer srv.Close()

	g := &LlamaCppGenerator{BaseURL: srv.URL, Model: "qwen", MaxTokens: 150, Client: &http.Client{Timeout: 5 * time.Second}}

	got, err := g.Generate(context.Background(), testSystem, "Write a negative customer review.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Billing was a mess." {
		t.Errorf("got %q", got)
	}
}

func TestLlamaCppGeneratorNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(llamaCppChatResponse{})
	}))
	defer srv.Close()

	g := &LlamaCppGenerator{BaseURL: srv.URL, Model: "qwen", Client: &http.Client{Timeout: 5 * time.Second}}

	_, err := g.Generate(context.Background(), testSystem, "prompt")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAIGeneratorGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization: got %q", got)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content any    `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model: got %q, want gpt-4o", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("messages: got %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1718000000,
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " Great coverage. "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`))
	}))
	defer srv.Close()

	g := &OpenAIGenerator{APIKey: "sk-test", BaseURL: srv.URL, Client: &http.Client{Timeout: 5 * time.Second}}

	got, err := g.Generate(context.Background(), testSystem, "Write a positive customer review for Acme Health.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Great coverage." {
		t.Errorf("got %q, want %q", got, "Great coverage.")
	}
	if g.Name() != "OpenAI (gpt-4o)" {
		t.Errorf("name: got %q", g.Name())
	}
}

func TestClassifyOpenAIError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"rate limit", errors.New("API returned unexpected status code: 429: Rate limit reached"), true},
		{"server", errors.New("API returned unexpected status code: 503"), true},
		{"auth", errors.New("API returned unexpected status code: 401: Incorrect API key"), false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(classifyOpenAIError(tt.err)); got != tt.wantTransient {
				t.Errorf("IsTransient: got %v, want %v", got, tt.wantTransient)
			}
		})
	}
}
