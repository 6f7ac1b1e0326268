package textgen

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultMaxTokens keeps replies review-sized.
const DefaultMaxTokens = 150

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}

// Options selects and parameterises a backend.
type Options struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	Retry     RetryPolicy
}

// Build constructs the configured backend wrapped with retries. useMock
// forces the mock backend regardless of Provider.
func Build(opts Options, useMock bool) (Generator, error) {
	provider := opts.Provider
	if useMock {
		provider = "mock"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	var g Generator
	switch provider {
	case "mock":
		return &MockGenerator{}, nil
	case "openai", "":
		g = &OpenAIGenerator{
			APIKey:    opts.APIKey,
			BaseURL:   opts.BaseURL,
			Model:     opts.Model,
			MaxTokens: opts.MaxTokens,
			Client:    client,
		}
	case "claude":
		model := opts.Model
		if model == "" {
			model = "claude-sonnet-4-5-20250929"
		}
		g = &ClaudeGenerator{
			BaseURL:   opts.BaseURL,
			APIKey:    opts.APIKey,
			Model:     model,
			MaxTokens: opts.MaxTokens,
			Client:    client,
		}
	case "ollama":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("textgen: ollama requires base_url")
		}
		model := opts.Model
		if model == "" {
			model = "qwen2.5:1.5b"
		}
		g = &OllamaGenerator{BaseURL: opts.BaseURL, Model: model, MaxTokens: opts.MaxTokens, Client: client}
	case "llamacpp":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("textgen: llamacpp requires base_url")
		}
		model := opts.Model
		if model == "" {
			model = "qwen2.5-1.5b-gpu"
		}
		g = &LlamaCppGenerator{BaseURL: opts.BaseURL, Model: model, MaxTokens: opts.MaxTokens, Client: client}
	default:
		return nil, fmt.Errorf("textgen: unknown provider %q", provider)
	}

	retry := opts.Retry
	if retry.AttemptTimeout <= 0 {
		retry.AttemptTimeout = timeout
	}
	return WithRetry(g, retry), nil
}
