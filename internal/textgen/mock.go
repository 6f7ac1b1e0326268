package textgen

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockGenerator returns a fixed reply per prompt with a configurable delay.
// Used for development and testing without a real LLM backend.
type MockGenerator struct {
	Delay time.Duration
}

func (m *MockGenerator) Name() string { return "Mock" }

func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", fmt.Errorf("mock: %w", ctx.Err())
		}
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("mock: %w", ErrEmptyResponse)
	}
	return "Synthetic review: " + prompt, nil
}

func (m *MockGenerator) Available() bool { return true }
