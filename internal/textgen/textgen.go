// Package textgen talks to the LLM backends that write review prose.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Generator defines the contract for text-generation backends.
type Generator interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
	Available() bool
}

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = errors.New("empty response")

// StatusError is a non-200 answer from a backend.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Code)
}

// IsTransient reports whether retrying the same request might succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
