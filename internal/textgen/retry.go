package textgen

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/metrics"
)

// RetryPolicy bounds how hard Retrying tries before giving up.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

// DefaultRetryPolicy is three retries starting at 500ms, one minute per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		AttemptTimeout:  60 * time.Second,
	}
}

// Retrying wraps a Generator with a per-attempt timeout and exponential
// backoff on transient errors. Requests are pure functions of the prompt,
// so repeating one is always safe.
type Retrying struct {
	Generator
	Policy RetryPolicy
}

// WithRetry wraps g with policy p.
func WithRetry(g Generator, p RetryPolicy) *Retrying {
	return &Retrying{Generator: g, Policy: p}
}

func (r *Retrying) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	var text string
	op := func() error {
		actx, cancel := r.attemptContext(ctx)
		defer cancel()

		out, err := r.Generator.Generate(actx, systemPrompt, prompt)
		if err != nil {
			if ctx.Err() != nil || !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	if r.Policy.InitialInterval > 0 {
		eb.InitialInterval = r.Policy.InitialInterval
	}
	if r.Policy.MaxInterval > 0 {
		eb.MaxInterval = r.Policy.MaxInterval
	}
	eb.MaxElapsedTime = 0

	var b backoff.BackOff = eb
	b = backoff.WithMaxRetries(b, uint64(max(r.Policy.MaxRetries, 0)))
	b = backoff.WithContext(b, ctx)

	name := r.Name()
	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		metrics.TextGenRetries.WithLabelValues(name).Inc()
		slog.Warn("textgen retry", "provider", name, "wait_ms", wait.Milliseconds(), "error", err)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (r *Retrying) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Policy.AttemptTimeout > 0 {
		return context.WithTimeout(ctx, r.Policy.AttemptTimeout)
	}
	return context.WithCancel(ctx)
}
