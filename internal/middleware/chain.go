package middleware

import (
	"net/http"
	"time"
)

// Options configures Chain. Zero values fall back to the defaults below.
type Options struct {
	APIKey       string
	RateLimiter  *RateLimiter
	Timeout      time.Duration
	MaxBodyBytes int64
}

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 64 * 1024
)

// Chain wraps the handler with the full middleware stack.
// Order: CORS → RequestID → Logging → Metrics → RateLimit → APIKey → MaxBytes → Timeout → mux
func Chain(handler http.Handler, opts Options) http.Handler {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	h := handler
	h = http.TimeoutHandler(h, timeout, `{"error":"request timeout"}`)
	h = MaxBytes(maxBody)(h)
	h = APIKey(opts.APIKey)(h)
	h = RateLimit(opts.RateLimiter)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(h)
	return h
}
