package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/handler"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/middleware"
)

// Options configures the dashboard API.
type Options struct {
	APIKey string
	// RateLimit is requests per client per minute; zero disables limiting.
	RateLimit int
	Timeout   time.Duration
}

// SetupMux wires handlers with the full middleware chain.
func SetupMux(src handler.RowSource, opts Options) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", handler.Health(src))
	mux.HandleFunc("/api/filters", handler.Filters(src))
	mux.HandleFunc("/api/dashboard", handler.Dashboard(src))
	mux.HandleFunc("/api/heatmap", handler.Heatmap(src))
	mux.Handle("/metrics", promhttp.Handler())

	var rl *middleware.RateLimiter
	if opts.RateLimit > 0 {
		rl = middleware.NewRateLimiter(opts.RateLimit, time.Minute)
	}
	return middleware.Chain(mux, middleware.Options{
		APIKey:      opts.APIKey,
		RateLimiter: rl,
		Timeout:     opts.Timeout,
	})
}
