package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type logAttrsKey struct{}

// logAttrs collects fields a handler wants on its request line. Guarded by
// mu because TimeoutHandler may still be running the handler when the
// line is written.
type logAttrs struct {
	mu    sync.Mutex
	attrs []any
}

// AddLogAttrs attaches key/value pairs to the current request's log line.
// Outside Logging it does nothing.
func AddLogAttrs(ctx context.Context, args ...any) {
	la, ok := ctx.Value(logAttrsKey{}).(*logAttrs)
	if !ok {
		return
	}
	la.mu.Lock()
	la.attrs = append(la.attrs, args...)
	la.mu.Unlock()
}

// Logging records one structured line per request, including the response
// size and anything handlers added with AddLogAttrs.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		la := &logAttrs{}
		r = r.WithContext(context.WithValue(r.Context(), logAttrsKey{}, la))
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		id := RequestIDFromContext(r.Context())
		if id == "" {
			id = "-"
		}
		args := []any{
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"remote", clientIP(r),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		la.mu.Lock()
		args = append(args, la.attrs...)
		la.mu.Unlock()

		level := slog.LevelInfo
		if sw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request", args...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}
