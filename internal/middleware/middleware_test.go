package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := CORS(inner)

	t.Run("adds CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin: got %q, want %q", got, "*")
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
			t.Errorf("Allow-Methods: got %q, want %q", got, "GET, POST, OPTIONS")
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-API-Key") {
			t.Errorf("Allow-Headers: got %q, want X-API-Key included", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("OPTIONS preflight returns 204", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusNoContent)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("sets X-Request-ID header", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		handler := RequestID(inner)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		id := w.Header().Get("X-Request-ID")
		if id == "" {
			t.Error("X-Request-ID header not set")
		}
		if len(id) != 32 {
			t.Errorf("X-Request-ID length: got %d, want 32", len(id))
		}
	})

	t.Run("propagates caller ID", func(t *testing.T) {
		var gotID string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = RequestIDFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-123")
		w := httptest.NewRecorder()
		RequestID(inner).ServeHTTP(w, req)

		if gotID != "upstream-123" || w.Header().Get("X-Request-ID") != "upstream-123" {
			t.Errorf("got context %q header %q", gotID, w.Header().Get("X-Request-ID"))
		}
	})

	t.Run("replaces oversized caller ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("a", maxIncomingIDLen+1))
		w := httptest.NewRecorder()
		RequestID(http.NotFoundHandler()).ServeHTTP(w, req)

		if got := w.Header().Get("X-Request-ID"); len(got) != 32 {
			t.Errorf("expected generated id, got %q", got)
		}
	})

	t.Run("stores request ID in context", func(t *testing.T) {
		var gotID string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = RequestIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		handler := RequestID(inner)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if gotID == "" {
			t.Error("request ID not stored in context")
		}
		headerID := w.Header().Get("X-Request-ID")
		if gotID != headerID {
			t.Errorf("context ID %q != header ID %q", gotID, headerID)
		}
	})
}

func TestLoggingMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	handler := Logging(inner)

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusCreated)
	}
}

// captureLog routes the default logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingIncludesHandlerAttrs(t *testing.T) {
	buf := captureLog(t)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogAttrs(r.Context(), "rows_served", 42, "pivot", "RegionxTopic")
		w.Write([]byte("hello"))
	})

	Logging(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/heatmap", nil))

	line := buf.String()
	for _, want := range []string{"msg=request", "path=/api/heatmap", "status=200", "bytes=5", "rows_served=42", "pivot=RegionxTopic"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %s", want, line)
		}
	}
}

func TestLoggingServerErrorsAtErrorLevel(t *testing.T) {
	buf := captureLog(t)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	Logging(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected error level: %s", buf.String())
	}
}

func TestAddLogAttrsWithoutLogging(t *testing.T) {
	// No Logging middleware in front: must not panic.
	AddLogAttrs(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "k", "v")
}

func TestStatusWriterCapturesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	sw.WriteHeader(http.StatusNotFound)

	if sw.status != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", sw.status, http.StatusNotFound)
	}
}

func TestMaxBytesMiddleware(t *testing.T) {
	t.Run("allows small body", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		handler := MaxBytes(1024)(inner)
		body := strings.NewReader("small body")
		req := httptest.NewRequest(http.MethodPost, "/", body)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusOK)
		})

		handler := MaxBytes(10)(inner)
		body := strings.NewReader(strings.Repeat("x", 100))
		req := httptest.NewRequest(http.MethodPost, "/", body)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
		}
	})
}
