package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusfound/campusfound/internal/model"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWriteErrorLogsRequestID(t *testing.T) {
	logs := captureLogs(t)

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errors.New("disk on fire"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Errorf("internal detail leaked to client: %s", rec.Body.String())
	}

	var failure string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "request failed") {
			failure = line
		}
	}
	if failure == "" {
		t.Fatalf("no error log line in %q", logs.String())
	}
	if !strings.Contains(failure, "request_id=req-123") || !strings.Contains(failure, "disk on fire") {
		t.Errorf("error log line = %q", failure)
	}
}

func TestWriteErrorSkipsLoggingClientErrors(t *testing.T) {
	logs := captureLogs(t)

	req := httptest.NewRequest(http.MethodGet, "/api/items/1", nil)
	rec := httptest.NewRecorder()
	writeError(rec, req, model.NotFoundError("Item not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if strings.Contains(logs.String(), "request failed") {
		t.Errorf("client errors should not be logged as failures: %q", logs.String())
	}
}
