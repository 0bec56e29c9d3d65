// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// The global logger can only be configured once per process, so all tests
// share one buffer.
var (
	logBuf   bytes.Buffer
	logBufMu sync.Mutex
)

func configureForTest() {
	Configure(Config{
		Level:   "debug",
		Output:  &syncWriter{},
		Service: "test-service",
		Version: "test-version",
	})
}

type syncWriter struct{}

func (*syncWriter) Write(p []byte) (int, error) {
	logBufMu.Lock()
	defer logBufMu.Unlock()
	return logBuf.Write(p)
}

func drainLog() string {
	logBufMu.Lock()
	defer logBufMu.Unlock()
	s := logBuf.String()
	logBuf.Reset()
	return s
}

func TestWithComponent(t *testing.T) {
	configureForTest()
	drainLog()

	logger := WithComponent("loader")
	logger.Info().Msg("hello")

	out := drainLog()
	if out == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.Split(out, "\n")[0]), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["component"] != "loader" {
		t.Errorf("expected component=loader, got %v", entry["component"])
	}
	if entry["service"] != "test-service" {
		t.Errorf("expected service=test-service, got %v", entry["service"])
	}
	if entry["version"] != "test-version" {
		t.Errorf("expected version=test-version, got %v", entry["version"])
	}
	if entry["message"] != "hello" {
		t.Errorf("expected message=hello, got %v", entry["message"])
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("expected req-42, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
}

func TestWithComponentFromContext(t *testing.T) {
	configureForTest()
	drainLog()

	ctx := ContextWithRequestID(context.Background(), "req-99")
	logger := WithComponentFromContext(ctx, "api")
	logger.Info().Msg("annotated")

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.Split(drainLog(), "\n")[0]), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["component"] != "api" {
		t.Errorf("expected component=api, got %v", entry["component"])
	}
	if entry["request_id"] != "req-99" {
		t.Errorf("expected request_id=req-99, got %v", entry["request_id"])
	}
}

func TestMiddleware(t *testing.T) {
	configureForTest()
	drainLog()

	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/email/live", nil)
	handler.ServeHTTP(rr, req.WithContext(ContextWithRequestID(req.Context(), "req-7")))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected handler status to pass through, got %d", rr.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.Split(drainLog(), "\n")[0]), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["event"] != "http.request" {
		t.Errorf("expected event=http.request, got %v", entry["event"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("expected status=418, got %v", entry["status"])
	}
	if entry["method"] != http.MethodGet {
		t.Errorf("expected method=GET, got %v", entry["method"])
	}
	if entry["path"] != "/api/email/live" {
		t.Errorf("expected path=/api/email/live, got %v", entry["path"])
	}
	if entry["request_id"] != "req-7" {
		t.Errorf("expected request_id=req-7, got %v", entry["request_id"])
	}
}
