package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDEchoesCallerID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	handler.ServeHTTP(rec, req)

	if seen != "req-abc-123" {
		t.Fatalf("context request id = %q, want %q", seen, "req-abc-123")
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-abc-123" {
		t.Fatalf("response request id = %q, want %q", got, "req-abc-123")
	}
}

func TestRequestIDReplacesOversizedID(t *testing.T) {
	oversized := strings.Repeat("x", maxRequestIDLen+1)
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", oversized)
	handler.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == "" || got == oversized {
		t.Fatalf("oversized request id was not replaced: %q", got)
	}
}
