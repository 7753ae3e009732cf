package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/floorhouse/site/internal/platform/requestctx"
)

func TestWriteErrorIncludesIdentifiers(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{TraceID: "trace-1"})

	rec := httptest.NewRecorder()
	WriteError(ctx, rec, NewError("invalid_contact", "email\nis invalid", http.StatusBadRequest).
		WithDetails(map[string]any{"field": "email"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "invalid_contact" || body["message"] != "email is invalid" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["request_id"] != "req-1" || body["trace_id"] != "trace-1" {
		t.Fatalf("expected identifiers, got %v", body)
	}
	if body["field"] != "email" {
		t.Fatalf("expected details merged, got %v", body)
	}
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	if got := NewError("x", "y", 0).Status; got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}
