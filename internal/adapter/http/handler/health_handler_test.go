package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	h := NewHealthHandler().
		Register("postgres", func(ctx context.Context) error { return nil }).
		Register("redis", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Code != http.StatusOK || body["postgres"] != "ok" || body["redis"] != "ok" {
		t.Fatalf("unexpected readiness %d %+v", rec.Code, body)
	}
}

func TestHealthHandler_ReadinessFailure(t *testing.T) {
	h := NewHealthHandler().
		Register("postgres", func(ctx context.Context) error { return nil }).
		Register("amqp", func(ctx context.Context) error { return errors.New("connection closed") })

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "amqp unhealthy" {
		t.Fatalf("unexpected body %+v", resp)
	}
}
