package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	cases := []struct {
		name   string
		deps   map[string]Pinger
		status int
		body   string
	}{
		{"no deps", nil, http.StatusOK, "ok"},
		{"all up", map[string]Pinger{"users": ok, "oauth_state": ok}, http.StatusOK, "ok"},
		{"one down", map[string]Pinger{"users": ok, "oauth_state": down}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewReadinessHandler(tc.deps).Readiness(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.name, err)
		}
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}

		var resp readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.name, err)
		}
		if resp.Status != tc.body {
			t.Fatalf("%s: expected status %q, got %q", tc.name, tc.body, resp.Status)
		}
		if tc.name == "one down" && resp.Dependencies["oauth_state"].Error != "connection refused" {
			t.Fatalf("expected failing dependency to be reported: %+v", resp.Dependencies)
		}
	}
}
