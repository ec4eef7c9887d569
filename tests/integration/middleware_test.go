//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRequestID(t *testing.T) {
	// Generated when absent.
	resp := doGet(t, "/livez")
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not generated")
	}
	resp.Body.Close()

	// Echoed when the client supplies one.
	resp = doRequest(t, http.MethodGet, "/livez", nil, func(r *http.Request) {
		r.Header.Set("X-Request-ID", "custom-request-id-12345")
	})
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "custom-request-id-12345" {
		t.Errorf("X-Request-ID: got %q, want custom-request-id-12345", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	resp := doRequest(t, http.MethodOptions, "/api/v1/services", nil, func(r *http.Request) {
		r.Header.Set("Origin", "http://example.com")
		r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header not present")
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("Access-Control-Allow-Methods header not present")
	}
}

func TestCORS_SimpleRequest(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/api/v1/services", nil, func(r *http.Request) {
		r.Header.Set("Origin", "http://example.com")
	})
	defer resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("Access-Control-Allow-Origin header not present")
	}
}

func TestRateLimitHeaders(t *testing.T) {
	resp := doGet(t, "/api/v1/services")
	defer resp.Body.Close()

	for _, h := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"} {
		if resp.Header.Get(h) == "" {
			t.Errorf("%s header not present", h)
		}
	}
}
