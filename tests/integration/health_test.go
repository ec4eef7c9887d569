//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealthProbes(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		resp := doGet(t, path)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if body := decodeJSON[healthResponse](t, resp); body.Status != "ok" {
			t.Errorf("%s: expected status ok, got %q", path, body.Status)
		}
		resp.Body.Close()
	}
}
