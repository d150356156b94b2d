package portal_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t)
	defer cleanup()

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	status := getJSON(t, baseURL+"/livez", "", &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)
	require.NotEmpty(t, health.Version)

	t.Logf("Livez endpoint is healthy")
}

// TestReadyzEndpoint verifies the readiness check reports the database as up.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t)
	defer cleanup()

	var health struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
		} `json:"checks"`
	}
	status := getJSON(t, baseURL+"/readyz", "", &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Checks.Database)

	t.Logf("Readyz endpoint is healthy")
}

// TestMetricsEndpoint verifies the Prometheus scrape endpoint is mounted.
func TestMetricsEndpoint(t *testing.T) {
	baseURL, cleanup := setupPortalContainer(t)
	defer cleanup()

	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
