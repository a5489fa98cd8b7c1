package onboard_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the liveness and readiness endpoints.
func TestHealthEndpoints(t *testing.T) {
	c := setupOnboardContainer(t)
	client := onboardsdk.NewSDKClient(c.BaseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	ready, err := client.GetReadiness(t.Context())
	assertHealthy(t, ready, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}

// TestMetricsEndpoint verifies Prometheus metrics are exposed.
func TestMetricsEndpoint(t *testing.T) {
	c := setupOnboardContainer(t)

	resp, err := http.Get(c.BaseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "go_goroutines")
}
