package auth_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that /auth/login is rate limited per
// IP and email. The strict limit is 5 req/min.
func TestRateLimitLoginEndpoint(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	for range 5 {
		_, err := client.Login(t.Context(), "victim@example.com", "wrong-password")
		assertKind(t, err, authsdk.KindInvalidCredentials, "request before the limit")
	}

	_, err := client.Login(t.Context(), "victim@example.com", "wrong-password")
	assertStatus(t, err, http.StatusTooManyRequests, "Should be rate limited after 5 requests")

	// A different email from the same IP has its own bucket.
	_, err = client.Login(t.Context(), "other@example.com", "wrong-password")
	assertKind(t, err, authsdk.KindInvalidCredentials, "separate bucket per email")
}

// TestRateLimitBootstrapEndpoint verifies that /v1/bootstrap is rate limited.
func TestRateLimitBootstrapEndpoint(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	req := authsdk.BootstrapRequest{Email: adminEmail, Password: adminPassword}

	var lastErr error
	for range 6 {
		_, lastErr = client.Bootstrap(t.Context(), "wrong-token", req)
		require.Error(t, lastErr)
	}
	assertStatus(t, lastErr, http.StatusTooManyRequests, "Should be rate limited after 5 requests")
}

// TestRateLimitHealthEndpoints verifies health check endpoints have lenient limits.
func TestRateLimitHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	// Lenient limit is 100 req/min, test we can make 30 requests to both endpoints
	for i := range 30 {
		health, err := client.GetLiveness(t.Context())
		require.NoError(t, err, "Liveness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)

		health, err = client.GetReadiness(t.Context())
		require.NoError(t, err, "Readiness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)
	}
}

// TestRateLimitHeadersPresent verifies that a 429 carries the limit headers.
// Refresh uses the moderate limit (20 req/min), so the loop trips it quickly.
func TestRateLimitHeadersPresent(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	var resp *http.Response
	for range 25 {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, baseURL+authsdk.RefreshPath, nil)
		require.NoError(t, err)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			break
		}
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "Should receive 429 status")
	require.NotEmpty(t, resp.Header.Get("Retry-After"), "Should include Retry-After header")
	require.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"), "Should include X-RateLimit-Limit header")
	require.NotEmpty(t, resp.Header.Get("X-RateLimit-Window"), "Should include X-RateLimit-Window header")
}
