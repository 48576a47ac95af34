package auth_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies wrong passwords and unknown emails get the
// same answer.
func TestInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	_, errWrong := client.Login(t.Context(), adminEmail, "wrong-password")
	assertKind(t, errWrong, authsdk.KindInvalidCredentials, "Invalid password should be rejected")

	_, errUnknown := client.Login(t.Context(), "nobody@example.com", "wrong-password")
	assertKind(t, errUnknown, authsdk.KindInvalidCredentials, "Unknown email should be rejected")

	require.Equal(t, errWrong.Error(), errUnknown.Error())
}

// TestInvalidAccessToken verifies protected routes reject garbage bearers.
func TestInvalidAccessToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	_, err := client.Me(t.Context(), "invalid-token-12345")
	assertStatus(t, err, http.StatusUnauthorized, "Invalid token should be rejected")
}

// TestRefreshCookieAttributes verifies the refresh cookie is HttpOnly and
// SameSite=Strict, and never appears in a response body.
func TestRefreshCookieAttributes(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	bootstrapService(t, authsdk.NewSDKClient(baseURL))

	body := `{"email":"` + adminEmail + `","password":"` + adminPassword + `"}`
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, baseURL+authsdk.LoginPath,
		strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}
	require.NotNil(t, refresh, "login should set the refresh cookie")
	require.True(t, refresh.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	require.Equal(t, "/", refresh.Path)
	require.Positive(t, refresh.MaxAge)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NotContains(t, string(raw), refresh.Value)
}
