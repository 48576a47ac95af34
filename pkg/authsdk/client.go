package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Endpoint paths used by the SDK.
const (
	LoginPath   = "/auth/login"
	RefreshPath = "/auth/refresh"
	LogoutPath  = "/auth/logout"
	MePath      = "/auth/me"
)

// refreshCookieName matches the cookie the server sets on login and refresh.
const refreshCookieName = "refresh_token"

// SDKClient talks to the quill API. Its HTTP client owns a cookie jar, which
// is where the refresh token lives between calls.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a fresh cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // only fails on a bad PublicSuffixList
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Login posts credentials. On success the refresh cookie is stored in the
// jar. A 401 maps to KindInvalidCredentials.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, LoginPath, LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK, KindInvalidCredentials, unexpectedMessage); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Refresh exchanges the jar's refresh cookie for a new access token.
func (c *SDKClient) Refresh(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, RefreshPath, nil, nil)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK, KindTokenInvalid, refreshFailedMessage); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout revokes the jar's refresh cookie on the server.
func (c *SDKClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, LogoutPath, nil, bearer(accessToken))
	if err != nil {
		return err
	}
	var out struct{}
	return decodeJSON(resp, &out, http.StatusOK, KindTokenInvalid, unexpectedMessage)
}

// Me returns the identity the server resolves for accessToken.
func (c *SDKClient) Me(ctx context.Context, accessToken string) (*Identity, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, MePath, nil, bearer(accessToken))
	if err != nil {
		return nil, err
	}

	var id Identity
	if err := decodeJSON(resp, &id, http.StatusOK, KindTokenInvalid, unexpectedMessage); err != nil {
		return nil, err
	}
	return &id, nil
}

// forgetRefreshCookie expires the refresh cookie in the jar. The server only
// clears it on a successful logout, which needs a live access token.
func (c *SDKClient) forgetRefreshCookie() {
	if c.HTTPClient == nil || c.HTTPClient.Jar == nil {
		return
	}
	u, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{Name: refreshCookieName, Path: "/", MaxAge: -1}})
}

func bearer(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
