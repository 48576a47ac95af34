package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
)

func TestBootstrapEndpoint(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	c := h.client()
	req := authsdk.BootstrapRequest{Email: "root@example.com", Password: "root-password", Name: "Root"}

	_, err := c.Bootstrap(ctx, "wrong-token", req)
	require.ErrorIs(t, err, authsdk.ErrTokenInvalid)

	_, err = c.Bootstrap(ctx, testBootstrapToken, authsdk.BootstrapRequest{Email: "root@example.com", Password: "short"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	resp, err := c.Bootstrap(ctx, testBootstrapToken, req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.AdminUserID)

	_, err = c.Bootstrap(ctx, testBootstrapToken, req)
	require.ErrorIs(t, err, authsdk.ErrConflict)

	s, _ := h.session()
	id, err := s.Login(ctx, "root@example.com", "root-password")
	require.NoError(t, err)
	require.Equal(t, "admin", id.Role)
	require.Equal(t, resp.AdminUserID, id.Subject)
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	c := h.client()

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.TokenStore)
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestReadyzReportsDatabaseFailure(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.store.Close())

	resp := h.rawGet(t, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body authsdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "error", body.Checks.Database)
	require.Equal(t, "ok", body.Checks.TokenStore)
}

func TestMetricsEndpoint(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.seedUser(t, "ed@example.com", "editor-pass", domain.RoleEditor)

	s, _ := h.session()
	_, err := s.Login(ctx, "ed@example.com", "editor-pass")
	require.NoError(t, err)
	_, _ = s.Login(ctx, "ed@example.com", "wrong")

	resp := h.rawGet(t, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	require.Contains(t, body, `quill_auth_logins_total{outcome="success"} 1`)
	require.Contains(t, body, `quill_auth_logins_total{outcome="invalid_credentials"} 1`)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	h := newHarness(t, true)
	for _, path := range []string{"/auth/me", "/contents", "/users"} {
		t.Run(path, func(t *testing.T) {
			resp := h.rawGet(t, path, "")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			resp = h.rawGet(t, path, "not-a-jwt")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	h := newHarness(t, true)
	resp := h.rawRefresh(t, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "unauthorized", body.Error)
}

func TestContentLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.seedUser(t, "ed@example.com", "editor-pass", domain.RoleEditor)

	s, _ := h.session()
	_, err := s.Login(ctx, "ed@example.com", "editor-pass")
	require.NoError(t, err)

	created, err := s.CreateContent(ctx, authsdk.CreateContentRequest{Title: "Draft"})
	require.NoError(t, err)

	got, err := s.GetContent(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Draft", got.Title)

	title := "Final"
	updated, err := s.UpdateContent(ctx, created.ID, authsdk.UpdateContentRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Final", updated.Title)

	items, err := s.ListContents(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, s.DeleteContent(ctx, created.ID))
	_, err = s.GetContent(ctx, created.ID)
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	_, err = s.GetContent(ctx, "not-an-id")
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	_, err = s.CreateContent(ctx, authsdk.CreateContentRequest{})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
}

func TestUserManagement(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.seedUser(t, "admin@example.com", "admin-pass", domain.RoleAdmin)

	admin, _ := h.session()
	_, err := admin.Login(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)

	created, err := admin.CreateUser(ctx, authsdk.CreateUserRequest{
		Email: "new@example.com", Name: "New", Password: "new-password", Role: "client",
	})
	require.NoError(t, err)
	require.Equal(t, "client", created.Role)

	_, err = admin.CreateUser(ctx, authsdk.CreateUserRequest{
		Email: "new@example.com", Name: "Dup", Password: "new-password", Role: "client",
	})
	require.ErrorIs(t, err, authsdk.ErrConflict)

	bad := "superuser"
	_, err = admin.UpdateUser(ctx, created.ID, authsdk.UpdateUserRequest{Role: &bad})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		raw, err := json.Marshal(u)
		require.NoError(t, err)
		require.False(t, strings.Contains(string(raw), "password"), "user payload leaks password data")
	}

	require.NoError(t, admin.DeleteUser(ctx, created.ID))
	require.ErrorIs(t, admin.DeleteUser(ctx, created.ID), authsdk.ErrNotFound)
}

func TestRegisterCreatesClient(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	c := h.client()
	u, err := c.Register(ctx, authsdk.RegisterRequest{
		Email: "reader@example.com", Name: "Reader", Password: "reader-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "client", u.Role)

	_, err = c.Register(ctx, authsdk.RegisterRequest{
		Email: "reader@example.com", Name: "Again", Password: "reader-pass",
	})
	require.ErrorIs(t, err, authsdk.ErrConflict)

	_, err = c.Register(ctx, authsdk.RegisterRequest{Email: "x@example.com", Name: "X", Password: "short"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	// A role in the body is ignored.
	resp, err := http.Post(h.srv.URL+authsdk.RegisterPath, "application/json", strings.NewReader(
		`{"email":"sneaky@example.com","name":"Sneaky","password":"sneaky-pass","role":"admin"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sneaky authsdk.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sneaky))
	require.Equal(t, "client", sneaky.Role)

	s, _ := h.session()
	id, err := s.Login(ctx, "reader@example.com", "reader-pass")
	require.NoError(t, err)
	require.Equal(t, "client", id.Role)
	_, err = s.ListContents(ctx)
	require.NoError(t, err)
	_, err = s.CreateContent(ctx, authsdk.CreateContentRequest{Title: "nope"})
	require.ErrorIs(t, err, authsdk.ErrRoleDenied)
}

func TestSwaggerServed(t *testing.T) {
	h := newHarness(t, true)
	resp := h.rawGet(t, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, paths, "/auth/refresh")
	require.Contains(t, paths, "/auth/register")
}
