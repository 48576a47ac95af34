package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrapSuccess verifies bootstrap creates an admin that can log in.
func TestBootstrapSuccess(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	adminUserID := bootstrapService(t, client)

	session := performLogin(t, baseURL, adminEmail, adminPassword)
	id, ok := session.Identity()
	require.True(t, ok)
	require.Equal(t, adminUserID, id.Subject)
	require.Equal(t, "admin", id.Role)
}

// TestBootstrapIdempotency verifies that bootstrap can only be called once.
func TestBootstrapIdempotency(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	bootstrapService(t, client)

	_, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		Email:    "another@example.com",
		Password: "AnotherPassword123!",
		Name:     "Another Admin",
	})
	assertKind(t, err, authsdk.KindConflict, "Second bootstrap should be rejected")
}

// TestBootstrapWrongToken verifies the bootstrap token is checked.
func TestBootstrapWrongToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	_, err := client.Bootstrap(t.Context(), "not-the-token", authsdk.BootstrapRequest{
		Email:    adminEmail,
		Password: adminPassword,
	})
	assertStatus(t, err, 401, "Wrong bootstrap token should be rejected")
}
