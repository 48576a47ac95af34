package authsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Auth Types
// ============================================================================

// Identity is the caller as seen by the SDK. It is decoded locally from the
// access token and may be stale until the server confirms it.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register. Self-registered
// accounts always get the client role.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh. The refresh token only
// ever travels in the refresh_token cookie.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse carries a short confirmation.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
}

// ErrorResponse documents the JSON error shape for swagger.
type ErrorResponse struct {
	// Error is a short machine code (e.g., "unauthorized", "forbidden")
	Error string `json:"error"`

	// Message is a human-readable description of the error
	Message string `json:"message,omitempty"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first admin. Token may also be sent in the
// X-Bootstrap-Token header.
type BootstrapRequest struct {
	Token    string `json:"token,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// BootstrapResponse contains the new admin's id.
type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// ============================================================================
// Content Types
// ============================================================================

// Content is a rich-text document. Blocks is opaque editor JSON.
type Content struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Blocks    json.RawMessage `json:"blocks" swaggertype:"array,object"`
	CreatedBy string          `json:"created_by,omitempty"`
	UpdatedBy string          `json:"updated_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ListContentsResponse struct {
	Contents []Content `json:"contents"`
}

type CreateContentRequest struct {
	Title  string          `json:"title"`
	Blocks json.RawMessage `json:"blocks,omitempty" swaggertype:"array,object"`
}

// UpdateContentRequest fields are optional.
type UpdateContentRequest struct {
	Title  *string         `json:"title,omitempty"`
	Blocks json.RawMessage `json:"blocks,omitempty" swaggertype:"array,object"`
}

// ============================================================================
// User Types
// ============================================================================

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// UpdateUserRequest fields are optional.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency /readyz looks at.
type HealthChecks struct {
	Database   string `json:"database"`
	TokenStore string `json:"token_store"`
	Signer     string `json:"signer"`
}
