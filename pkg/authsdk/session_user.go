package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the identity the server resolves for this session. Unlike
// Identity, the role comes from the live user record.
func (s *Session) Me(ctx context.Context) (*Identity, error) {
	var out Identity
	if err := s.call(ctx, http.MethodGet, MePath, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// User Management (admin only)
// ============================================================================

func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	var out ListUsersResponse
	if err := s.call(ctx, http.MethodGet, "/users", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var out User
	if err := s.call(ctx, http.MethodPost, "/users", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var out User
	if err := s.call(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteUser(ctx context.Context, id string) error {
	var out MessageResponse
	return s.call(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, &out, http.StatusOK)
}
