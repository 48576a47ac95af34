package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// UpdateUserInput fields are optional; nil leaves the value unchanged.
type UpdateUserInput struct {
	Name     *string
	Password *string
	Role     *string
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, mapStoreErr(err)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// RegisterInput is a public sign-up. The role is not the caller's choice.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates a client account for an unauthenticated caller. The new
// user is recorded as its own creator.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	return s.createUser(ctx, "", CreateUserInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     domain.RoleClient.String(),
	})
}

// CreateUser adds a user on behalf of actorID.
func (s *UserService) CreateUser(ctx context.Context, actorID string, in CreateUserInput) (domain.User, error) {
	return s.createUser(ctx, actorID, in)
}

// createUser treats an empty actorID as self-registration.
func (s *UserService) createUser(ctx context.Context, actorID string, in CreateUserInput) (domain.User, error) {
	email, err := normaliseEmail(in.Email)
	if err != nil {
		return domain.User{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.User{}, invalid("name is required")
	}
	if in.Password == "" {
		return domain.User{}, invalid("password is required")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return domain.User{}, invalid("role must be one of admin, editor, client")
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	id := idx.New().String()
	if actorID == "" {
		actorID = id
	}
	u := domain.User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("user created",
		"user_id", u.ID, "role", u.Role.String(), "actor", actorID)
	return s.GetUserByID(ctx, u.ID)
}

// UpdateUser applies in to user id. A role change takes effect on the user's
// next request, since the middleware reads the role from the store.
func (s *UserService) UpdateUser(ctx context.Context, actorID, id string, in UpdateUserInput) (domain.User, error) {
	var patch domain.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.User{}, invalid("name must not be empty")
		}
		patch.Name = &name
	}
	if in.Password != nil {
		if *in.Password == "" {
			return domain.User{}, invalid("password must not be empty")
		}
		patch.Password = in.Password
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return domain.User{}, invalid("role must be one of admin, editor, client")
		}
		patch.Role = &role
	}

	var hash string
	if patch.Password != nil {
		var err error
		if hash, err = cryptox.HashPassword(*patch.Password); err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		u.UpdatedBy = actorID
		if err := tx.Users().UpdateUser(ctx, u); err != nil {
			return err
		}
		updated, err = tx.Users().GetUserByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.User{}, mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("user updated", "user_id", id, "actor", actorID)
	return updated, nil
}

// DeleteUser removes the user. Their outstanding access tokens stop working
// at once because identity resolution fails.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id, "actor", actorID)
	return nil
}

func normaliseEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", invalid("email must be a valid address")
	}
	return strings.ToLower(addr.Address), nil
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrConflict
	default:
		return err
	}
}
