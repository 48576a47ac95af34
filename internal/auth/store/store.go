package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrUnavailable   = errors.New("store: unavailable")
)

// Store is the root data access interface for the relational data (users and
// content). It exposes sub-repositories so a Tx can hand out the same repos
// bound to the transaction, which stops transactions being nested by accident.
type Store interface {
	Users() Users
	Contents() Contents

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. Emails compare case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser writes name, password_hash, role and updated_by, and bumps
	// updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser returns ErrNotFound when no row was removed.
	DeleteUser(ctx context.Context, id string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Contents interface {
	GetContentByID(ctx context.Context, id string) (domain.Content, error)

	// ListContents returns all content, newest first.
	ListContents(ctx context.Context) ([]domain.Content, error)

	CreateContent(ctx context.Context, c domain.Content) error
	UpdateContent(ctx context.Context, c domain.Content) error

	// DeleteContent returns ErrNotFound when no row was removed.
	DeleteContent(ctx context.Context, id string) error
}
