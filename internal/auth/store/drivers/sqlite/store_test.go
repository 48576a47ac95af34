package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	// Second run is a no-op.
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newUser(email string, role domain.Role) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test " + role.String(),
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         role,
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	admin := newUser("admin@example.com", domain.RoleAdmin)
	require.NoError(t, s.Users().CreateUser(ctx, admin))

	t.Run("lookup by email ignores case", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "ADMIN@example.com")
		require.NoError(t, err)
		require.Equal(t, admin.ID, got.ID)
		require.Equal(t, domain.RoleAdmin, got.Role)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := newUser("Admin@Example.com", domain.RoleClient)
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("update", func(t *testing.T) {
		ed := newUser("ed@example.com", domain.RoleEditor)
		ed.CreatedBy = admin.ID
		require.NoError(t, s.Users().CreateUser(ctx, ed))

		ed.Name = "Renamed"
		ed.Role = domain.RoleClient
		ed.UpdatedBy = admin.ID
		require.NoError(t, s.Users().UpdateUser(ctx, ed))

		got, err := s.Users().GetUserByID(ctx, ed.ID)
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.Name)
		require.Equal(t, domain.RoleClient, got.Role)
		require.Equal(t, admin.ID, got.CreatedBy)

		missing := newUser("nobody@example.com", domain.RoleClient)
		require.ErrorIs(t, s.Users().UpdateUser(ctx, missing), store.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		users, err := s.Users().ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		require.Equal(t, "ed@example.com", users[0].Email)
	})

	t.Run("delete", func(t *testing.T) {
		u := newUser("gone@example.com", domain.RoleClient)
		require.NoError(t, s.Users().CreateUser(ctx, u))
		require.NoError(t, s.Users().DeleteUser(ctx, u.ID))

		_, err := s.Users().GetUserByID(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
	})
}

func TestContents(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	author := newUser("author@example.com", domain.RoleEditor)
	require.NoError(t, s.Users().CreateUser(ctx, author))

	c := domain.Content{
		ID:        idx.New().String(),
		Title:     "Hello",
		Blocks:    []byte(`[{"type":"paragraph","text":"hi"}]`),
		CreatedBy: author.ID,
		UpdatedBy: author.ID,
	}
	require.NoError(t, s.Contents().CreateContent(ctx, c))

	got, err := s.Contents().GetContentByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Title)
	require.JSONEq(t, string(c.Blocks), string(got.Blocks))

	bare := domain.Content{ID: idx.New().String(), Title: "No blocks"}
	require.NoError(t, s.Contents().CreateContent(ctx, bare))
	got, err = s.Contents().GetContentByID(ctx, bare.ID)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(got.Blocks))

	c.Title = "Hello again"
	require.NoError(t, s.Contents().UpdateContent(ctx, c))

	list, err := s.Contents().ListContents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, bare.ID, list[0].ID)
	require.Equal(t, "Hello again", list[1].Title)

	// Deleting the author keeps the content.
	require.NoError(t, s.Users().DeleteUser(ctx, author.ID))
	got, err = s.Contents().GetContentByID(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, got.CreatedBy)

	require.NoError(t, s.Contents().DeleteContent(ctx, c.ID))
	require.ErrorIs(t, s.Contents().DeleteContent(ctx, c.ID), store.ErrNotFound)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, newUser("tx@example.com", domain.RoleAdmin)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}
