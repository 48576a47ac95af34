package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := memory.NewTokenStore()
	svc := newAuthService(t, st, tokens, true)
	user := seedUser(t, st, "ed@example.com", "correct horse", domain.RoleEditor)

	t.Run("valid credentials", func(t *testing.T) {
		sess, err := svc.Login(ctx, " ED@example.com ", "correct horse")
		require.NoError(t, err)
		require.Equal(t, user.ID, sess.Identity.Subject)
		require.Equal(t, "editor", sess.Identity.Role)

		claims, err := jwtx.ParseUnverified(sess.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, "ed@example.com", claims.Email)
		require.Equal(t, "editor", claims.Role)

		sub, err := tokens.Get(ctx, sess.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, sub)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, errUnknown := svc.Login(ctx, "nobody@example.com", "correct horse")
		_, errWrong := svc.Login(ctx, "ed@example.com", "wrong")
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("legacy bcrypt hash is accepted and upgraded", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		u := domain.User{
			ID: idx.New().String(), Email: "legacy@example.com", Name: "Legacy",
			PasswordHash: string(legacy), Role: domain.RoleClient,
		}
		require.NoError(t, st.Users().CreateUser(ctx, u))

		_, err = svc.Login(ctx, "legacy@example.com", "old-pass")
		require.NoError(t, err)

		stored, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, cryptox.IsBcryptHash(stored.PasswordHash))
		require.NoError(t, cryptox.VerifyPassword("old-pass", stored.PasswordHash))
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("without rotation the same cookie keeps working", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAuthService(t, st, memory.NewTokenStore(), false)
		seedUser(t, st, "c@example.com", "pw", domain.RoleClient)

		sess, err := svc.Login(ctx, "c@example.com", "pw")
		require.NoError(t, err)

		for range 2 {
			next, err := svc.Refresh(ctx, sess.RefreshToken)
			require.NoError(t, err)
			require.NotEmpty(t, next.AccessToken)
			require.Empty(t, next.RefreshToken)
		}
	})

	t.Run("rotation consumes the old token", func(t *testing.T) {
		st := newTestStore(t)
		tokens, _ := newMiniredisTokens(t)
		svc := newAuthService(t, st, tokens, true)
		seedUser(t, st, "c@example.com", "pw", domain.RoleClient)

		sess, err := svc.Login(ctx, "c@example.com", "pw")
		require.NoError(t, err)

		next, err := svc.Refresh(ctx, sess.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, next.RefreshToken)
		require.NotEqual(t, sess.RefreshToken, next.RefreshToken)

		_, err = svc.Refresh(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenRevoked)

		_, err = svc.Refresh(ctx, next.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rotation lets exactly one concurrent refresh win", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAuthService(t, st, memory.NewTokenStore(), true)
		seedUser(t, st, "c@example.com", "pw", domain.RoleClient)
		sess, err := svc.Login(ctx, "c@example.com", "pw")
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Refresh(ctx, sess.RefreshToken)
			}()
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
			} else {
				require.ErrorIs(t, err, ErrTokenRevoked)
			}
		}
		require.Equal(t, 1, ok)
	})

	t.Run("role is re-derived from the stored user", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAuthService(t, st, memory.NewTokenStore(), false)
		u := seedUser(t, st, "c@example.com", "pw", domain.RoleClient)
		sess, err := svc.Login(ctx, "c@example.com", "pw")
		require.NoError(t, err)

		u.Role = domain.RoleEditor
		require.NoError(t, st.Users().UpdateUser(ctx, u))

		next, err := svc.Refresh(ctx, sess.RefreshToken)
		require.NoError(t, err)
		claims, err := jwtx.ParseUnverified(next.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "editor", claims.Role)
	})

	t.Run("failures", func(t *testing.T) {
		st := newTestStore(t)
		tokens, mr := newMiniredisTokens(t)
		svc := newAuthService(t, st, tokens, false)
		u := seedUser(t, st, "c@example.com", "pw", domain.RoleClient)

		sess, err := svc.Login(ctx, "c@example.com", "pw")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, ErrTokenInvalid)

		// An access token is signed with the other secret.
		_, err = svc.Refresh(ctx, sess.AccessToken)
		require.ErrorIs(t, err, ErrTokenInvalid)

		// Validly signed but never stored.
		orphan, _, err := svc.Issuer.IssueRefreshToken(u.ID)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, orphan)
		require.ErrorIs(t, err, ErrTokenRevoked)

		// Store TTL elapsed before the signature expiry.
		mr.FastForward(svc.Issuer.RefreshTTL + time.Second)
		_, err = svc.Refresh(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenRevoked)

		sess, err = svc.Login(ctx, "c@example.com", "pw")
		require.NoError(t, err)
		require.NoError(t, st.Users().DeleteUser(ctx, u.ID))
		_, err = svc.Refresh(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrIdentityGone)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := memory.NewTokenStore()
	svc := newAuthService(t, st, tokens, true)
	alice := seedUser(t, st, "alice@example.com", "pw", domain.RoleClient)
	bob := seedUser(t, st, "bob@example.com", "pw", domain.RoleClient)

	aliceSess, err := svc.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	bobSess, err := svc.Login(ctx, "bob@example.com", "pw")
	require.NoError(t, err)

	t.Run("foreign cookie is left alone", func(t *testing.T) {
		revoked, err := svc.Logout(ctx, alice.ID, bobSess.RefreshToken)
		require.NoError(t, err)
		require.False(t, revoked)
		_, err = tokens.Get(ctx, bobSess.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("own cookie is revoked and refresh fails", func(t *testing.T) {
		revoked, err := svc.Logout(ctx, alice.ID, aliceSess.RefreshToken)
		require.NoError(t, err)
		require.True(t, revoked)

		_, err = svc.Refresh(ctx, aliceSess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("repeat and empty logouts are harmless", func(t *testing.T) {
		_, err := svc.Logout(ctx, alice.ID, aliceSess.RefreshToken)
		require.NoError(t, err)
		revoked, err := svc.Logout(ctx, bob.ID, "")
		require.NoError(t, err)
		require.False(t, revoked)
		revoked, err = svc.Logout(ctx, bob.ID, "not-a-jwt")
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestResolveIdentity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAuthService(t, st, memory.NewTokenStore(), true)
	u := seedUser(t, st, "a@example.com", "pw", domain.RoleAdmin)

	id, err := svc.ResolveIdentity(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "admin", id.Role)

	_, err = svc.ResolveIdentity(ctx, idx.New().String())
	require.ErrorIs(t, err, ErrIdentityGone)
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens, mr := newMiniredisTokens(t)
	svc := newAuthService(t, st, tokens, true)
	seedUser(t, st, "a@example.com", "pw", domain.RoleAdmin)

	mr.SetError("ERR backend offline")
	_, err := svc.Login(ctx, "a@example.com", "pw")
	require.ErrorIs(t, err, store.ErrUnavailable)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, svc.Ping(ctx), store.ErrUnavailable)
}
