package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/metrics"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

// DefaultStoreTimeout bounds each token store call.
const DefaultStoreTimeout = 2 * time.Second

// AuthService implements login, refresh and logout.
type AuthService struct {
	Store  store.Store
	Tokens store.TokenStore
	Issuer *jwtx.TokenIssuer

	// RefreshVerifier checks refresh tokens against the refresh secret.
	RefreshVerifier jwtx.Verifier

	// Rotate replaces the refresh token on every successful refresh and
	// consumes the old entry atomically.
	Rotate bool

	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

// Session is what login and refresh hand back to the transport layer.
// RefreshToken is empty when a refresh did not rotate.
type Session struct {
	AccessToken  string
	RefreshToken string
	Identity     httpx.Identity
}

func identityOf(u domain.User) httpx.Identity {
	return httpx.Identity{Subject: u.ID, Email: u.Email, Role: u.Role.String()}
}

// Login verifies credentials and starts a session. Unknown email and wrong
// password both return ErrInvalidCredentials after equivalent work.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.BurnPasswordCheck(password)
			l.Info("login for unknown email")
			s.Metrics.Login(metrics.OutcomeInvalidCredentials)
			return Session{}, ErrInvalidCredentials
		}
		s.Metrics.Login(metrics.OutcomeError)
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", slog.String("user_id", user.ID), slog.Any("err", err))
		} else {
			l.Info("login with wrong password", slog.String("user_id", user.ID))
		}
		s.Metrics.Login(metrics.OutcomeInvalidCredentials)
		return Session{}, ErrInvalidCredentials
	}

	if cryptox.IsBcryptHash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	sess, err := s.startSession(ctx, user)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return Session{}, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	s.Metrics.Login(metrics.OutcomeSuccess)
	return sess, nil
}

// upgradeHash re-hashes an imported bcrypt password with argon2id. Failure
// only means the upgrade is retried on the next login.
func (s *AuthService) upgradeHash(ctx context.Context, user domain.User, password string) {
	l := slogx.FromContext(ctx)
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Warn("rehash legacy password failed", slog.Any("err", err))
		return
	}
	user.PasswordHash = hash
	user.UpdatedBy = user.ID
	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		l.Warn("store upgraded password hash failed", slog.Any("err", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.String("user_id", user.ID))
}

func (s *AuthService) startSession(ctx context.Context, user domain.User) (Session, error) {
	access, _, err := s.Issuer.IssueAccessToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issueRefresh(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: access, RefreshToken: refresh, Identity: identityOf(user)}, nil
}

func (s *AuthService) issueRefresh(ctx context.Context, subject string) (string, error) {
	refresh, _, err := s.Issuer.IssueRefreshToken(subject)
	if err != nil {
		return "", fmt.Errorf("issue refresh token: %w", err)
	}

	err = s.withStore(ctx, "put", func(ctx context.Context) error {
		return s.Tokens.Put(ctx, refresh, subject, s.Issuer.RefreshTTL)
	})
	if err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return refresh, nil
}

// Refresh exchanges a refresh token for a new access token. The checks run
// in order: signature and expiry, identity, then the store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.RefreshVerifier.Verify(refreshToken)
	if err != nil {
		l.Info("refresh token rejected", slog.Any("err", err))
		s.Metrics.Refresh(metrics.OutcomeTokenInvalid)
		return Session{}, ErrTokenInvalid
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("refresh for deleted user", slog.String("sub", claims.Subject))
			s.Metrics.Refresh(metrics.OutcomeIdentityGone)
			return Session{}, ErrIdentityGone
		}
		s.Metrics.Refresh(metrics.OutcomeError)
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	var stored string
	op, lookup := "get", s.Tokens.Get
	if s.Rotate {
		op, lookup = "take", s.Tokens.Take
	}
	err = s.withStore(ctx, op, func(ctx context.Context) error {
		var err error
		stored, err = lookup(ctx, refreshToken)
		return err
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.Info("refresh token not live", slog.String("sub", claims.Subject))
		s.Metrics.Refresh(metrics.OutcomeTokenRevoked)
		return Session{}, ErrTokenRevoked
	case err != nil:
		s.Metrics.Refresh(metrics.OutcomeError)
		return Session{}, fmt.Errorf("lookup refresh token: %w", err)
	case stored != claims.Subject:
		l.Warn("refresh token subject mismatch", slog.String("sub", claims.Subject))
		s.Metrics.Refresh(metrics.OutcomeTokenRevoked)
		return Session{}, ErrTokenRevoked
	}

	access, _, err := s.Issuer.IssueAccessToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		s.Metrics.Refresh(metrics.OutcomeError)
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	sess := Session{AccessToken: access, Identity: identityOf(user)}

	if s.Rotate {
		// The old entry is already gone; a failure here ends the session.
		sess.RefreshToken, err = s.issueRefresh(ctx, user.ID)
		if err != nil {
			s.Metrics.Refresh(metrics.OutcomeError)
			return Session{}, err
		}
	}

	s.Metrics.Refresh(metrics.OutcomeSuccess)
	return sess, nil
}

// Logout revokes refreshToken when it belongs to subject. It reports whether
// an entry was deleted. Missing, foreign or unparsable tokens are skipped.
func (s *AuthService) Logout(ctx context.Context, subject, refreshToken string) (bool, error) {
	l := slogx.FromContext(ctx)

	if refreshToken == "" {
		s.Metrics.Logout(false)
		return false, nil
	}

	claims, err := s.RefreshVerifier.Verify(refreshToken)
	if err != nil {
		l.Info("logout with unusable refresh cookie", slog.Any("err", err))
		s.Metrics.Logout(false)
		return false, nil
	}
	if claims.Subject != subject {
		l.Warn("logout refresh cookie belongs to another subject",
			slog.String("sub", subject), slog.String("cookie_sub", claims.Subject))
		s.Metrics.Logout(false)
		return false, nil
	}

	err = s.withStore(ctx, "delete", func(ctx context.Context) error {
		return s.Tokens.Delete(ctx, refreshToken)
	})
	if err != nil {
		s.Metrics.Logout(false)
		return false, fmt.Errorf("delete refresh token: %w", err)
	}

	s.Metrics.Logout(true)
	return true, nil
}

// ResolveIdentity maps a verified access token subject to the live user.
func (s *AuthService) ResolveIdentity(ctx context.Context, subject string) (httpx.Identity, error) {
	user, err := s.Store.Users().GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.Identity{}, ErrIdentityGone
		}
		return httpx.Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	return identityOf(user), nil
}

// Ping reports whether the token store is reachable.
func (s *AuthService) Ping(ctx context.Context) error {
	return s.withStore(ctx, "ping", s.Tokens.Ping)
}

func (s *AuthService) withStore(ctx context.Context, op string, fn func(context.Context) error) error {
	timeout := s.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.ObserveStore(op, start, nil)
	} else {
		s.Metrics.ObserveStore(op, start, err)
	}
	return err
}
