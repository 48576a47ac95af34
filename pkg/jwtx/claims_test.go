package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "quill-auth",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("quill-auth"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		require.ErrorIs(t, c.ValidateIssuer("other-service"), jwtx.ErrIssuer)
	})
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.NoError(t, claims.ValidateExpiry())
	})

	t.Run("expired token", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(1 * time.Minute)),
			},
		}
		require.ErrorIs(t, claims.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("leeway absorbs small skew", func(t *testing.T) {
		claims := &jwtx.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			},
		}
		require.NoError(t, claims.ValidateExpiryWithLeeway(30*time.Second))
		require.ErrorIs(t, claims.ValidateExpiryWithLeeway(5*time.Second), jwtx.ErrExpired)
	})
}

func TestNewAccessClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewAccessClaims("user-1", "a@x.com", "editor", 15*time.Minute, "quill-auth", now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "a@x.com", c.Email)
	require.Equal(t, "editor", c.Role)
	require.Equal(t, now.Add(15*time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
	require.Equal(t, 15*time.Minute, c.ExpiresIn(now))
	require.Zero(t, c.ExpiresIn(now.Add(time.Hour)))
}

func TestNewRefreshClaimsCarrySubjectOnly(t *testing.T) {
	now := time.Now().UTC()
	a := jwtx.NewRefreshClaims("user-1", jwtx.DefaultRefreshTokenTTL, "quill-auth", now)
	b := jwtx.NewRefreshClaims("user-1", jwtx.DefaultRefreshTokenTTL, "quill-auth", now)

	require.Equal(t, "user-1", a.Subject)
	require.Empty(t, a.Email)
	require.Empty(t, a.Role)
	require.NotEqual(t, a.ID, b.ID, "jti must differ between tokens")
}
