package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/quill/pkg/jwtx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

// ErrIdentityGone is returned by an IdentityResolver when the token subject
// no longer maps to a user.
var ErrIdentityGone = errors.New("httpx: identity no longer exists")

// IdentityResolver maps a verified token subject to the live identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, subject string) (Identity, error)
}

// IdentityResolverFunc adapts a function to IdentityResolver.
type IdentityResolverFunc func(ctx context.Context, subject string) (Identity, error)

func (f IdentityResolverFunc) ResolveIdentity(ctx context.Context, subject string) (Identity, error) {
	return f(ctx, subject)
}

// AuthnMiddleware verifies the bearer access token and resolves the caller.
// It never consults the refresh token store; access tokens are stateless.
func AuthnMiddleware(v jwtx.Verifier, resolver IdentityResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			id, err := resolver.ResolveIdentity(ctx, claims.Subject)
			switch {
			case errors.Is(err, ErrIdentityGone):
				log.Warn("token subject no longer exists", "sub", claims.Subject)
				writeBearerError(w, "token verification failed")
				return
			case err != nil:
				log.Error("resolve identity failed", "sub", claims.Subject, "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(authz[7:])
	return raw, raw != ""
}

// RFC 6750 challenge plus the JSON error body every endpoint uses.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
}
