package httpx

import (
	"net/http"
	"strings"
)

// RequireRoles lets the request through only if the caller's role is in the
// allow-set. It must run after AuthnMiddleware.
func RequireRoles(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing identity")
				return
			}
			if _, ok := want[id.Role]; !ok {
				w.Header().Set("WWW-Authenticate",
					`Bearer error="insufficient_scope", scope="`+strings.Join(allowed, " ")+`"`)
				WriteError(w, http.StatusForbidden, "forbidden", "forbidden resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
