package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

var errInvalidBody = authsdk.ErrInvalidRequest.WithMessage("request body must be valid JSON")

// writeError maps service and SDK errors onto the wire. what names the
// resource in not-found and conflict messages.
func writeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var (
		sdkErr *authsdk.Error
		inErr  *service.InputError
	)
	switch {
	case errors.As(err, &sdkErr):
		sdkErr.WriteError(w)
	case errors.As(err, &inErr):
		authsdk.ErrInvalidRequest.WithMessage(inErr.Msg).WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrTokenInvalid):
		authsdk.ErrTokenInvalid.WriteError(w)
	case errors.Is(err, service.ErrTokenRevoked):
		authsdk.ErrTokenRevoked.WriteError(w)
	case errors.Is(err, service.ErrIdentityGone):
		authsdk.ErrIdentityGone.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WithMessage(what + " not found").WriteError(w)
	case errors.Is(err, service.ErrConflict):
		authsdk.ErrConflict.WithMessage(what + " already exists").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "resource", what, "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// pathID reads and canonicalises the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		authsdk.ErrInvalidRequest.WithMessage("invalid id").WriteError(w)
		return "", false
	}
	return id.String(), true
}
