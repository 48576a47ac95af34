package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the first admin
//	@Description	Creates the first admin user. Only available when a bootstrap token is configured and only while no users exist.
//	@Description	The token may be sent in the X-Bootstrap-Token header or the request body.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						false	"Bootstrap token"
//	@Param			request				body		authsdk.BootstrapRequest	true	"Admin account"
//	@Success		201					{object}	authsdk.BootstrapResponse	"Admin user created"
//	@Failure		400					{object}	authsdk.ErrorResponse		"Invalid request body or validation failed"
//	@Failure		401					{object}	authsdk.ErrorResponse		"Missing or invalid bootstrap token"
//	@Failure		404					{object}	authsdk.ErrorResponse		"Bootstrap not enabled (no token configured)"
//	@Failure		409					{object}	authsdk.ErrorResponse		"System already bootstrapped"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		authsdk.ErrNotFound.WithMessage("bootstrap endpoint is not enabled").WriteError(w)
		return
	}

	// 2. Parse request body and validate
	var req authsdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "admin")
		return
	}

	// 3. Header wins over the body
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		token = req.Token
	}
	if token == "" {
		authsdk.ErrTokenInvalid.WithMessage("bootstrap token is required").WriteError(w)
		return
	}

	// 4. Perform bootstrap
	adminID, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Email:    strings.TrimSpace(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			authsdk.ErrTokenInvalid.WithMessage("invalid bootstrap token").WriteError(w)
		case errors.Is(err, service.ErrBootstrapAlready):
			authsdk.ErrConflict.WithMessage("system has already been bootstrapped").WriteError(w)
		default:
			writeError(w, r, err, "admin")
		}
		return
	}

	l.Info("bootstrap complete", "admin_user_id", adminID)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.BootstrapResponse{AdminUserID: adminID})
}
