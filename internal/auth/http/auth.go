package http

import (
	"net/http"

	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/httpx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

// AuthHandler serves login, refresh, logout and me.
type AuthHandler struct {
	Auth *service.AuthService

	// CookieSecure sets the Secure flag on the refresh cookie.
	CookieSecure bool
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Description	Verifies credentials, returns an access token and sets the refresh_token cookie (HttpOnly, SameSite=Strict).
//	@Description	Unknown email and wrong password return the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"Access token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid email or password"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many attempts"
//	@Header			200		{string}	Set-Cookie				"refresh_token"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "credentials")
		return
	}

	sess, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	httpx.SetRefreshCookie(w, sess.RefreshToken, h.Auth.Issuer.RefreshTTL, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: sess.AccessToken})
}

// HandleRefresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges the refresh_token cookie for a new access token. With rotation enabled the cookie is replaced and the old value stops working.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse	"New access token"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing, invalid or revoked refresh token"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Too many requests"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.RefreshCookie(r)
	if !ok {
		slogx.FromContext(r.Context()).Info("refresh without cookie")
		authsdk.ErrTokenInvalid.WriteError(w)
		return
	}

	sess, err := h.Auth.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err, "session")
		return
	}

	if sess.RefreshToken != "" {
		httpx.SetRefreshCookie(w, sess.RefreshToken, h.Auth.Issuer.RefreshTTL, h.CookieSecure)
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: sess.AccessToken})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the refresh_token cookie if it belongs to the caller and clears it. Always returns 200 for an authenticated caller.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	object					"Empty object"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Security		BearerAuth
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	id, _ := httpx.IdentityFromContext(ctx)
	token, _ := httpx.RefreshCookie(r)

	revoked, err := h.Auth.Logout(ctx, id.Subject, token)
	if err != nil {
		l.Error("revoke refresh token failed", "sub", id.Subject, "err", err)
	}
	l.Info("logout", "sub", id.Subject, "revoked", revoked)

	httpx.ClearRefreshCookie(w, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

// HandleMe godoc
//
//	@Summary		Current identity
//	@Description	Returns the caller as resolved from the live user record. Cheap enough to validate a stored token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.Identity
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Security		BearerAuth
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		authsdk.ErrTokenInvalid.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.Identity{Subject: id.Subject, Email: id.Email, Role: id.Role})
}
