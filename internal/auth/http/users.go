package http

import (
	"net/http"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/httpx"
)

// UsersHandler serves user management. Every route is admin only, except
// the public sign-up.
type UsersHandler struct {
	Users *service.UserService
}

func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		CreatedBy: u.CreatedBy,
		UpdatedBy: u.UpdatedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HandleList godoc
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	authsdk.ListUsersResponse
//	@Failure	401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure	403	{object}	authsdk.ErrorResponse	"Admin only"
//	@Security	BearerAuth
//	@Router		/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, "user")
		return
	}

	resp := authsdk.ListUsersResponse{Users: make([]authsdk.User, len(users))}
	for i, u := range users {
		resp.Users[i] = toUser(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate godoc
//
//	@Summary	Create a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.CreateUserRequest	true	"New user"
//	@Success	201		{object}	authsdk.User
//	@Failure	400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure	403		{object}	authsdk.ErrorResponse	"Admin only"
//	@Failure	409		{object}	authsdk.ErrorResponse	"Email already in use"
//	@Security	BearerAuth
//	@Router		/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "user")
		return
	}

	actor, _ := httpx.IdentityFromContext(r.Context())
	u, err := h.Users.CreateUser(r.Context(), actor.Subject, service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleRegister godoc
//
//	@Summary		Register a client account
//	@Description	Public sign-up. The account always gets the client role; admins create other roles through /users.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Email already in use"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many requests"
//	@Router			/auth/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "user")
		return
	}

	u, err := h.Users.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleUpdate godoc
//
//	@Summary		Update a user
//	@Description	Role changes apply to the user's next request.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Admin only"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [patch].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req authsdk.UpdateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "user")
		return
	}

	actor, _ := httpx.IdentityFromContext(r.Context())
	u, err := h.Users.UpdateUser(r.Context(), actor.Subject, id, service.UpdateUserInput{
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, r, err, "user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleDelete godoc
//
//	@Summary		Delete a user
//	@Description	The user's outstanding access tokens stop working immediately.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		403	{object}	authsdk.ErrorResponse	"Admin only"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, _ := httpx.IdentityFromContext(r.Context())
	if err := h.Users.DeleteUser(r.Context(), actor.Subject, id); err != nil {
		writeError(w, r, err, "user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "user deleted"})
}
