package http

import (
	"net/http"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/service"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/httpx"
)

type ContentsHandler struct {
	Contents *service.ContentService
}

func toContent(c domain.Content) authsdk.Content {
	return authsdk.Content{
		ID:        c.ID,
		Title:     c.Title,
		Blocks:    c.Blocks,
		CreatedBy: c.CreatedBy,
		UpdatedBy: c.UpdatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// HandleList godoc
//
//	@Summary	List contents
//	@Tags		Contents
//	@Produce	json
//	@Success	200	{object}	authsdk.ListContentsResponse
//	@Failure	401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure	403	{object}	authsdk.ErrorResponse	"Role not allowed"
//	@Security	BearerAuth
//	@Router		/contents [get].
func (h *ContentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Contents.ListContents(r.Context())
	if err != nil {
		writeError(w, r, err, "content")
		return
	}

	resp := authsdk.ListContentsResponse{Contents: make([]authsdk.Content, len(items))}
	for i, c := range items {
		resp.Contents[i] = toContent(c)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary	Get a content item
//	@Tags		Contents
//	@Produce	json
//	@Param		id	path		string	true	"Content ID"
//	@Success	200	{object}	authsdk.Content
//	@Failure	400	{object}	authsdk.ErrorResponse	"Invalid id"
//	@Failure	401	{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure	404	{object}	authsdk.ErrorResponse	"Not found"
//	@Security	BearerAuth
//	@Router		/contents/{id} [get].
func (h *ContentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Contents.GetContent(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "content")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContent(c))
}

// HandleCreate godoc
//
//	@Summary		Create a content item
//	@Description	Requires the admin or editor role. Blocks must be a JSON array and defaults to [].
//	@Tags			Contents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateContentRequest	true	"Content"
//	@Success		201		{object}	authsdk.Content
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Role not allowed"
//	@Security		BearerAuth
//	@Router			/contents [post].
func (h *ContentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateContentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "content")
		return
	}

	actor, _ := httpx.IdentityFromContext(r.Context())
	c, err := h.Contents.CreateContent(r.Context(), actor.Subject, service.CreateContentInput{
		Title:  req.Title,
		Blocks: req.Blocks,
	})
	if err != nil {
		writeError(w, r, err, "content")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toContent(c))
}

// HandleUpdate godoc
//
//	@Summary	Update a content item
//	@Tags		Contents
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Content ID"
//	@Param		request	body		authsdk.UpdateContentRequest	true	"Fields to change"
//	@Success	200		{object}	authsdk.Content
//	@Failure	400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure	403		{object}	authsdk.ErrorResponse	"Role not allowed"
//	@Failure	404		{object}	authsdk.ErrorResponse	"Not found"
//	@Security	BearerAuth
//	@Router		/contents/{id} [patch].
func (h *ContentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req authsdk.UpdateContentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err, "content")
		return
	}

	actor, _ := httpx.IdentityFromContext(r.Context())
	c, err := h.Contents.UpdateContent(r.Context(), actor.Subject, id, service.UpdateContentInput{
		Title:  req.Title,
		Blocks: req.Blocks,
	})
	if err != nil {
		writeError(w, r, err, "content")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toContent(c))
}

// HandleDelete godoc
//
//	@Summary	Delete a content item
//	@Tags		Contents
//	@Produce	json
//	@Param		id	path		string	true	"Content ID"
//	@Success	200	{object}	object	"Empty object"
//	@Failure	403	{object}	authsdk.ErrorResponse	"Role not allowed"
//	@Failure	404	{object}	authsdk.ErrorResponse	"Not found"
//	@Security	BearerAuth
//	@Router		/contents/{id} [delete].
func (h *ContentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Contents.DeleteContent(r.Context(), id); err != nil {
		writeError(w, r, err, "content")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
