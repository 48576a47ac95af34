package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Content operations. Reads are open to every role; writes need admin or
// editor.

func (s *Session) ListContents(ctx context.Context) ([]Content, error) {
	var out ListContentsResponse
	if err := s.call(ctx, http.MethodGet, "/contents", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Contents, nil
}

func (s *Session) GetContent(ctx context.Context, id string) (*Content, error) {
	var out Content
	if err := s.call(ctx, http.MethodGet, "/contents/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	var out Content
	if err := s.call(ctx, http.MethodPost, "/contents", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateContent(ctx context.Context, id string, req UpdateContentRequest) (*Content, error) {
	var out Content
	if err := s.call(ctx, http.MethodPatch, "/contents/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteContent(ctx context.Context, id string) error {
	var out struct{}
	return s.call(ctx, http.MethodDelete, "/contents/"+url.PathEscape(id), nil, &out, http.StatusOK)
}
