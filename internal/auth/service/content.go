package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
	"github.com/aussiebroadwan/quill/internal/auth/store"
	"github.com/aussiebroadwan/quill/pkg/idx"
)

type ContentService struct {
	Store store.Store
}

type CreateContentInput struct {
	Title  string
	Blocks json.RawMessage
}

type UpdateContentInput struct {
	Title  *string
	Blocks json.RawMessage
}

func (s *ContentService) ListContents(ctx context.Context) ([]domain.Content, error) {
	return s.Store.Contents().ListContents(ctx)
}

func (s *ContentService) GetContent(ctx context.Context, id string) (domain.Content, error) {
	c, err := s.Store.Contents().GetContentByID(ctx, id)
	return c, mapStoreErr(err)
}

func (s *ContentService) CreateContent(ctx context.Context, actorID string, in CreateContentInput) (domain.Content, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Content{}, invalid("title is required")
	}
	blocks := in.Blocks
	if len(blocks) == 0 {
		blocks = json.RawMessage("[]")
	} else if !isJSONArray(blocks) {
		return domain.Content{}, invalid("blocks must be an array")
	}

	c := domain.Content{
		ID:        idx.New().String(),
		Title:     title,
		Blocks:    blocks,
		CreatedBy: actorID,
		UpdatedBy: actorID,
	}
	if err := s.Store.Contents().CreateContent(ctx, c); err != nil {
		return domain.Content{}, err
	}
	return s.GetContent(ctx, c.ID)
}

func (s *ContentService) UpdateContent(
	ctx context.Context,
	actorID, id string,
	in UpdateContentInput,
) (domain.Content, error) {
	var title string
	if in.Title != nil {
		if title = strings.TrimSpace(*in.Title); title == "" {
			return domain.Content{}, invalid("title must not be empty")
		}
	}
	if in.Blocks != nil && !isJSONArray(in.Blocks) {
		return domain.Content{}, invalid("blocks must be an array")
	}

	var updated domain.Content
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		c, err := tx.Contents().GetContentByID(ctx, id)
		if err != nil {
			return err
		}
		if title != "" {
			c.Title = title
		}
		if in.Blocks != nil {
			c.Blocks = in.Blocks
		}
		c.UpdatedBy = actorID
		if err := tx.Contents().UpdateContent(ctx, c); err != nil {
			return err
		}
		updated, err = tx.Contents().GetContentByID(ctx, id)
		return err
	})
	return updated, mapStoreErr(err)
}

func (s *ContentService) DeleteContent(ctx context.Context, id string) error {
	return mapStoreErr(s.Store.Contents().DeleteContent(ctx, id))
}

func isJSONArray(raw json.RawMessage) bool {
	var v []json.RawMessage
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) && json.Unmarshal(raw, &v) == nil
}
