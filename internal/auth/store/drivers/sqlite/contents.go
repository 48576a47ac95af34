package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/quill/internal/auth/domain"
)

type contentsRepo struct {
	q *queries
}

func (r *contentsRepo) GetContentByID(ctx context.Context, id string) (domain.Content, error) {
	row, err := r.q.GetContentByID(ctx, id)
	if err != nil {
		return domain.Content{}, mapNotFound(err)
	}
	return mapContent(row), nil
}

func (r *contentsRepo) ListContents(ctx context.Context) ([]domain.Content, error) {
	rows, err := r.q.ListContents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Content, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapContent(row))
	}
	return out, nil
}

func (r *contentsRepo) CreateContent(ctx context.Context, c domain.Content) error {
	now := time.Now().UTC()
	return r.q.CreateContent(ctx, contentRow{
		ID:        c.ID,
		Title:     c.Title,
		Blocks:    blocksText(c.Blocks),
		CreatedBy: mapStringNull(c.CreatedBy),
		UpdatedBy: mapStringNull(c.UpdatedBy),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (r *contentsRepo) UpdateContent(ctx context.Context, c domain.Content) error {
	return rowsAffected(r.q.UpdateContent(ctx, contentRow{
		ID:        c.ID,
		Title:     c.Title,
		Blocks:    blocksText(c.Blocks),
		UpdatedBy: mapStringNull(c.UpdatedBy),
		UpdatedAt: time.Now().UTC(),
	}))
}

func (r *contentsRepo) DeleteContent(ctx context.Context, id string) error {
	return rowsAffected(r.q.DeleteContent(ctx, id))
}

func blocksText(b json.RawMessage) string {
	if len(b) == 0 {
		return "[]"
	}
	return string(b)
}

func mapContent(row contentRow) domain.Content {
	return domain.Content{
		ID:        row.ID,
		Title:     row.Title,
		Blocks:    json.RawMessage(row.Blocks),
		CreatedBy: mapNullString(row.CreatedBy),
		UpdatedBy: mapNullString(row.UpdatedBy),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
