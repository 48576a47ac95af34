package store

import (
	"context"
	"time"
)

// TokenStore holds live refresh tokens. An entry exists exactly while the
// token may still be exchanged; deleting it revokes the token.
//
// Drivers must make Take atomic: when several callers race on one token,
// exactly one of them gets the subject.
type TokenStore interface {
	// Put upserts token -> subject with the given TTL.
	Put(ctx context.Context, token, subject string, ttl time.Duration) error

	// Get returns the subject, or ErrNotFound when absent or expired.
	Get(ctx context.Context, token string) (string, error)

	// Delete removes the entry. Deleting an absent entry is not an error.
	Delete(ctx context.Context, token string) error

	// Take atomically reads and removes the entry.
	Take(ctx context.Context, token string) (string, error)

	Ping(ctx context.Context) error
}
