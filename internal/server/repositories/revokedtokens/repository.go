// Package revokedtokens keeps the denylist of logged-out access tokens.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Repository records token ids (jti) that must no longer be accepted.
// Entries are only useful until the token expires; DeleteExpired prunes them.
type Repository interface {
	Create(ctx context.Context, t models.RevokedToken) error
	Exists(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
