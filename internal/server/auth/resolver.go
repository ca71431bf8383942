package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	Exists(ctx context.Context, jti string) (bool, error)
}

// SessionResolver turns a bearer token into the active user behind it.
type SessionResolver struct {
	codec   *TokenCodec
	users   UserFinder
	revoked RevocationChecker
}

func NewSessionResolver(codec *TokenCodec, users UserFinder, revoked RevocationChecker) *SessionResolver {
	return &SessionResolver{codec: codec, users: users, revoked: revoked}
}

// Resolve fails with common.ErrorUnauthorized for a bad, expired or revoked
// token and for a subject that no longer exists, and with
// common.ErrInactiveAccount for a disabled user. The returned claims let
// callers revoke the token.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*models.User, *Claims, error) {
	claims, err := r.codec.Validate(token)
	if err != nil {
		return nil, nil, common.ErrorUnauthorized
	}

	if claims.ID != "" {
		revoked, err := r.revoked.Exists(ctx, claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return nil, nil, common.ErrorUnauthorized
		}
	}

	user, err := r.users.GetByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil, nil, common.ErrorUnauthorized
	case err != nil:
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, common.ErrInactiveAccount
	}
	return user, claims, nil
}
