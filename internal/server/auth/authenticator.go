package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// UserFinder is the lookup the auth layer needs from the credential store.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator checks login attempts against stored credentials.
type Authenticator struct {
	users  UserFinder
	hasher PasswordHasher
	// dummyHash is compared against when the identity is unknown, so that
	// path costs one bcrypt comparison like a wrong password does.
	dummyHash string
}

func NewAuthenticator(ctx context.Context, users UserFinder, hasher PasswordHasher) (*Authenticator, error) {
	dummy, err := hasher.Hash(ctx, "gophtasks-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Authenticator{users: users, hasher: hasher, dummyHash: dummy}, nil
}

// Authenticate returns the user identified by identifier when password
// matches, and common.ErrInvalidCredentials for an unknown identity or a
// wrong password.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := a.users.GetByEmail(ctx, common.NormalizeEmail(identifier))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		a.hasher.Verify(ctx, password, a.dummyHash)
		return nil, common.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !a.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}
