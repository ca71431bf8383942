package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
)

// UserChanges is a self-service account update. Password is plaintext and
// gets hashed before it reaches the store.
type UserChanges struct {
	Email    *string
	Password *string
	IsActive *bool
}

// UserService handles accounts and sessions.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        auth.PasswordHasher
	authenticator *auth.Authenticator
	codec         *auth.TokenCodec
	now           func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	authenticator *auth.Authenticator, codec *auth.TokenCodec) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		hasher:        hasher,
		authenticator: authenticator,
		codec:         codec,
		now:           time.Now,
	}
}

// Register creates an active user. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = common.NormalizeEmail(email)
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, IsActive: true})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and mints an access token whose subject is
// the user's email.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	return token, nil
}

// TokenTTL is the lifetime of tokens minted by Login.
func (s *UserService) TokenTTL() time.Duration {
	return s.codec.TTL()
}

// Logout revokes the token described by claims and prunes revocations of
// tokens that have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return common.ErrorUnauthorized
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RevokedTokens(tx)
		revoked := models.RevokedToken{JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
		if err := repo.Create(ctx, revoked); err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}
		if _, err := repo.DeleteExpired(ctx, s.now()); err != nil {
			return fmt.Errorf("error pruning revoked tokens: %w", err)
		}
		return nil
	})
}

// Me returns the caller's current record.
func (s *UserService) Me(ctx context.Context, caller *models.User) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, caller.ID)
}

// Update changes the account id on behalf of caller. Missing accounts are
// reported before foreign ones. A new password is hashed before the
// transaction opens.
func (s *UserService) Update(ctx context.Context, caller *models.User, id int64, ch UserChanges) (*models.User, error) {
	var hash *string
	if ch.Password != nil {
		h, err := s.hasher.Hash(ctx, *ch.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		target, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeOwner(target, caller); err != nil {
			return err
		}

		var upd models.UserUpdate
		if ch.Email != nil {
			email := common.NormalizeEmail(*ch.Email)
			other, err := repo.GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != id:
				return common.ErrorAlreadyExists
			case err != nil && !errors.Is(err, common.ErrorNotFound):
				return fmt.Errorf("error checking email: %w", err)
			}
			upd.Email = &email
		}
		upd.PasswordHash = hash
		upd.IsActive = ch.IsActive

		updated, err = repo.Update(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account id and every task it owns.
func (s *UserService) Delete(ctx context.Context, caller *models.User, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		target, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeOwner(target, caller); err != nil {
			return err
		}
		if _, err := s.repomanager.Tasks(tx).DeleteByOwner(ctx, id); err != nil {
			return fmt.Errorf("error deleting tasks: %w", err)
		}
		return users.Delete(ctx, id)
	})
}
