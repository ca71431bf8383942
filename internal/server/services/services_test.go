package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type fixture struct {
	db       *sql.DB
	rm       *memory.RepositoryManager
	codec    *auth.TokenCodec
	resolver *auth.SessionResolver
	users    *UserService
	tasks    *TaskService
}

// newFixture wires real services over the in-memory repositories. The
// SQLite handle only provides transaction boundaries.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := memory.NewRepositoryManager()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost, 2)
	codec, err := auth.NewTokenCodec([]byte("test-secret"), 30*time.Minute)
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator(ctx, rm.Users(db), hasher)
	require.NoError(t, err)

	return &fixture{
		db:       db,
		rm:       rm,
		codec:    codec,
		resolver: auth.NewSessionResolver(codec, rm.Users(db), rm.RevokedTokens(db)),
		users:    NewUserService(db, rm, hasher, authenticator, codec),
		tasks:    NewTaskService(db, rm),
	}
}

func (f *fixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), email, password)
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }
