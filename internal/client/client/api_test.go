package client

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophtasks/internal/server/rest"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

// newAPIHandler builds the real API on in-memory repositories.
func newAPIHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := memory.NewRepositoryManager()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost, 2)
	codec, err := auth.NewTokenCodec([]byte("client-test-secret"), time.Minute)
	require.NoError(t, err)
	authenticator, err := auth.NewAuthenticator(ctx, rm.Users(db), hasher)
	require.NoError(t, err)

	h, err := rest.NewHandler(rest.Deps{
		Users:    services.NewUserService(db, rm, hasher, authenticator, codec),
		Tasks:    services.NewTaskService(db, rm),
		Resolver: auth.NewSessionResolver(codec, rm.Users(db), rm.RevokedTokens(db)),
		Logger:   logging.Nop{},
	})
	require.NoError(t, err)
	return h
}
