package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	resolver *SessionResolver
	codec    *TokenCodec
	clock    *fakeClock
	users    *fakeUsers
	revoked  *fakeRevoked
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	clock := &fakeClock{now: t0}
	codec := newCodec(t, clock)
	users := &fakeUsers{byEmail: map[string]*models.User{
		"alice@example.com": {ID: 1, Email: "alice@example.com", IsActive: true},
		"bob@example.com":   {ID: 2, Email: "bob@example.com", IsActive: false},
	}}
	revoked := &fakeRevoked{jtis: map[string]bool{}}
	return &resolverFixture{
		resolver: NewSessionResolver(codec, users, revoked),
		codec:    codec,
		clock:    clock,
		users:    users,
		revoked:  revoked,
	}
}

func TestResolve_Success(t *testing.T) {
	f := newResolverFixture(t)
	tok, err := f.codec.Issue("alice@example.com")
	require.NoError(t, err)

	u, claims, err := f.resolver.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.NotEmpty(t, claims.ID)
}

func TestResolve_Failures(t *testing.T) {
	f := newResolverFixture(t)

	expired, err := f.codec.IssueWithTTL("alice@example.com", time.Second)
	require.NoError(t, err)
	ghost, err := f.codec.Issue("ghost@example.com")
	require.NoError(t, err)
	inactive, err := f.codec.Issue("bob@example.com")
	require.NoError(t, err)
	revokedTok, err := f.codec.Issue("alice@example.com")
	require.NoError(t, err)
	claims, err := f.codec.Validate(revokedTok)
	require.NoError(t, err)
	f.revoked.jtis[claims.ID] = true

	f.clock.now = t0.Add(time.Minute)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "garbage", common.ErrorUnauthorized},
		{"expired", expired, common.ErrorUnauthorized},
		{"unknown subject", ghost, common.ErrorUnauthorized},
		{"revoked", revokedTok, common.ErrorUnauthorized},
		{"inactive", inactive, common.ErrInactiveAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _, err := f.resolver.Resolve(context.Background(), tt.token)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolve_StoreErrors(t *testing.T) {
	f := newResolverFixture(t)
	tok, err := f.codec.Issue("alice@example.com")
	require.NoError(t, err)

	f.revoked.err = errors.New("denylist down")
	_, _, err = f.resolver.Resolve(context.Background(), tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)

	f.revoked.err = nil
	f.users.err = errors.New("users down")
	_, _, err = f.resolver.Resolve(context.Background(), tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}
