package auth

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// maxPasswordLen is bcrypt's input limit.
const maxPasswordLen = 72

// ErrInvalidPassword is returned by Hash for empty or over-long input.
var ErrInvalidPassword = fmt.Errorf("%w: password must be 1 to %d bytes", common.ErrorValidation, maxPasswordLen)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) bool
}

// BcryptHasher is a PasswordHasher on bcrypt. At most n hashes run at once;
// callers beyond that wait on a semaphore.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher returns a hasher with the given cost and concurrency.
// Zero values select bcrypt.DefaultCost and runtime.NumCPU().
func NewBcryptHasher(cost, concurrency int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency))}
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" || len(plaintext) > maxPasswordLen {
		return "", ErrInvalidPassword
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. A malformed hash, input
// longer than bcrypt reads or a cancelled context yields false.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	if len(plaintext) > maxPasswordLen {
		return false
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
