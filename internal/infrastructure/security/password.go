package security

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// ErrPasswordTooLong is returned for passwords beyond bcrypt's 72-byte input limit.
var ErrPasswordTooLong = domain.NewValidationError("password must be at most 72 bytes")

// Runner executes fn, possibly on another goroutine, and returns once fn has
// completed or ctx is done. *queue.WorkerPool satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// BcryptHasher hashes passwords with bcrypt. Each hash embeds its cost and a
// random salt, so equal passwords never produce equal hashes.
type BcryptHasher struct {
	cost   int
	runner Runner
}

// NewBcryptHasher clamps cost into bcrypt's accepted range. runner may be nil,
// in which case hashing runs on the calling goroutine.
func NewBcryptHasher(cost int, runner Runner) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost, runner: runner}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	var (
		out []byte
		err error
	)
	if runErr := h.run(ctx, func() {
		out, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
	}); runErr != nil {
		return "", runErr
	}
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify reports whether password matches hash. Malformed hashes, mismatches
// and cancelled contexts all yield false.
func (h *BcryptHasher) Verify(ctx context.Context, password, hash string) bool {
	var err error
	if runErr := h.run(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	}); runErr != nil {
		return false
	}
	return err == nil
}

func (h *BcryptHasher) run(ctx context.Context, fn func()) error {
	if h.runner == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
		return nil
	}
	return h.runner.Do(ctx, fn)
}
