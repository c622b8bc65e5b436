package ports

import (
	"context"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// AuthResult is returned by both signup and login.
type AuthResult struct {
	Token string
	Email string
	Role  domain.Role
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, role string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// PasswordHasher produces and checks one-way salted password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Verify reports whether password matches hash. It never fails loudly:
	// malformed hashes and cancelled contexts yield false.
	Verify(ctx context.Context, password, hash string) bool
}

// TokenIssuer mints signed bearer tokens for users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier validates bearer tokens. Failures are one of
// domain.ErrTokenExpired, ErrTokenMalformed, ErrTokenWrongAudience or
// ErrTokenWrongIssuer.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
