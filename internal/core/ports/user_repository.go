package ports

import (
	"context"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// UserRepository persists user credentials.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has exactly this email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts the user and returns it with its store-assigned ID.
	// A uniqueness violation on email is reported as domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
