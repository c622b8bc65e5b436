package ports

import (
	"context"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// FilmRepository defines persistence operations for films.
type FilmRepository interface {
	// List returns all films ordered by title.
	List(ctx context.Context) ([]*domain.Film, error)
	FindByID(ctx context.Context, id string) (*domain.Film, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Film, error)
	// Create inserts film and sets its ID.
	Create(ctx context.Context, film *domain.Film) error
	Update(ctx context.Context, film *domain.Film) error
	Delete(ctx context.Context, id string) error

	// WithinTransaction runs fn against a repository bound to one store
	// transaction. The transaction commits only if fn returns nil. fn may be
	// invoked more than once when the store retries a transient conflict.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx FilmRepository) error) error
}
