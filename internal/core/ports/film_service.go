package ports

import (
	"context"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// FilmInput carries the editable attributes of a film.
type FilmInput struct {
	Title       string
	Description *string
	ReleaseYear *int
	Director    *string
	Producer    *string
}

// FilmService defines use-case operations for the catalog.
type FilmService interface {
	List(ctx context.Context) ([]*domain.Film, error)
	Get(ctx context.Context, id string) (*domain.Film, error)
	Create(ctx context.Context, input FilmInput) (*domain.Film, error)
	Update(ctx context.Context, id string, input FilmInput) (*domain.Film, error)
	Delete(ctx context.Context, id string) error
}
