package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

type FilmService struct {
	repo   ports.FilmRepository
	logger zerolog.Logger
}

func NewFilmService(repo ports.FilmRepository, logger zerolog.Logger) *FilmService {
	return &FilmService{repo: repo, logger: logger.With().Str("component", "films").Logger()}
}

func (s *FilmService) List(ctx context.Context) ([]*domain.Film, error) {
	films, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return films, nil
}

func (s *FilmService) Get(ctx context.Context, id string) (*domain.Film, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a locally curated film. Such films never carry an external ID.
func (s *FilmService) Create(ctx context.Context, input ports.FilmInput) (*domain.Film, error) {
	film := &domain.Film{}
	film.Overwrite(filmFromInput(input))

	if err := s.repo.Create(ctx, film); err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create film")
		return nil, fmt.Errorf("create film: %w", err)
	}

	s.logger.Info().Str("film_id", film.ID).Str("title", film.Title).Msg("film created")
	return film, nil
}

// Update replaces the editable fields of an existing film.
func (s *FilmService) Update(ctx context.Context, id string, input ports.FilmInput) (*domain.Film, error) {
	film, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !film.Overwrite(filmFromInput(input)) {
		return film, nil
	}
	if err := s.repo.Update(ctx, film); err != nil {
		return nil, fmt.Errorf("update film %s: %w", id, err)
	}

	s.logger.Info().Str("film_id", film.ID).Msg("film updated")
	return film, nil
}

func (s *FilmService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("film_id", id).Msg("film deleted")
	return nil
}

func filmFromInput(in ports.FilmInput) domain.Film {
	return domain.Film{
		Title:       in.Title,
		Description: in.Description,
		ReleaseYear: in.ReleaseYear,
		Director:    in.Director,
		Producer:    in.Producer,
	}
}
