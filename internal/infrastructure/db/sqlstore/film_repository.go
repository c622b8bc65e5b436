package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

type FilmRepository struct{ db *gorm.DB }

func NewFilmRepository(db *gorm.DB) *FilmRepository { return &FilmRepository{db: db} }

func (r *FilmRepository) List(ctx context.Context) ([]*domain.Film, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []filmModel
	if err := r.db.WithContext(ctx).Order("title ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}

	films := make([]*domain.Film, 0, len(rows))
	for i := range rows {
		films = append(films, rows[i].toDomain())
	}
	return films, nil
}

func (r *FilmRepository) FindByID(ctx context.Context, id string) (*domain.Film, error) {
	pk, ok := parseID(id)
	if !ok {
		return nil, domain.ErrFilmNotFound
	}
	return r.first(ctx, "id = ?", pk)
}

func (r *FilmRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Film, error) {
	return r.first(ctx, "external_id = ?", externalID)
}

func (r *FilmRepository) first(ctx context.Context, query string, arg any) (*domain.Film, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m filmModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFilmNotFound
		}
		return nil, fmt.Errorf("find film: %w", err)
	}
	return m.toDomain(), nil
}

func (r *FilmRepository) Create(ctx context.Context, film *domain.Film) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := toFilmModel(film)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("insert film: %w", err)
	}
	film.ID = m.toDomain().ID
	return nil
}

// Update writes every descriptive column, including ones being cleared to NULL.
func (r *FilmRepository) Update(ctx context.Context, film *domain.Film) error {
	pk, ok := parseID(film.ID)
	if !ok {
		return domain.ErrFilmNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&filmModel{}).
		Where("id = ?", pk).
		Select("title", "description", "release_year", "director", "producer").
		Updates(toFilmModel(film))
	if res.Error != nil {
		return fmt.Errorf("update film: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when nothing changed.
		if _, err := r.first(ctx, "id = ?", pk); err != nil {
			return err
		}
	}
	return nil
}

func (r *FilmRepository) Delete(ctx context.Context, id string) error {
	pk, ok := parseID(id)
	if !ok {
		return domain.ErrFilmNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&filmModel{}, pk)
	if res.Error != nil {
		return fmt.Errorf("delete film: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrFilmNotFound
	}
	return nil
}

func (r *FilmRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.FilmRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &FilmRepository{db: tx})
	})
}
