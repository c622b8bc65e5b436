package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

// memFilmRepo is an in-memory ports.FilmRepository whose transactions work on
// a copy that is swapped in only on success.
type memFilmRepo struct {
	mu     sync.Mutex
	films  map[string]domain.Film
	nextID int

	writes      int
	failCreates int // fail the Nth Create (1-based) when > 0
	creates     int
}

func newMemFilmRepo() *memFilmRepo {
	return &memFilmRepo{films: make(map[string]domain.Film)}
}

func cloneFilm(f domain.Film) *domain.Film { return &f }

func (r *memFilmRepo) List(_ context.Context) ([]*domain.Film, error) {
	out := make([]*domain.Film, 0, len(r.films))
	for _, f := range r.films {
		out = append(out, cloneFilm(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *memFilmRepo) FindByID(_ context.Context, id string) (*domain.Film, error) {
	f, ok := r.films[id]
	if !ok {
		return nil, domain.ErrFilmNotFound
	}
	return cloneFilm(f), nil
}

func (r *memFilmRepo) FindByExternalID(_ context.Context, externalID string) (*domain.Film, error) {
	for _, f := range r.films {
		if f.ExternalID != nil && *f.ExternalID == externalID {
			return cloneFilm(f), nil
		}
	}
	return nil, domain.ErrFilmNotFound
}

func (r *memFilmRepo) Create(_ context.Context, film *domain.Film) error {
	r.creates++
	if r.failCreates > 0 && r.creates == r.failCreates {
		return errors.New("disk full")
	}
	r.nextID++
	film.ID = strconv.Itoa(r.nextID)
	r.films[film.ID] = *film
	r.writes++
	return nil
}

func (r *memFilmRepo) Update(_ context.Context, film *domain.Film) error {
	if _, ok := r.films[film.ID]; !ok {
		return domain.ErrFilmNotFound
	}
	r.films[film.ID] = *film
	r.writes++
	return nil
}

func (r *memFilmRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.films[id]; !ok {
		return domain.ErrFilmNotFound
	}
	delete(r.films, id)
	r.writes++
	return nil
}

func (r *memFilmRepo) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.FilmRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memFilmRepo{
		films:       make(map[string]domain.Film, len(r.films)),
		nextID:      r.nextID,
		failCreates: r.failCreates,
		creates:     r.creates,
	}
	for id, f := range r.films {
		tx.films[id] = f
	}

	if err := fn(ctx, tx); err != nil {
		r.creates = tx.creates
		return err
	}

	r.films = tx.films
	r.nextID = tx.nextID
	r.creates = tx.creates
	r.writes += tx.writes
	return nil
}
