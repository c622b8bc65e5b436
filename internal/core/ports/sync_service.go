package ports

import (
	"context"
	"time"
)

// ExternalFilmRecord is a film as described by the upstream source.
type ExternalFilmRecord struct {
	ExternalID  string
	Title       string
	Description string
	Director    string
	Producer    string
	ReleaseDate string
}

// FilmSource reads the upstream film listing. Network failures wrap
// domain.ErrUpstreamUnavailable.
type FilmSource interface {
	FetchFilms(ctx context.Context) ([]ExternalFilmRecord, error)
}

// Locker provides a mutual-exclusion lease shared across processes.
type Locker interface {
	// Acquire returns domain.ErrSyncInProgress when the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// SyncResult summarises one reconciliation run.
type SyncResult struct {
	Added     int
	Updated   int
	Unchanged int
	Skipped   int
}

// SyncService imports upstream films into the catalog.
type SyncService interface {
	SyncFilms(ctx context.Context) (*SyncResult, error)
}
