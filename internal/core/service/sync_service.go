package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
	"github.com/99minutos/film-catalog/internal/pkg/metrics"
)

const (
	syncLockKey        = "lock:sync-films"
	defaultSyncLockTTL = 2 * time.Minute
)

type syncService struct {
	source  ports.FilmSource
	films   ports.FilmRepository
	lock    ports.Locker
	lockTTL time.Duration
	log     zerolog.Logger
}

// NewSyncService returns the film reconciler. lock may be nil, in which case
// concurrent runs are not excluded.
func NewSyncService(
	source ports.FilmSource,
	films ports.FilmRepository,
	lock ports.Locker,
	lockTTL time.Duration,
	log zerolog.Logger,
) ports.SyncService {
	if lockTTL <= 0 {
		lockTTL = defaultSyncLockTTL
	}
	return &syncService{
		source:  source,
		films:   films,
		lock:    lock,
		lockTTL: lockTTL,
		log:     log.With().Str("component", "sync").Logger(),
	}
}

// SyncFilms fetches the upstream listing and upserts every record by external
// ID inside a single transaction.
func (s *syncService) SyncFilms(ctx context.Context) (*ports.SyncResult, error) {
	start := time.Now()
	log := s.log.With().Str("sync_id", uuid.NewString()).Logger()

	res, err := s.run(ctx, log)

	metrics.SyncRunsTotal.WithLabelValues(syncOutcome(err)).Inc()
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn().Err(err).Msg("film sync failed")
		return nil, err
	}

	metrics.SyncFilmsTotal.WithLabelValues("added").Add(float64(res.Added))
	metrics.SyncFilmsTotal.WithLabelValues("updated").Add(float64(res.Updated))
	metrics.SyncFilmsTotal.WithLabelValues("unchanged").Add(float64(res.Unchanged))

	log.Info().
		Int("added", res.Added).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Int("skipped", res.Skipped).
		Dur("took", time.Since(start)).
		Msg("film sync completed")

	return res, nil
}

func (s *syncService) run(ctx context.Context, log zerolog.Logger) (*ports.SyncResult, error) {
	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, syncLockKey, s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("failed to release sync lock")
			}
		}()
	}

	// 1. Fetch everything before touching the store.
	records, err := s.source.FetchFilms(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync films: %w", err)
	}
	log.Debug().Int("records", len(records)).Msg("upstream films fetched")

	// 2. Reconcile in one transaction. Counters are rebuilt on every attempt.
	var res ports.SyncResult
	err = s.films.WithinTransaction(ctx, func(ctx context.Context, tx ports.FilmRepository) error {
		res = ports.SyncResult{}
		for _, rec := range records {
			if rec.ExternalID == "" {
				log.Warn().Str("title", rec.Title).Msg("upstream film without id skipped")
				res.Skipped++
				continue
			}
			if err := reconcile(ctx, tx, rec, &res); err != nil {
				return fmt.Errorf("reconcile film %s: %w", rec.ExternalID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sync films: %w", err)
	}

	return &res, nil
}

func reconcile(ctx context.Context, tx ports.FilmRepository, rec ports.ExternalFilmRecord, res *ports.SyncResult) error {
	incoming := filmFromRecord(rec)

	existing, err := tx.FindByExternalID(ctx, rec.ExternalID)
	switch {
	case errors.Is(err, domain.ErrFilmNotFound):
		if err := tx.Create(ctx, &incoming); err != nil {
			return err
		}
		res.Added++
		return nil
	case err != nil:
		return err
	}

	if !existing.Overwrite(incoming) {
		res.Unchanged++
		return nil
	}
	if err := tx.Update(ctx, existing); err != nil {
		return err
	}
	res.Updated++
	return nil
}

func filmFromRecord(rec ports.ExternalFilmRecord) domain.Film {
	externalID := rec.ExternalID
	description := rec.Description
	director := rec.Director
	producer := rec.Producer
	return domain.Film{
		Title:       rec.Title,
		Description: &description,
		ReleaseYear: parseReleaseYear(rec.ReleaseDate),
		Director:    &director,
		Producer:    &producer,
		ExternalID:  &externalID,
	}
}

// parseReleaseYear takes the text before the first '-' ("1977-05-25" → 1977).
// Anything unparsable yields nil.
func parseReleaseYear(date string) *int {
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return nil
	}
	return &year
}

func syncOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, domain.ErrSyncInProgress):
		return "in_progress"
	default:
		return "error"
	}
}
