package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/api"
	"github.com/99minutos/film-catalog/internal/api/middleware"
	"github.com/99minutos/film-catalog/internal/core/ports"
	"github.com/99minutos/film-catalog/internal/core/service"
	mongostore "github.com/99minutos/film-catalog/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/film-catalog/internal/infrastructure/db/redis"
	"github.com/99minutos/film-catalog/internal/infrastructure/db/sqlstore"
	"github.com/99minutos/film-catalog/internal/infrastructure/http/handlers"
	"github.com/99minutos/film-catalog/internal/infrastructure/queue"
	"github.com/99minutos/film-catalog/internal/infrastructure/security"
	"github.com/99minutos/film-catalog/internal/infrastructure/swapi"
	"github.com/99minutos/film-catalog/internal/pkg/config"
	"github.com/99minutos/film-catalog/pkg/logger"
)

const (
	serviceName     = "film-catalog"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == config.EnvDevelopment,
		Service: serviceName,
		Env:     cfg.Env,
	})

	secret := []byte(cfg.JWT.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate signing key: %w", err)
		}
		log.Warn().Msg("JWT_SECRET not set; using an ephemeral signing key, tokens will not survive a restart")
	}

	tokens, err := security.NewJWTIssuer(security.TokenConfig{
		Secret:   secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		return err
	}

	checks := make(map[string]handlers.Check)

	// --- Store ---
	users, films, closeStore, err := openStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	// --- Sync lock ---
	var locker ports.Locker
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = redisstore.NewLocker(rdb)
		checks["redis"] = redisstore.Ping(rdb)
	} else {
		log.Warn().Msg("redis disabled; concurrent film syncs are not excluded")
	}

	// --- Password hashing ---
	var runner security.Runner
	if cfg.Auth.HashWorkers > 0 {
		// The pool outlives ctx: requests still in flight during shutdown
		// need their hashes. It is stopped once serve has returned.
		pool := queue.NewWorkerPool(cfg.Auth.HashWorkers, log)
		pool.Start()
		defer pool.Stop()
		runner = pool
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost, runner)

	// --- Services ---
	authService, err := service.NewAuthService(ctx, users, hasher, tokens, service.AuthOptions{
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
	}, log)
	if err != nil {
		return err
	}
	filmService := service.NewFilmService(films, log)
	source := swapi.NewClient(swapi.Config{
		BaseURL:  cfg.SWAPI.BaseURL,
		Timeout:  cfg.SWAPI.Timeout,
		MaxPages: cfg.SWAPI.MaxPages,
	}, log)
	syncService := service.NewSyncService(source, films, locker, cfg.Sync.LockTTL, log)

	e := api.NewRouter(api.Dependencies{
		Auth:   authService,
		Films:  filmService,
		Sync:   syncService,
		Tokens: tokens,
		APIKey: middleware.APIKeyConfig{
			Key:    cfg.APIKey.Key,
			Header: cfg.APIKey.Header,
			Realm:  cfg.APIKey.Realm,
		},
		HealthChecks: checks,
		Logger:       log,
	})

	return serve(ctx, e, ":"+cfg.Port, log)
}

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config, checks map[string]handlers.Check) (ports.UserRepository, ports.FilmRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite, config.DriverMySQL:
		db, err := sqlstore.Connect(ctx, sqlstore.Config{Driver: cfg.Store.Driver, DSN: cfg.SQL.DSN})
		if err != nil {
			return nil, nil, nil, err
		}
		checks["sql"] = sqlstore.Ping(db)
		return sqlstore.NewUserRepository(db), sqlstore.NewFilmRepository(db), func() { _ = sqlstore.Close(db) }, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

		users := mongostore.NewUserRepository(db)
		films := mongostore.NewFilmRepository(client, db)
		if err := users.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, fmt.Errorf("user indexes: %w", err)
		}
		if err := films.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, fmt.Errorf("film indexes: %w", err)
		}

		checks["mongodb"] = mongostore.Ping(client)
		return users, films, closeFn, nil
	}
}

func serve(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
