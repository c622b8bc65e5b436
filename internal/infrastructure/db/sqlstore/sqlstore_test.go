package sqlstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(context.Background(), Config{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestConnect_UnsupportedDriver(t *testing.T) {
	if _, err := Connect(context.Background(), Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Email:        "a@x.com",
		PasswordHash: "hash",
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id to be assigned")
	}

	found, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != created.ID || found.Role != domain.RoleAdmin || found.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", found)
	}

	if _, err := repo.FindByEmail(ctx, "missing@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &domain.User{Email: "dup@x.com", PasswordHash: "h", Role: domain.RoleUser}
	if _, err := repo.Create(ctx, user); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.Create(ctx, user); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, &domain.User{Email: "case@x.com", PasswordHash: "h", Role: domain.RoleUser}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "Case@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("lookup must match exactly, got %v", err)
	}
	if _, err := repo.Create(ctx, &domain.User{Email: "Case@x.com", PasswordHash: "h", Role: domain.RoleUser}); err != nil {
		t.Fatalf("emails differing in case are distinct accounts: %v", err)
	}
}

func TestMySQLDSN_ForcesParseTime(t *testing.T) {
	cfg, err := mysqlDSN("app:secret@tcp(db:3306)/films?autocommit=true")
	if err != nil {
		t.Fatalf("mysqlDSN: %v", err)
	}
	if !cfg.ParseTime {
		t.Fatalf("parseTime should be forced on")
	}
	if cfg.User != "app" || cfg.Passwd != "secret" || cfg.Addr != "db:3306" || cfg.DBName != "films" {
		t.Fatalf("dsn fields not kept: %+v", cfg)
	}
	if cfg.Params["autocommit"] != "true" {
		t.Fatalf("extra params not kept: %v", cfg.Params)
	}

	if _, err := mysqlDSN("not a dsn"); err == nil {
		t.Fatalf("expected error for malformed dsn")
	}
}

func TestDialectMigrations(t *testing.T) {
	stmts := dialectMigrations("mysql")
	if len(stmts) != 1 || !strings.Contains(stmts[0], "COLLATE utf8mb4_bin") || !strings.Contains(stmts[0], "email") {
		t.Fatalf("mysql should pin a binary collation on email, got %v", stmts)
	}
	if stmts := dialectMigrations("sqlite"); len(stmts) != 0 {
		t.Fatalf("sqlite compares case-sensitively already, got %v", stmts)
	}
}

func TestFilmRepository_CRUD(t *testing.T) {
	repo := NewFilmRepository(newTestDB(t))
	ctx := context.Background()

	b := &domain.Film{Title: "B", ReleaseYear: intPtr(1980)}
	a := &domain.Film{Title: "A", Director: strPtr("Lucas")}
	for _, f := range []*domain.Film{b, a} {
		if err := repo.Create(ctx, f); err != nil {
			t.Fatalf("create: %v", err)
		}
		if f.ID == "" {
			t.Fatalf("expected id to be assigned")
		}
	}

	films, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(films) != 2 || films[0].Title != "A" || films[1].Title != "B" {
		t.Fatalf("expected films ordered by title, got %+v", films)
	}

	b.ReleaseYear = nil
	b.Producer = strPtr("Kurtz")
	if err := repo.Update(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ReleaseYear != nil || got.Producer == nil || *got.Producer != "Kurtz" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, b.ID); !errors.Is(err, domain.ErrFilmNotFound) {
		t.Fatalf("expected ErrFilmNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, b.ID); !errors.Is(err, domain.ErrFilmNotFound) {
		t.Fatalf("expected ErrFilmNotFound on second delete, got %v", err)
	}
}

func TestFilmRepository_InvalidIDsAreNotFound(t *testing.T) {
	repo := NewFilmRepository(newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"", "abc", "0", "-1", "507f1f77bcf86cd799439011"} {
		if _, err := repo.FindByID(ctx, id); !errors.Is(err, domain.ErrFilmNotFound) {
			t.Fatalf("FindByID(%q): expected ErrFilmNotFound, got %v", id, err)
		}
		if err := repo.Delete(ctx, id); !errors.Is(err, domain.ErrFilmNotFound) {
			t.Fatalf("Delete(%q): expected ErrFilmNotFound, got %v", id, err)
		}
	}
	if err := repo.Update(ctx, &domain.Film{ID: "999", Title: "x"}); !errors.Is(err, domain.ErrFilmNotFound) {
		t.Fatalf("Update missing: expected ErrFilmNotFound, got %v", err)
	}
}

func TestFilmRepository_ExternalIDUnique(t *testing.T) {
	repo := NewFilmRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.Film{Title: "Local 1"}); err != nil {
		t.Fatalf("create local: %v", err)
	}
	if err := repo.Create(ctx, &domain.Film{Title: "Local 2"}); err != nil {
		t.Fatalf("films without external id must coexist: %v", err)
	}
	if err := repo.Create(ctx, &domain.Film{Title: "Ext", ExternalID: strPtr("1")}); err != nil {
		t.Fatalf("create external: %v", err)
	}
	if err := repo.Create(ctx, &domain.Film{Title: "Ext again", ExternalID: strPtr("1")}); err == nil {
		t.Fatalf("expected duplicate external id to fail")
	}

	got, err := repo.FindByExternalID(ctx, "1")
	if err != nil {
		t.Fatalf("find by external id: %v", err)
	}
	if got.Title != "Ext" {
		t.Fatalf("unexpected film: %+v", got)
	}
}

func TestFilmRepository_TransactionRollsBack(t *testing.T) {
	repo := NewFilmRepository(newTestDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithinTransaction(ctx, func(ctx context.Context, tx ports.FilmRepository) error {
		if err := tx.Create(ctx, &domain.Film{Title: "Doomed", ExternalID: strPtr("9")}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	films, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(films) != 0 {
		t.Fatalf("expected rollback to leave no films, got %d", len(films))
	}

	err = repo.WithinTransaction(ctx, func(ctx context.Context, tx ports.FilmRepository) error {
		return tx.Create(ctx, &domain.Film{Title: "Kept"})
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if films, _ := repo.List(ctx); len(films) != 1 {
		t.Fatalf("expected committed film, got %d", len(films))
	}
}
