// Package sqlstore implements the repositories on a relational database
// through gorm. SQLite and MySQL are supported.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultTimeout = 10 * time.Second

// Config selects the gorm dialect and its data source.
type Config struct {
	Driver string
	DSN    string
}

// Connect opens the database and migrates the schema.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dsnCfg, err := mysqlDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.New(mysql.Config{DSN: dsnCfg.FormatDSN(), DSNConfig: dsnCfg})
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore open: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; serialising connections avoids SQLITE_BUSY
		// and keeps ":memory:" databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// mysqlDSN parses raw and forces parseTime so DATETIME columns scan into
// time.Time. Every other setting in raw is kept.
func mysqlDSN(raw string) (*mysqldrv.Config, error) {
	dsnCfg, err := mysqldrv.ParseDSN(raw)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: parse mysql dsn: %w", err)
	}
	dsnCfg.ParseTime = true
	return dsnCfg, nil
}

// Migrate creates or alters the users and films tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&userModel{}, &filmModel{}); err != nil {
		return fmt.Errorf("sqlstore migrate: %w", err)
	}
	for _, stmt := range dialectMigrations(db.Dialector.Name()) {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("sqlstore migrate: %w", err)
		}
	}
	return nil
}

// dialectMigrations returns the statements AutoMigrate cannot express for a
// dialect. MySQL's default collation folds case, which would make the unique
// email index and the email lookup case-insensitive; emails match exactly.
func dialectMigrations(dialect string) []string {
	switch dialect {
	case "mysql":
		return []string{
			"ALTER TABLE users MODIFY email VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL",
		}
	default:
		return nil
	}
}

// Ping reports whether the database answers. Used by the readiness probe.
func Ping(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
