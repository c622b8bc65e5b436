package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Store  StoreConfig
	Mongo  MongoConfig
	SQL    SQLConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Auth   AuthConfig
	APIKey APIKeyConfig
	SWAPI  SWAPIConfig
	Sync   SyncConfig
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=film_catalog"`
}

type SQLConfig struct {
	DSN string `env:"SQL_DSN, default=film_catalog.db"`
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=true"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET"`
	Issuer   string        `env:"JWT_ISSUER,   default=film-catalog"`
	Audience string        `env:"JWT_AUDIENCE, default=film-catalog-clients"`
	TTL      time.Duration `env:"JWT_TTL,      default=60m"`
}

type AuthConfig struct {
	BcryptCost       int  `env:"AUTH_BCRYPT_COST,        default=10"`
	AllowAdminSignup bool `env:"AUTH_ALLOW_ADMIN_SIGNUP, default=true"`
	HashWorkers      int  `env:"AUTH_HASH_WORKERS,       default=4"`
}

// APIKeyConfig configures the optional shared-secret gate. An empty Key
// disables the gate.
type APIKeyConfig struct {
	Key    string `env:"API_KEY"`
	Header string `env:"API_KEY_HEADER, default=ApiKey"`
	Realm  string `env:"API_KEY_REALM,  default=StarWars"`
}

type SWAPIConfig struct {
	BaseURL  string        `env:"SWAPI_BASE_URL,  default=https://www.swapi.tech/api"`
	Timeout  time.Duration `env:"SWAPI_TIMEOUT,   default=15s"`
	MaxPages int           `env:"SWAPI_MAX_PAGES, default=20"`
}

type SyncConfig struct {
	LockTTL time.Duration `env:"SYNC_LOCK_TTL, default=2m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from an arbitrary lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs in a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Validate rejects configurations the process must not start with.
func (c *Config) Validate() error {
	var errs []error

	if c.IsProduction() && strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	switch c.Store.Driver {
	case DriverMongo:
	case DriverSQLite, DriverMySQL:
		if strings.TrimSpace(c.SQL.DSN) == "" {
			errs = append(errs, fmt.Errorf("SQL_DSN is required for STORE_DRIVER=%s", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Auth.HashWorkers < 0 {
		errs = append(errs, errors.New("AUTH_HASH_WORKERS must not be negative"))
	}
	if c.SWAPI.BaseURL == "" {
		errs = append(errs, errors.New("SWAPI_BASE_URL is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
