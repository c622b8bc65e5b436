package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

var (
	errMissingAPIKey = &domain.Error{Kind: domain.KindUnauthorized, Message: "Missing API Key"}
	errInvalidAPIKey = &domain.Error{Kind: domain.KindUnauthorized, Message: "Invalid API Key"}
)

// defaultAPIKeyBypass lists path prefixes that never require the key.
// /metrics is not listed and requires the key.
var defaultAPIKeyBypass = []string{"/health", "/swagger"}

// APIKeyConfig configures the shared-secret header gate.
type APIKeyConfig struct {
	// Key is the expected value. An empty key disables the gate.
	Key    string
	Header string
	Realm  string
	// BypassPrefixes defaults to /health and /swagger. A prefix matches
	// itself and anything below it, never a longer sibling segment.
	BypassPrefixes []string
}

// APIKey rejects requests that do not carry the configured key in the
// configured header.
func APIKey(cfg APIKeyConfig) echo.MiddlewareFunc {
	if cfg.Header == "" {
		cfg.Header = "ApiKey"
	}
	if cfg.BypassPrefixes == nil {
		cfg.BypassPrefixes = defaultAPIKeyBypass
	}
	expected := []byte(cfg.Key)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if strings.TrimSpace(cfg.Key) == "" {
			return next
		}

		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range cfg.BypassPrefixes {
				if underPrefix(path, prefix) {
					return next(c)
				}
			}

			provided := c.Request().Header.Get(cfg.Header)
			if provided == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, fmt.Sprintf(`ApiKey realm="%s"`, cfg.Realm))
				return errMissingAPIKey
			}
			if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, fmt.Sprintf(`ApiKey realm="%s" error="invalid_api_key"`, cfg.Realm))
				return errInvalidAPIKey
			}
			return next(c)
		}
	}
}

// underPrefix reports whether path is prefix or a path below it.
func underPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
