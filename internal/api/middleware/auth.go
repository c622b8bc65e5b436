package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

// Context keys set by Authenticate.
const (
	ContextKeyClaims = "claims"
	ContextKeyRole   = "role"
)

// Authenticate validates the bearer token and injects its claims into context.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return domain.ErrTokenMalformed
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyRole, claims.Role)

			return next(c)
		}
	}
}

// ClaimsFrom returns the claims injected by Authenticate, if any.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*domain.Claims)
	return claims, ok && claims != nil
}
