package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/film-catalog/internal/api/middleware"
	"github.com/99minutos/film-catalog/internal/core/domain"
)

// actor identifies the authenticated caller for audit logging. Anonymous
// requests yield empty values.
func actor(c echo.Context) (userID string, role domain.Role) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return "", ""
	}
	return claims.Subject, claims.Role
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	return c.Validate(req)
}
