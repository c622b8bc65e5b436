package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/domain"
)

// headerError carries a short, human-readable failure label on every error
// response.
const headerError = "X-Error"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Type    domain.ErrorKind `json:"type"`
	Message string           `json:"message"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindUnauthorized:    http.StatusUnauthorized,
	domain.KindForbidden:       http.StatusForbidden,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindConflict:        http.StatusConflict,
	domain.KindExternalService: http.StatusBadGateway,
	domain.KindServerError:     http.StatusInternalServerError,
}

var kindLabel = map[domain.ErrorKind]string{
	domain.KindValidation:      "Validation failed",
	domain.KindUnauthorized:    "Unauthorized",
	domain.KindForbidden:       "Forbidden",
	domain.KindNotFound:        "Not Found",
	domain.KindConflict:        "Conflict",
	domain.KindExternalService: "External service error",
	domain.KindServerError:     "Unexpected error",
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"type": "<kind>", "message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, kind, msg := resolveError(err, log, c)
		c.Response().Header().Set(headerError, kindLabel[kind])

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Type: kind, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, domain.ErrorKind, string) {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind == domain.KindExternalService {
			log.Warn().Err(err).Str("path", c.Path()).Msg("upstream failure")
		}
		return kindStatus[de.Kind], de.Kind, de.Message
	}

	// Echo's own errors (bind failures, 404/405 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if kind, ok := kindForStatus(he.Code); ok {
			return he.Code, kind, fmt.Sprintf("%v", he.Message)
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, domain.KindServerError, "Unexpected error"
}

func kindForStatus(code int) (domain.ErrorKind, bool) {
	switch {
	case code == http.StatusUnauthorized:
		return domain.KindUnauthorized, true
	case code == http.StatusForbidden:
		return domain.KindForbidden, true
	case code == http.StatusNotFound:
		return domain.KindNotFound, true
	case code == http.StatusConflict:
		return domain.KindConflict, true
	case code >= 400 && code < 500:
		return domain.KindValidation, true
	default:
		return "", false
	}
}
