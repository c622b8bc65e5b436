package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/ports"
)

type AdminHandler struct {
	sync   ports.SyncService
	logger zerolog.Logger
}

func NewAdminHandler(sync ports.SyncService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		sync:   sync,
		logger: logger.With().Str("component", "admin_handler").Logger(),
	}
}

type syncResponse struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// SyncFilms handles POST /api/admin/sync-films.
func (h *AdminHandler) SyncFilms(c echo.Context) error {
	userID, _ := actor(c)
	h.logger.Info().Str("user_id", userID).Msg("film sync requested")

	res, err := h.sync.SyncFilms(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, syncResponse{
		Added:     res.Added,
		Updated:   res.Updated,
		Unchanged: res.Unchanged,
		Skipped:   res.Skipped,
	})
}
