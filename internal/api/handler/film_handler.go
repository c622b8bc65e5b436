package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

type FilmHandler struct {
	films  ports.FilmService
	logger zerolog.Logger
}

func NewFilmHandler(films ports.FilmService, logger zerolog.Logger) *FilmHandler {
	return &FilmHandler{
		films:  films,
		logger: logger.With().Str("component", "film_handler").Logger(),
	}
}

// filmRequest is the body of create and update calls. Absent optional fields
// are stored as null.
type filmRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	ReleaseYear *int    `json:"releaseYear" validate:"omitempty,gte=1800,lte=3000"`
	Director    *string `json:"director" validate:"omitempty,max=255"`
	Producer    *string `json:"producer" validate:"omitempty,max=255"`
}

func (r filmRequest) toInput() ports.FilmInput {
	return ports.FilmInput{
		Title:       r.Title,
		Description: r.Description,
		ReleaseYear: r.ReleaseYear,
		Director:    r.Director,
		Producer:    r.Producer,
	}
}

type filmResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ReleaseYear *int    `json:"releaseYear"`
	Director    *string `json:"director"`
	Producer    *string `json:"producer"`
	ExternalID  *string `json:"externalId"`
}

func toFilmResponse(f *domain.Film) filmResponse {
	return filmResponse{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		ReleaseYear: f.ReleaseYear,
		Director:    f.Director,
		Producer:    f.Producer,
		ExternalID:  f.ExternalID,
	}
}

// List handles GET /api/movies.
func (h *FilmHandler) List(c echo.Context) error {
	films, err := h.films.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]filmResponse, 0, len(films))
	for _, f := range films {
		resp = append(resp, toFilmResponse(f))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/movies/:id.
func (h *FilmHandler) Get(c echo.Context) error {
	film, err := h.films.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFilmResponse(film))
}

// Create handles POST /api/movies.
func (h *FilmHandler) Create(c echo.Context) error {
	var req filmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	film, err := h.films.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}

	userID, _ := actor(c)
	h.logger.Info().Str("film_id", film.ID).Str("user_id", userID).Msg("film created")

	location := strings.TrimRight(c.Request().URL.Path, "/") + "/" + url.PathEscape(film.ID)
	c.Response().Header().Set(echo.HeaderLocation, location)
	return c.JSON(http.StatusCreated, toFilmResponse(film))
}

// Update handles PUT /api/movies/:id.
func (h *FilmHandler) Update(c echo.Context) error {
	var req filmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	film, err := h.films.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFilmResponse(film))
}

// Delete handles DELETE /api/movies/:id.
func (h *FilmHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.films.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	userID, _ := actor(c)
	h.logger.Info().Str("film_id", id).Str("user_id", userID).Msg("film deleted")

	return c.NoContent(http.StatusNoContent)
}
