// Package swapi reads the film listing of the public Star Wars API.
package swapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/film-catalog/internal/core/domain"
	"github.com/99minutos/film-catalog/internal/core/ports"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxPages = 20
	maxBodyBytes    = 4 << 20
)

// Config holds the upstream endpoint and paging limits.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	MaxPages int
}

// Client implements ports.FilmSource over HTTP.
type Client struct {
	baseURL  string
	maxPages int
	http     *http.Client
	logger   zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		maxPages: maxPages,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "swapi").Logger(),
	}
}

type filmsPage struct {
	Result []filmResult `json:"result"`
	Next   *string      `json:"next"`
}

type filmResult struct {
	UID         string         `json:"uid"`
	Description string         `json:"description"`
	Properties  filmProperties `json:"properties"`
}

type filmProperties struct {
	Title       string `json:"title"`
	Director    string `json:"director"`
	Producer    string `json:"producer"`
	ReleaseDate string `json:"release_date"`
}

// FetchFilms returns every film in the upstream listing, following next links
// until they run out or the page limit is reached.
func (c *Client) FetchFilms(ctx context.Context) ([]ports.ExternalFilmRecord, error) {
	var records []ports.ExternalFilmRecord

	url := c.baseURL + "/films"
	for page := 1; url != "" && page <= c.maxPages; page++ {
		p, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, r := range p.Result {
			records = append(records, ports.ExternalFilmRecord{
				ExternalID:  strings.TrimSpace(r.UID),
				Title:       r.Properties.Title,
				Description: r.Description,
				Director:    r.Properties.Director,
				Producer:    r.Properties.Producer,
				ReleaseDate: r.Properties.ReleaseDate,
			})
		}

		url = ""
		if p.Next != nil {
			url = *p.Next
		}
	}

	if url != "" {
		c.logger.Warn().Int("max_pages", c.maxPages).Msg("page limit reached, listing truncated")
	}
	c.logger.Debug().Int("films", len(records)).Msg("fetched upstream films")
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*filmsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build swapi request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: GET %s returned %d", domain.ErrUpstreamUnavailable, url, resp.StatusCode)
	}

	var p filmsPage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&p); err != nil {
		// A body cut short by the connection or a timeout is the upstream's
		// fault; only a complete but malformed body is ours to report.
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
		}
		return nil, fmt.Errorf("decode swapi films: %w", err)
	}
	return &p, nil
}
