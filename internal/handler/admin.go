package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/queue"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
)

// CacheInvalidator drops every cached search page.
type CacheInvalidator interface {
	InvalidateMovies(ctx context.Context) error
}

// AdminHandler manages movies and reports statistics. Every movie mutation
// invalidates the search cache and publishes a change event.
type AdminHandler struct {
	Movies *repository.MovieRepo
	Stats  *repository.StatsRepo
	Cache  CacheInvalidator
	Events queue.Publisher
	// Source names this instance in published events.
	Source string
	Log    *zap.Logger
}

func NewAdminHandler(movies *repository.MovieRepo, stats *repository.StatsRepo, cache CacheInvalidator, events queue.Publisher, source string, log *zap.Logger) *AdminHandler {
	if movies == nil || stats == nil || cache == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{Movies: movies, Stats: stats, Cache: cache, Events: events, Source: source, Log: log}
}

// movieRequest is the admin payload for create and update. Facet
// associations are given as complete id sets.
type movieRequest struct {
	Title         string           `json:"title"`
	OriginalTitle *string          `json:"original_title"`
	Description   *string          `json:"description"`
	ReleaseDate   *string          `json:"release_date"`
	Language      *string          `json:"language"`
	Runtime       *int             `json:"runtime"`
	ImageURL      *string          `json:"image_url"`
	Type          *model.MovieType `json:"type"`
	Boost         bool             `json:"boost"`
	// KeepImage preserves the stored image on update when no new image is
	// uploaded.
	KeepImage   bool     `json:"keep_image"`
	GenreIDs    []string `json:"genre_ids"`
	DirectorIDs []string `json:"director_ids"`
	CountryIDs  []int64  `json:"country_ids"`
	KeywordIDs  []int64  `json:"keyword_ids"`
}

func (r movieRequest) movie() *model.Movie {
	m := &model.Movie{
		Title:         r.Title,
		OriginalTitle: trimmed(r.OriginalTitle),
		Description:   trimmed(r.Description),
		ReleaseDate:   trimmed(r.ReleaseDate),
		Language:      trimmed(r.Language),
		Runtime:       r.Runtime,
		ImageURL:      trimmed(r.ImageURL),
		Boost:         r.Boost,
	}
	if r.Type != nil && strings.TrimSpace(string(*r.Type)) != "" {
		t := model.MovieType(strings.TrimSpace(string(*r.Type)))
		m.Type = &t
	}
	return m
}

func (r movieRequest) associations() model.Associations {
	return model.Associations{
		GenreIDs:    r.GenreIDs,
		DirectorIDs: r.DirectorIDs,
		CountryIDs:  r.CountryIDs,
		KeywordIDs:  r.KeywordIDs,
	}
}

func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req movieRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid request body")
	}
	m := req.movie()
	if err := h.Movies.Create(c.Request().Context(), m, req.associations()); err != nil {
		return mutationError(c, h.Log, err)
	}
	h.changed(c.Request().Context(), m.ID, m.Title, queue.ActionCreated)
	return success(c, http.StatusCreated, "movie", m)
}

func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	var req movieRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid request body")
	}
	m := req.movie()
	m.ID = c.Param("id")
	if err := h.Movies.Update(c.Request().Context(), m, req.associations(), req.KeepImage); err != nil {
		return mutationError(c, h.Log, err)
	}
	h.changed(c.Request().Context(), m.ID, m.Title, queue.ActionUpdated)
	return success(c, http.StatusOK, "movie", m)
}

// ReplaceFacets swaps every facet association set of a movie without
// touching the movie row.
// ReplaceFacets swaps every facet association of a movie. An unknown movie is
// reported before the body is looked at.
func (h *AdminHandler) ReplaceFacets(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	ok, err := h.Movies.Exists(ctx, id)
	if err != nil {
		return mutationError(c, h.Log, err)
	}
	if !ok {
		return failure(c, http.StatusNotFound, "movie not found")
	}
	var a model.Associations
	if err := c.Bind(&a); err != nil {
		return failure(c, http.StatusBadRequest, "invalid request body")
	}
	if err := h.Movies.ReplaceAssociations(ctx, id, a); err != nil {
		return mutationError(c, h.Log, err)
	}
	h.changed(ctx, id, "", queue.ActionUpdated)
	return success(c, http.StatusOK, "", nil)
}

func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id := c.Param("id")
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return mutationError(c, h.Log, err)
	}
	h.changed(c.Request().Context(), id, "", queue.ActionDeleted)
	return success(c, http.StatusOK, "", nil)
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	st, err := h.Stats.Stats(c.Request().Context(), 10)
	if err != nil {
		h.Log.Error("stats failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, st)
}

// changed invalidates the local search cache and tells other instances.
// Neither failure undoes the committed mutation.
func (h *AdminHandler) changed(ctx context.Context, id, title, action string) {
	if err := h.Cache.InvalidateMovies(ctx); err != nil {
		h.Log.Error("search cache invalidation failed", zap.String("movie_id", id), zap.Error(err))
	}
	ev := queue.NewMovieChanged(id, title, action, h.Source)
	if err := h.Events.PublishMovieChanged(ctx, ev); err != nil {
		h.Log.Warn("movie change event not published", zap.String("movie_id", id), zap.Error(err))
	}
}
