package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/search"
)

// CatalogHandler serves the public, read-only catalog: search, filter
// options, featured movies and movie detail.
type CatalogHandler struct {
	Search  *search.Executor
	Options *search.Options
	Movies  *repository.MovieRepo
	Log     *zap.Logger
}

func NewCatalogHandler(ex *search.Executor, opts *search.Options, movies *repository.MovieRepo, log *zap.Logger) *CatalogHandler {
	if ex == nil || opts == nil || movies == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{Search: ex, Options: opts, Movies: movies, Log: log}
}

// SearchMovies always answers 200 with {movies, totalCount, hasMore}; a
// failed search is an empty page.
func (h *CatalogHandler) SearchMovies(c echo.Context) error {
	req := search.RequestFromQuery(c.QueryParams())
	return c.JSON(http.StatusOK, h.Search.Search(c.Request().Context(), req))
}

// Featured lists boosted movies for the home page.
func (h *CatalogHandler) Featured(c echo.Context) error {
	_, limit := pageParams(c, 12, 50)
	movies, err := h.Movies.Featured(c.Request().Context(), limit)
	if err != nil {
		h.Log.Error("featured movies failed", zap.Error(err))
		movies = []model.MovieSummary{}
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

func (h *CatalogHandler) GetMovie(c echo.Context) error {
	m, err := h.Movies.GetSummary(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	}
	if err != nil {
		h.Log.Error("get movie failed", zap.String("id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, m)
}

// Filters returns every option list in one response.
func (h *CatalogHandler) Filters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Options.All(c.Request().Context()))
}

func (h *CatalogHandler) Genres(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Options.Genres(c.Request().Context()))
}

func (h *CatalogHandler) Countries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Options.Countries(c.Request().Context()))
}

func (h *CatalogHandler) Keywords(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Options.Keywords(c.Request().Context()))
}

func (h *CatalogHandler) Directors(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Options.Directors(c.Request().Context()))
}

func (h *CatalogHandler) Years(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Options.Years(c.Request().Context()))
}
