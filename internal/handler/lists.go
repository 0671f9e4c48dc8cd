package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
)

// ListHandler exposes user lists and admin collections. Ownership checks
// live in the repository; handlers only pass the acting user along.
type ListHandler struct {
	Lists *repository.ListRepo
	Log   *zap.Logger
}

func NewListHandler(lists *repository.ListRepo, log *zap.Logger) *ListHandler {
	if lists == nil {
		panic("nil repository passed to NewListHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ListHandler{Lists: lists, Log: log}
}

type listRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	IsCollection *bool   `json:"is_collection"`
}

type addMovieRequest struct {
	MovieID string `json:"movie_id"`
}

// Collections lists every public collection.
func (h *ListHandler) Collections(c echo.Context) error {
	lists, err := h.Lists.Collections(c.Request().Context())
	if err != nil {
		h.Log.Error("list collections failed", zap.Error(err))
		lists = []model.List{}
	}
	return c.JSON(http.StatusOK, echo.Map{"lists": lists})
}

// MyLists returns the caller's own lists.
func (h *ListHandler) MyLists(c echo.Context) error {
	a := actor(c)
	lists, err := h.Lists.ListByUser(c.Request().Context(), a.UserID)
	if err != nil {
		return mutationError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"lists": lists})
}

func (h *ListHandler) GetList(c echo.Context) error {
	l, err := h.Lists.GetVisible(c.Request().Context(), c.Param("id"), actor(c))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
	}
	if err != nil {
		h.Log.Error("get list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, l)
}

// ListMovies pages through a visible list, newest additions first.
func (h *ListHandler) ListMovies(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := h.Lists.GetVisible(ctx, id, actor(c)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "list not found"})
		}
		h.Log.Error("get list failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	page, limit := pageParams(c, 20, 100)
	skip := (page - 1) * limit
	movies, total, err := h.Lists.Movies(ctx, id, skip, limit)
	if err != nil {
		h.Log.Error("list movies failed", zap.String("list_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movies":     movies,
		"totalCount": total,
		"hasMore":    int64(skip+len(movies)) < total,
	})
}

func (h *ListHandler) CreateList(c echo.Context) error {
	var req listRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid request body")
	}
	l := &model.List{Title: req.Title, Description: trimmed(req.Description), IsCollection: req.IsCollection != nil && *req.IsCollection}
	if err := h.Lists.Create(c.Request().Context(), l, actor(c)); err != nil {
		return mutationError(c, h.Log, err)
	}
	return success(c, http.StatusCreated, "list", l)
}

func (h *ListHandler) UpdateList(c echo.Context) error {
	var req listRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "invalid request body")
	}
	l := &model.List{ID: c.Param("id"), Title: req.Title, Description: trimmed(req.Description)}
	if err := h.Lists.Update(c.Request().Context(), l, req.IsCollection, actor(c)); err != nil {
		return mutationError(c, h.Log, err)
	}
	return success(c, http.StatusOK, "list", l)
}

func (h *ListHandler) DeleteList(c echo.Context) error {
	if err := h.Lists.Delete(c.Request().Context(), c.Param("id"), actor(c)); err != nil {
		return mutationError(c, h.Log, err)
	}
	return success(c, http.StatusOK, "", nil)
}

func (h *ListHandler) AddMovie(c echo.Context) error {
	var req addMovieRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.MovieID) == "" {
		return failure(c, http.StatusBadRequest, "movie_id is required")
	}
	lm, err := h.Lists.AddMovie(c.Request().Context(), c.Param("id"), strings.TrimSpace(req.MovieID), actor(c))
	if err != nil {
		return mutationError(c, h.Log, err)
	}
	return success(c, http.StatusCreated, "membership", lm)
}

func (h *ListHandler) RemoveMovie(c echo.Context) error {
	if err := h.Lists.RemoveMovie(c.Request().Context(), c.Param("id"), c.Param("movieId"), actor(c)); err != nil {
		return mutationError(c, h.Log, err)
	}
	return success(c, http.StatusOK, "", nil)
}

// trimmed returns nil for absent or blank optional text.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
