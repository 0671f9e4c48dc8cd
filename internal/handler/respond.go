package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/middleware"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/search"
)

// Mutations answer {type:"success", ...} or {type:"error", message}.

func success(c echo.Context, status int, key string, v any) error {
	body := echo.Map{"type": "success"}
	if key != "" {
		body[key] = v
	}
	return c.JSON(status, body)
}

func failure(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"type": "error", "message": msg})
}

// mutationError maps repository sentinels to HTTP statuses. Unexpected
// errors are reported as 500 without leaking the cause.
func mutationError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return failure(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return failure(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return failure(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		return failure(c, http.StatusConflict, "already exists")
	}
	log.Error("mutation failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return failure(c, http.StatusInternalServerError, "internal error")
}

// actor builds the repository actor from the authenticated identity.
func actor(c echo.Context) repository.Actor {
	uid, admin := middleware.Identity(c)
	return repository.Actor{UserID: uid, IsAdmin: admin}
}

// pageParams reads page (1-based) and limit with a default and an upper bound.
func pageParams(c echo.Context, def, max int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return search.ClampPage(page, limit), limit
}
