// Package router registers the HTTP routes of the catalog API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queer-film-catalog/internal/handler"
	"github.com/iliyamo/queer-film-catalog/internal/middleware"
)

// Auth carries what the JWT middleware needs.
type Auth struct {
	Secret    string
	AdminRole string
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the public read-only catalog. limiter guards the
// search endpoint and may be a pass-through.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/movies/search", h.SearchMovies, limiter)
	g.GET("/movies/featured", h.Featured)
	g.GET("/movies/:id", h.GetMovie)

	g.GET("/filters", h.Filters)
	g.GET("/genres", h.Genres)
	g.GET("/countries", h.Countries)
	g.GET("/keywords", h.Keywords)
	g.GET("/directors", h.Directors)
	g.GET("/years", h.Years)
}

// RegisterLists registers list routes. Reading a list works anonymously for
// collections; everything else requires a token.
func RegisterLists(e *echo.Echo, h *handler.ListHandler, a Auth) {
	e.GET("/v1/collections", h.Collections)

	public := e.Group("/v1/lists", middleware.OptionalAuth(a.Secret, a.AdminRole))
	public.GET("/:id", h.GetList)
	public.GET("/:id/movies", h.ListMovies)

	authed := e.Group("/v1", middleware.JWTAuth(a.Secret, a.AdminRole))
	authed.GET("/me/lists", h.MyLists)
	authed.POST("/lists", h.CreateList)
	authed.PUT("/lists/:id", h.UpdateList)
	authed.DELETE("/lists/:id", h.DeleteList)
	authed.POST("/lists/:id/movies", h.AddMovie)
	authed.DELETE("/lists/:id/movies/:movieId", h.RemoveMovie)
}

// RegisterAdmin registers admin-only routes under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, a Auth) {
	g := e.Group("/v1/admin", middleware.JWTAuth(a.Secret, a.AdminRole), middleware.RequireAdmin())
	g.POST("/movies", h.CreateMovie)
	g.PUT("/movies/:id", h.UpdateMovie)
	g.PUT("/movies/:id/facets", h.ReplaceFacets)
	g.DELETE("/movies/:id", h.DeleteMovie)
	g.GET("/stats", h.GetStats)
}
