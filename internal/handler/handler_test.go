package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/cache"
	"github.com/iliyamo/queer-film-catalog/internal/config"
	"github.com/iliyamo/queer-film-catalog/internal/handler"
	"github.com/iliyamo/queer-film-catalog/internal/middleware"
	"github.com/iliyamo/queer-film-catalog/internal/queue"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/router"
	"github.com/iliyamo/queer-film-catalog/internal/search"
	"github.com/iliyamo/queer-film-catalog/internal/testutil"
	"github.com/iliyamo/queer-film-catalog/internal/utils"
)

const secret = "handler-secret"

var auth = router.Auth{Secret: secret, AdminRole: "admin"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.MovieChangedEvent
}

func (p *recordingPublisher) PublishMovieChanged(_ context.Context, ev queue.MovieChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type env struct {
	e      *echo.Echo
	cat    *testutil.Catalog
	events *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cat := testutil.NewCatalog(t)
	log := zap.NewNop()
	movies := repository.NewMovieRepo(cat.DB)
	ex := search.NewExecutor(movies, cache.NewMemory(), log,
		config.SearchConfig{Timeout: 5 * time.Second, DefaultLimit: 20, MaxLimit: 100},
		config.CacheConfig{Enabled: true, TTL: time.Hour, Prefix: "test"})
	opts := search.NewOptions(repository.NewFacetRepo(cat.DB), log)
	events := &recordingPublisher{}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCatalog(e, handler.NewCatalogHandler(ex, opts, movies, log), middleware.NewTokenBucket(config.RateLimitConfig{}, nil, log))
	router.RegisterLists(e, handler.NewListHandler(repository.NewListRepo(cat.DB), log), auth)
	router.RegisterAdmin(e, handler.NewAdminHandler(movies, repository.NewStatsRepo(cat.DB), ex, events, "test-node", log), auth)
	return &env{e: e, cat: cat, events: events}
}

func (en *env) do(method, path, user, role string, body any) *httptest.ResponseRecorder {
	var payload *strings.Reader
	if body != nil {
		bs, _ := json.Marshal(body)
		payload = strings.NewReader(string(bs))
	} else {
		payload = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set(echo.HeaderAuthorization, utils.BearerHeader(secret, user, role))
	}
	rec := httptest.NewRecorder()
	en.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	en := newEnv(t)
	rec := en.do(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSearchMovies(t *testing.T) {
	en := newEnv(t)
	lgbt := en.cat.Keyword("lgbt")
	drama := en.cat.Genre("Drama")
	for i := 0; i < 23; i++ {
		en.cat.AddMovie(testutil.Movie{ReleaseDate: "2001", Keywords: []int64{lgbt}, Genres: []string{drama}})
	}
	en.cat.AddMovie(testutil.Movie{})

	rec := en.do(http.MethodGet, "/v1/movies/search?keyword=lgbt&page=1&limit=10", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	decode(t, rec, &raw)
	assert.JSONEq(t, "23", string(raw["totalCount"]))
	assert.JSONEq(t, "true", string(raw["hasMore"]))

	var page search.Page
	decode(t, rec, &page)
	require.Len(t, page.Movies, 10)
	m := page.Movies[0]
	assert.Equal(t, "Drama", m.Genres[0].Name)
	assert.Equal(t, lgbt, m.Keywords[0].ID)
	assert.NotNil(t, m.Countries)

	rec = en.do(http.MethodGet, "/v1/movies/search?title=nothing-like-this", "", "", nil)
	assert.JSONEq(t, `{"movies":[],"totalCount":0,"hasMore":false}`, rec.Body.String())
}

func TestSearchMovies_DatabaseDownIsEmptyPage(t *testing.T) {
	en := newEnv(t)
	require.NoError(t, en.cat.DB.Close())

	rec := en.do(http.MethodGet, "/v1/movies/search?title=carol", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"movies":[],"totalCount":0,"hasMore":false}`, rec.Body.String())
}

func TestGetMovieAndFeatured(t *testing.T) {
	en := newEnv(t)
	id := en.cat.AddMovie(testutil.Movie{Title: "Pariah", Boost: true})
	en.cat.AddMovie(testutil.Movie{Title: "Weekend"})

	rec := en.do(http.MethodGet, "/v1/movies/"+id, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Pariah"`)

	assert.Equal(t, http.StatusNotFound, en.do(http.MethodGet, "/v1/movies/missing", "", "", nil).Code)

	rec = en.do(http.MethodGet, "/v1/movies/featured", "", "", nil)
	var body struct {
		Movies []struct{ ID string } `json:"movies"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Movies, 1)
	assert.Equal(t, id, body.Movies[0].ID)
}

func TestFilterEndpoints(t *testing.T) {
	en := newEnv(t)
	en.cat.Genre("Documentary")
	en.cat.Country("Canada")
	en.cat.AddMovie(testutil.Movie{ReleaseDate: "1990"})
	en.cat.AddMovie(testutil.Movie{ReleaseDate: "2015-03-01"})

	rec := en.do(http.MethodGet, "/v1/filters", "", "", nil)
	var fo search.FilterOptions
	decode(t, rec, &fo)
	assert.Len(t, fo.Genres, 1)
	assert.Len(t, fo.Countries, 1)
	assert.Empty(t, fo.Keywords)
	assert.Equal(t, []string{"2015", "1990"}, fo.Years)

	assert.JSONEq(t, `["2015","1990"]`, en.do(http.MethodGet, "/v1/years", "", "", nil).Body.String())
	assert.JSONEq(t, `[]`, en.do(http.MethodGet, "/v1/keywords", "", "", nil).Body.String())
	assert.Contains(t, en.do(http.MethodGet, "/v1/genres", "", "", nil).Body.String(), "Documentary")
	assert.Contains(t, en.do(http.MethodGet, "/v1/countries", "", "", nil).Body.String(), "Canada")
	assert.JSONEq(t, `[]`, en.do(http.MethodGet, "/v1/directors", "", "", nil).Body.String())
}
