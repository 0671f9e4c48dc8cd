// Package search runs paginated multi-filter movie searches and serves the
// option lists that populate the filter controls.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/queer-film-catalog/internal/cache"
	"github.com/iliyamo/queer-film-catalog/internal/config"
	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
)

// MovieFinder is the read side of the movie repository used by searches.
type MovieFinder interface {
	CountMovies(ctx context.Context, p repository.Predicate) (int64, error)
	FindMovies(ctx context.Context, p repository.Predicate, offset, limit int) ([]model.MovieSummary, error)
}

// Request is a filter plus a 1-based page and a page size. Zero Page and
// Limit take the configured defaults.
type Request struct {
	Filter repository.MovieFilter
	Page   int
	Limit  int
}

// Executor counts and fetches matching movies concurrently and never returns
// an error to its callers: failures are logged and produce the empty page.
type Executor struct {
	movies   MovieFinder
	store    cache.Store
	log      *zap.Logger
	cfg      config.SearchConfig
	cacheTTL time.Duration
	prefix   string
}

// NewExecutor wires an executor. A nil store disables caching and a nil
// logger discards failure logs.
func NewExecutor(movies MovieFinder, store cache.Store, log *zap.Logger, cfg config.SearchConfig, cc config.CacheConfig) *Executor {
	if store == nil || !cc.Enabled {
		store = cache.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	ttl := cc.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	prefix := cc.Prefix
	if prefix == "" {
		prefix = "catalog"
	}
	return &Executor{movies: movies, store: store, log: log.Named("search"), cfg: cfg, cacheTTL: ttl, prefix: prefix}
}

// Search returns the page for req. It always succeeds from the caller's
// point of view.
func (e *Executor) Search(ctx context.Context, req Request) Page {
	return e.Run(ctx, req).Page()
}

// Run executes req and reports how it went.
func (e *Executor) Run(ctx context.Context, req Request) Result {
	req = e.normalize(req)
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	key, err := e.cacheKey(req)
	if err != nil {
		return e.fail(req, fmt.Errorf("cache key: %w", err))
	}
	if bs, ok, err := e.store.Get(ctx, key); err != nil {
		e.log.Warn("search cache read failed", zap.Error(err))
	} else if ok {
		var p Page
		if err := json.Unmarshal(bs, &p); err == nil {
			return Ok{Data: p, Cached: true}
		}
		e.log.Warn("search cache entry unreadable", zap.String("key", key))
	}

	page, err := e.execute(ctx, req)
	if err != nil {
		return e.fail(req, err)
	}

	if bs, err := json.Marshal(page); err == nil {
		if err := e.store.Set(ctx, key, bs, e.cacheTTL, cache.TagMovies); err != nil {
			e.log.Warn("search cache write failed", zap.Error(err))
		}
	}
	return Ok{Data: page}
}

// InvalidateMovies drops every cached search page.
func (e *Executor) InvalidateMovies(ctx context.Context) error {
	return e.store.InvalidateTag(ctx, cache.TagMovies)
}

func (e *Executor) execute(ctx context.Context, req Request) (Page, error) {
	pred := repository.BuildPredicate(req.Filter)
	skip := (req.Page - 1) * req.Limit

	var (
		total  int64
		movies []model.MovieSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := e.movies.CountMovies(gctx, pred)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	g.Go(func() error {
		ms, err := e.movies.FindMovies(gctx, pred, skip, req.Limit)
		if err != nil {
			return err
		}
		movies = ms
		return nil
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	if movies == nil {
		movies = []model.MovieSummary{}
	}
	return Page{
		Movies:     movies,
		TotalCount: total,
		HasMore:    int64(skip+len(movies)) < total,
	}, nil
}

func (e *Executor) normalize(req Request) Request {
	req.Filter = req.Filter.Normalize()
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = e.cfg.DefaultLimit
	}
	if req.Limit > e.cfg.MaxLimit {
		req.Limit = e.cfg.MaxLimit
	}
	req.Page = ClampPage(req.Page, req.Limit)
	return req
}

// ClampPage bounds page so that page*limit fits in an int. A clamped page
// still lies past any real result set, so it stays empty with no more pages.
func ClampPage(page, limit int) int {
	if limit < 1 {
		return page
	}
	if last := math.MaxInt / limit; page > last {
		return last
	}
	return page
}

// cacheKey serializes the whole filter tuple including page and limit.
func (e *Executor) cacheKey(req Request) (string, error) {
	bs, err := json.Marshal(req.Filter)
	if err != nil {
		return "", err
	}
	return cache.Key(e.prefix, "search", string(bs), strconv.Itoa(req.Page), strconv.Itoa(req.Limit)), nil
}

func (e *Executor) fail(req Request, err error) Result {
	e.log.Error("movie search failed",
		zap.Error(err),
		zap.Any("filter", req.Filter),
		zap.Int("page", req.Page),
		zap.Int("limit", req.Limit),
	)
	return LoggedFailure{Err: err}
}
