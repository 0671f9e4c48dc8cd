package search

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/queer-film-catalog/internal/model"
)

// FacetSource is the read side of the facet repository.
type FacetSource interface {
	Genres(ctx context.Context) ([]model.Facet, error)
	Directors(ctx context.Context) ([]model.Facet, error)
	Countries(ctx context.Context) ([]model.IntFacet, error)
	Keywords(ctx context.Context) ([]model.IntFacet, error)
	ReleaseDates(ctx context.Context) ([]string, error)
}

// FilterOptions bundles every option list for the search form.
type FilterOptions struct {
	Genres    []model.Facet    `json:"genres"`
	Countries []model.IntFacet `json:"countries"`
	Keywords  []model.IntFacet `json:"keywords"`
	Directors []model.Facet    `json:"directors"`
	Years     []string         `json:"years"`
}

// Options serves filter option lists. Read errors are logged and produce an
// empty list so the form still renders.
type Options struct {
	src FacetSource
	log *zap.Logger
}

func NewOptions(src FacetSource, log *zap.Logger) *Options {
	if log == nil {
		log = zap.NewNop()
	}
	return &Options{src: src, log: log.Named("options")}
}

func (o *Options) Genres(ctx context.Context) []model.Facet {
	out, err := o.src.Genres(ctx)
	return orEmpty(o, "genres", out, err)
}

func (o *Options) Directors(ctx context.Context) []model.Facet {
	out, err := o.src.Directors(ctx)
	return orEmpty(o, "directors", out, err)
}

func (o *Options) Countries(ctx context.Context) []model.IntFacet {
	out, err := o.src.Countries(ctx)
	return orEmpty(o, "countries", out, err)
}

func (o *Options) Keywords(ctx context.Context) []model.IntFacet {
	out, err := o.src.Keywords(ctx)
	return orEmpty(o, "keywords", out, err)
}

// Years returns the distinct leading years of all release dates, newest
// first. Dates that do not start with a four-digit year are skipped.
func (o *Options) Years(ctx context.Context) []string {
	dates, err := o.src.ReleaseDates(ctx)
	if err != nil {
		o.log.Error("load filter options failed", zap.String("facet", "years"), zap.Error(err))
		return []string{}
	}
	return DistinctYears(dates)
}

// All loads every option list concurrently.
func (o *Options) All(ctx context.Context) FilterOptions {
	var fo FilterOptions
	var g errgroup.Group
	g.Go(func() error { fo.Genres = o.Genres(ctx); return nil })
	g.Go(func() error { fo.Countries = o.Countries(ctx); return nil })
	g.Go(func() error { fo.Keywords = o.Keywords(ctx); return nil })
	g.Go(func() error { fo.Directors = o.Directors(ctx); return nil })
	g.Go(func() error { fo.Years = o.Years(ctx); return nil })
	_ = g.Wait()
	return fo
}

// DistinctYears extracts the leading years, dedupes them and sorts them
// descending numerically.
func DistinctYears(dates []string) []string {
	seen := map[string]struct{}{}
	years := []string{}
	for _, d := range dates {
		y, ok := model.ReleaseYear(d)
		if !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool {
		a, _ := strconv.Atoi(years[i])
		b, _ := strconv.Atoi(years[j])
		return a > b
	})
	return years
}

func orEmpty[T any](o *Options, facet string, out []T, err error) []T {
	if err != nil {
		o.log.Error("load filter options failed", zap.String("facet", facet), zap.Error(err))
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}
