package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/search"
	"github.com/iliyamo/queer-film-catalog/internal/testutil"
)

func TestDistinctYears(t *testing.T) {
	got := search.DistinctYears([]string{"1999", "2004-05-01", "1999-compilation", "unknown", "0987", "2010"})
	assert.Equal(t, []string{"2010", "2004", "1999", "0987"}, got)
	assert.Equal(t, []string{}, search.DistinctYears(nil))
}

func TestOptions_All(t *testing.T) {
	cat := testutil.NewCatalog(t)
	drama := cat.Genre("Drama")
	cat.Country("Brazil")
	cat.Keyword("trans")
	cat.Director("Sébastien Lifshitz")
	cat.AddMovie(testutil.Movie{ReleaseDate: "2020", Genres: []string{drama}})
	cat.AddMovie(testutil.Movie{ReleaseDate: "1994-02-11"})

	fo := search.NewOptions(repository.NewFacetRepo(cat.DB), nil).All(context.Background())
	assert.Equal(t, []model.Facet{{ID: drama, Name: "Drama"}}, fo.Genres)
	assert.Len(t, fo.Countries, 1)
	assert.Len(t, fo.Keywords, 1)
	assert.Len(t, fo.Directors, 1)
	assert.Equal(t, []string{"2020", "1994"}, fo.Years)
}

type brokenFacets struct{}

var errDown = errors.New("db down")

func (brokenFacets) Genres(context.Context) ([]model.Facet, error) { return nil, errDown }
func (brokenFacets) Directors(context.Context) ([]model.Facet, error) { return nil, errDown }
func (brokenFacets) Countries(context.Context) ([]model.IntFacet, error) { return nil, errDown }
func (brokenFacets) Keywords(context.Context) ([]model.IntFacet, error) { return nil, errDown }
func (brokenFacets) ReleaseDates(context.Context) ([]string, error) { return nil, errDown }

func TestOptions_ErrorsYieldEmptyListsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fo := search.NewOptions(brokenFacets{}, zap.New(core)).All(context.Background())

	assert.Equal(t, []model.Facet{}, fo.Genres)
	assert.Equal(t, []model.Facet{}, fo.Directors)
	assert.Equal(t, []model.IntFacet{}, fo.Countries)
	assert.Equal(t, []model.IntFacet{}, fo.Keywords)
	assert.Equal(t, []string{}, fo.Years)
	assert.Equal(t, 5, logs.FilterMessage("load filter options failed").Len())
}
