package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/queer-film-catalog/internal/repository"
)

func TestRequestFromQuery(t *testing.T) {
	v, _ := url.ParseQuery("title=+Carol+&keywordIds=3,4&keywordIds=9&keywordIds=x&countryId=abc&page=2&limit=oops&startYear=1990")
	req := RequestFromQuery(v)
	assert.Equal(t, "Carol", req.Filter.Title)
	assert.Equal(t, []int64{3, 4, 9}, req.Filter.KeywordIDs)
	assert.Zero(t, req.Filter.CountryID)
	assert.Equal(t, "1990", req.Filter.StartYear)
	assert.Equal(t, 2, req.Page)
	assert.Zero(t, req.Limit)
}

func TestRequestQuery_ReadsBack(t *testing.T) {
	in := Request{
		Filter: repository.MovieFilter{Keyword: "lgbt", KeywordIDs: []int64{1, 2}, CountryID: 7, GenreID: "g-1"},
		Page:   3,
		Limit:  10,
	}
	v := in.Query()
	assert.Equal(t, "1,2", v.Get("keywordIds"))
	assert.Empty(t, v.Get("title"))
	assert.Equal(t, in, RequestFromQuery(v))
}
