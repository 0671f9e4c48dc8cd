package paging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/search"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(search.Page{Movies: movies("m1"), TotalCount: 11, HasMore: true})
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/", 0, 0)
	p, err := f.Fetch(context.Background(), search.Request{
		Filter: repository.MovieFilter{Keyword: "lgbt", KeywordIDs: []int64{4}},
		Page:   2,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, movieIDs(p.Movies))
	assert.Equal(t, int64(11), p.TotalCount)
	assert.True(t, p.HasMore)

	require.NotNil(t, got)
	assert.Equal(t, "/v1/movies/search", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "lgbt", q.Get("keyword"))
	assert.Equal(t, "4", q.Get("keywordIds"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "10", q.Get("limit"))
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, 100, 1).Fetch(context.Background(), search.Request{})
	assert.ErrorContains(t, err, "429")
}

func TestHTTPFetcher_RespectsCancelledContext(t *testing.T) {
	f := NewHTTPFetcher("http://127.0.0.1:1", 0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())
	// burn the single token so the next call has to wait
	f.limiter.Allow()
	cancel()
	_, err := f.Fetch(ctx, search.Request{})
	assert.Error(t, err)
}
