package paging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/search"
)

type reply struct {
	page search.Page
	err  error
}

type call struct {
	req search.Request
	out chan reply
}

// scripted hands every request to the test, which decides when and how it
// completes.
type scripted struct {
	calls chan *call
}

func newScripted() *scripted { return &scripted{calls: make(chan *call, 8)} }

func (s *scripted) Fetch(_ context.Context, req search.Request) (search.Page, error) {
	c := &call{req: req, out: make(chan reply, 1)}
	s.calls <- c
	r := <-c.out
	return r.page, r.err
}

func (s *scripted) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no request issued")
		return nil
	}
}

func (s *scripted) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected request for page %d", c.req.Page)
	case <-time.After(20 * time.Millisecond):
	}
}

func movies(ids ...string) []model.MovieSummary {
	out := make([]model.MovieSummary, len(ids))
	for i, id := range ids {
		out[i] = model.NewSummary(model.Movie{ID: id})
	}
	return out
}

func movieIDs(ms []model.MovieSummary) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func waitState(t *testing.T, c *Controller, want State) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = c.Snapshot()
		return snap.State == want
	}, 2*time.Second, time.Millisecond, "state %s", want)
	return snap
}

func TestController_PagesUntilExhausted(t *testing.T) {
	f := newScripted()
	c := NewController(f, Options{Limit: 2})
	ctx := context.Background()
	assert.Equal(t, Idle, c.Snapshot().State)

	c.SetFilter(ctx, repository.MovieFilter{Keyword: "lgbt"})
	assert.Equal(t, LoadingFirst, c.Snapshot().State)
	first := f.next(t)
	assert.Equal(t, search.Request{Filter: repository.MovieFilter{Keyword: "lgbt"}, Page: 1, Limit: 2}, first.req)

	assert.False(t, c.LoadMore(ctx), "no next page while the first is loading")
	first.out <- reply{page: search.Page{Movies: movies("a", "b"), TotalCount: 3, HasMore: true}}
	waitState(t, c, HasData)

	require.True(t, c.LoadMore(ctx))
	assert.Equal(t, LoadingNext, c.Snapshot().State)
	assert.False(t, c.LoadMore(ctx), "one request in flight")
	second := f.next(t)
	assert.Equal(t, 2, second.req.Page)
	second.out <- reply{page: search.Page{Movies: movies("c"), TotalCount: 3, HasMore: false}}

	snap := waitState(t, c, Exhausted)
	assert.Equal(t, []string{"a", "b", "c"}, movieIDs(snap.Movies))
	assert.Equal(t, 2, snap.Pages)
	assert.Equal(t, int64(3), snap.TotalCount)

	assert.False(t, c.LoadMore(ctx))
	assert.False(t, c.OnScroll(ctx, 2))
	f.none(t)
	c.Wait()
}

func TestController_StaleResponseIsDiscarded(t *testing.T) {
	f := newScripted()
	c := NewController(f, Options{Limit: 2})
	ctx := context.Background()

	c.SetFilter(ctx, repository.MovieFilter{Genre: "drama"})
	f.next(t).out <- reply{page: search.Page{Movies: movies("d1", "d2"), TotalCount: 4, HasMore: true}}
	waitState(t, c, HasData)

	require.True(t, c.LoadMore(ctx))
	stale := f.next(t)
	assert.Equal(t, 2, stale.req.Page)

	c.SetFilter(ctx, repository.MovieFilter{Genre: "comedy"})
	fresh := f.next(t)
	assert.Equal(t, 1, fresh.req.Page)
	assert.Equal(t, "comedy", fresh.req.Filter.Genre)

	fresh.out <- reply{page: search.Page{Movies: movies("c1", "c2"), TotalCount: 5, HasMore: true}}
	waitState(t, c, HasData)
	stale.out <- reply{page: search.Page{Movies: movies("d3", "d4"), TotalCount: 4, HasMore: false}}
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, HasData, snap.State)
	assert.Equal(t, "comedy", snap.Filter.Genre)
	assert.Equal(t, []string{"c1", "c2"}, movieIDs(snap.Movies))
	assert.Equal(t, int64(5), snap.TotalCount)
	assert.Equal(t, 1, snap.Pages)

	require.True(t, c.LoadMore(ctx))
	assert.Equal(t, 2, f.next(t).req.Page)
}

func TestController_NextPageFailureKeepsData(t *testing.T) {
	f := newScripted()
	c := NewController(f, Options{Limit: 1})
	ctx := context.Background()

	c.SetFilter(ctx, repository.MovieFilter{})
	f.next(t).out <- reply{page: search.Page{Movies: movies("a"), TotalCount: 2, HasMore: true}}
	waitState(t, c, HasData)

	require.True(t, c.LoadMore(ctx))
	f.next(t).out <- reply{err: errors.New("502")}
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, HasData, snap.State)
	assert.Equal(t, []string{"a"}, movieIDs(snap.Movies))
	assert.EqualError(t, snap.Err, "502")

	require.True(t, c.LoadMore(ctx), "failed page can be requested again")
	retry := f.next(t)
	assert.Equal(t, 2, retry.req.Page)
	retry.out <- reply{page: search.Page{Movies: movies("b"), TotalCount: 2, HasMore: false}}
	snap = waitState(t, c, Exhausted)
	assert.NoError(t, snap.Err)
	assert.Equal(t, []string{"a", "b"}, movieIDs(snap.Movies))
}

func TestController_FirstPageFailureAndReload(t *testing.T) {
	f := newScripted()
	c := NewController(f, Options{})
	ctx := context.Background()

	c.SetFilter(ctx, repository.MovieFilter{Title: "carol"})
	req := f.next(t)
	assert.Equal(t, 20, req.req.Limit)
	req.out <- reply{err: context.DeadlineExceeded}
	c.Wait()
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.ErrorIs(t, snap.Err, context.DeadlineExceeded)
	assert.False(t, c.LoadMore(ctx))

	c.Reload(ctx)
	again := f.next(t)
	assert.Equal(t, "carol", again.req.Filter.Title)
	again.out <- reply{page: search.Page{Movies: []model.MovieSummary{}}}
	snap = waitState(t, c, Exhausted)
	assert.Empty(t, snap.Movies)
}

func TestController_OnScrollThreshold(t *testing.T) {
	f := newScripted()
	c := NewController(f, Options{Limit: 10, Threshold: 3})
	ctx := context.Background()

	c.SetFilter(ctx, repository.MovieFilter{})
	f.next(t).out <- reply{page: search.Page{
		Movies: movies("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), TotalCount: 30, HasMore: true,
	}}
	waitState(t, c, HasData)

	assert.False(t, c.OnScroll(ctx, 5))
	f.none(t)
	assert.True(t, c.OnScroll(ctx, 7))
	assert.Equal(t, 2, f.next(t).req.Page)
	assert.False(t, c.OnScroll(ctx, 9), "already loading")
}

func TestController_OnChangeSeesTransitions(t *testing.T) {
	var states []State
	done := make(chan struct{})
	c := NewController(FetcherFunc(func(context.Context, search.Request) (search.Page, error) {
		return search.Page{Movies: movies("x"), TotalCount: 1}, nil
	}), Options{OnChange: func(s Snapshot) {
		states = append(states, s.State)
		if s.State == Exhausted {
			close(done)
		}
	}})

	c.SetFilter(context.Background(), repository.MovieFilter{})
	<-done
	c.Wait()
	assert.Equal(t, []State{LoadingFirst, Exhausted}, states)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading-next-page", LoadingNext.String())
	assert.Equal(t, "unknown", State(42).String())
}
