// Package paging accumulates search pages on the client side: it requests
// page after page for the current filter, one request at a time, and throws
// away responses that belong to a filter the user has since replaced.
package paging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/queer-film-catalog/internal/model"
	"github.com/iliyamo/queer-film-catalog/internal/repository"
	"github.com/iliyamo/queer-film-catalog/internal/search"
)

// State is the lifecycle position of a Controller.
type State int

const (
	Idle State = iota
	LoadingFirst
	HasData
	LoadingNext
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingFirst:
		return "loading-first-page"
	case HasData:
		return "has-data"
	case LoadingNext:
		return "loading-next-page"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Fetcher retrieves one page of search results.
type Fetcher interface {
	Fetch(ctx context.Context, req search.Request) (search.Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req search.Request) (search.Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, req search.Request) (search.Page, error) {
	return f(ctx, req)
}

// Snapshot is a consistent copy of the controller's visible state.
type Snapshot struct {
	State      State
	Filter     repository.MovieFilter
	Movies     []model.MovieSummary
	TotalCount int64
	HasMore    bool
	// Pages is the number of pages appended so far.
	Pages int
	// Err is the most recent fetch failure for the current filter. It is
	// cleared by the next successful page.
	Err error
}

// Options tune a Controller. Zero values take defaults.
type Options struct {
	// Limit is the page size requested from the fetcher.
	Limit int
	// Threshold is how close to the end of the accumulated list, in items,
	// a visible position must be for OnScroll to request the next page.
	Threshold int
	// OnChange is called with a fresh snapshot after every state change.
	// It runs on the goroutine that caused the change.
	OnChange func(Snapshot)
	Logger   *zap.Logger
}

// Controller drives sequential paging for one result list.
type Controller struct {
	fetch     Fetcher
	limit     int
	threshold int
	onChange  func(Snapshot)
	log       *zap.Logger

	mu       sync.Mutex
	state    State
	filter   repository.MovieFilter
	gen      uint64
	movies   []model.MovieSummary
	total    int64
	hasMore  bool
	pages    int
	inFlight bool
	cancel   context.CancelFunc
	lastErr  error

	wg sync.WaitGroup
}

func NewController(f Fetcher, opts Options) *Controller {
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 5
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		fetch:     f,
		limit:     opts.Limit,
		threshold: opts.Threshold,
		onChange:  opts.OnChange,
		log:       opts.Logger.Named("paging"),
		movies:    []model.MovieSummary{},
	}
}

// SetFilter discards every accumulated page and any in-flight response and
// requests page 1 for f.
func (c *Controller) SetFilter(ctx context.Context, f repository.MovieFilter) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.filter = f.Normalize()
	c.movies = []model.MovieSummary{}
	c.total = 0
	c.hasMore = false
	c.pages = 0
	c.lastErr = nil
	c.state = LoadingFirst
	launch := c.prepare(ctx, 1)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	launch()
}

// Reload repeats the first page request for the current filter. It is the
// way to recover from a failed first page.
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	f := c.filter
	c.mu.Unlock()
	c.SetFilter(ctx, f)
}

// LoadMore requests the next page. It does nothing and returns false unless
// the controller has data, more pages exist and no request is in flight.
func (c *Controller) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != HasData || !c.hasMore || c.inFlight {
		c.mu.Unlock()
		return false
	}
	c.state = LoadingNext
	launch := c.prepare(ctx, c.pages+1)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	launch()
	return true
}

// OnScroll reports that the item at index lastVisible is on screen. When it
// is within the threshold of the end of the list the next page is requested.
func (c *Controller) OnScroll(ctx context.Context, lastVisible int) bool {
	c.mu.Lock()
	near := lastVisible >= len(c.movies)-c.threshold
	c.mu.Unlock()
	if !near {
		return false
	}
	return c.LoadMore(ctx)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until every request started so far has completed.
func (c *Controller) Wait() { c.wg.Wait() }

// prepare marks a request for page as in flight and returns the function
// that sends it. c.mu must be held; the returned function must be called
// without it so the state change is announced before any completion.
func (c *Controller) prepare(ctx context.Context, page int) func() {
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.inFlight = true
	gen := c.gen
	req := search.Request{Filter: c.filter, Page: page, Limit: c.limit}

	c.wg.Add(1)
	return func() {
		go func() {
			defer c.wg.Done()
			defer cancel()
			p, err := c.fetch.Fetch(reqCtx, req)
			c.complete(gen, req, p, err)
		}()
	}
}

func (c *Controller) complete(gen uint64, req search.Request, p search.Page, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding stale page", zap.Int("page", req.Page), zap.Uint64("generation", gen))
		return
	}
	c.inFlight = false
	c.cancel = nil

	if err != nil {
		c.lastErr = err
		if c.pages == 0 {
			c.state = Idle
		} else {
			c.state = HasData
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.log.Warn("page fetch failed", zap.Int("page", req.Page), zap.Error(err))
		c.notify(snap)
		return
	}

	c.movies = append(c.movies, p.Movies...)
	c.total = p.TotalCount
	c.hasMore = p.HasMore
	c.pages = req.Page
	c.lastErr = nil
	if p.HasMore {
		c.state = HasData
	} else {
		c.state = Exhausted
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	movies := make([]model.MovieSummary, len(c.movies))
	copy(movies, c.movies)
	return Snapshot{
		State:      c.state,
		Filter:     c.filter,
		Movies:     movies,
		TotalCount: c.total,
		HasMore:    c.hasMore,
		Pages:      c.pages,
		Err:        c.lastErr,
	}
}

func (c *Controller) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
