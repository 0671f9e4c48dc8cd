package paging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iliyamo/queer-film-catalog/internal/search"
)

// HTTPFetcher reads pages from the catalog's search endpoint, pacing
// requests with a token bucket.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPFetcher returns a fetcher for the API rooted at baseURL allowing
// perSecond requests per second with the given burst. perSecond <= 0 means
// unlimited.
func NewHTTPFetcher(baseURL string, perSecond float64, burst int) *HTTPFetcher {
	lim := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return &HTTPFetcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    lim,
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, req search.Request) (search.Page, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return search.Page{}, err
	}
	u := h.baseURL + "/v1/movies/search?" + req.Query().Encode()
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return search.Page{}, err
	}
	hreq.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(hreq)
	if err != nil {
		return search.Page{}, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return search.Page{}, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	var p search.Page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return search.Page{}, fmt.Errorf("decode search page: %w", err)
	}
	return p, nil
}
