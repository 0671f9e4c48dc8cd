package search

import "github.com/iliyamo/queer-film-catalog/internal/model"

// Page is the only shape callers of Search ever receive.
type Page struct {
	Movies     []model.MovieSummary `json:"movies"`
	TotalCount int64                `json:"totalCount"`
	HasMore    bool                 `json:"hasMore"`
}

// EmptyPage is returned whenever a search fails.
func EmptyPage() Page {
	return Page{Movies: []model.MovieSummary{}}
}

// Result is the outcome of one executor run: either Ok or LoggedFailure.
// Failures have already been logged by the time a Result is returned.
type Result interface {
	// Page returns the data to hand to clients. For a failure that is the
	// empty page.
	Page() Page
	isResult()
}

// Ok carries a successful page. Cached is true when it was served from the
// result cache.
type Ok struct {
	Data   Page
	Cached bool
}

func (o Ok) Page() Page { return o.Data }
func (Ok) isResult() {}

// LoggedFailure records why a search degraded to the empty page.
type LoggedFailure struct {
	Err error
}

func (LoggedFailure) Page() Page { return EmptyPage() }
func (LoggedFailure) isResult() {}
