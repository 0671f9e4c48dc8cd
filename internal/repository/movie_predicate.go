package repository

import (
	"strings"

	"github.com/iliyamo/queer-film-catalog/internal/database"
)

// MovieFilter is the sparse set of optional search criteria. Zero values mean
// "no constraint". The json tags define the canonical serialization used for
// cache keys.
//
// When a facet is given both by id and by name the id wins, except for
// keywords where a free-text Keyword takes precedence over KeywordIDs.
type MovieFilter struct {
	Title      string  `json:"title,omitempty"`
	Type       string  `json:"type,omitempty"`
	Year       string  `json:"year,omitempty"`
	Keyword    string  `json:"keyword,omitempty"`
	KeywordIDs []int64 `json:"keywordIds,omitempty"`
	Director   string  `json:"director,omitempty"`
	DirectorID string  `json:"directorId,omitempty"`
	Country    string  `json:"country,omitempty"`
	CountryID  int64   `json:"countryId,omitempty"`
	Genre      string  `json:"genre,omitempty"`
	GenreID    string  `json:"genreId,omitempty"`
	StartYear  string  `json:"startYear,omitempty"`
	EndYear    string  `json:"endYear,omitempty"`
}

// Normalize trims every text field so that "  carol " and "carol" produce the
// same predicate and cache key.
func (f MovieFilter) Normalize() MovieFilter {
	f.Title = strings.TrimSpace(f.Title)
	f.Type = strings.TrimSpace(f.Type)
	f.Year = strings.TrimSpace(f.Year)
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Director = strings.TrimSpace(f.Director)
	f.DirectorID = strings.TrimSpace(f.DirectorID)
	f.Country = strings.TrimSpace(f.Country)
	f.Genre = strings.TrimSpace(f.Genre)
	f.GenreID = strings.TrimSpace(f.GenreID)
	f.StartYear = strings.TrimSpace(f.StartYear)
	f.EndYear = strings.TrimSpace(f.EndYear)
	if len(f.KeywordIDs) == 0 {
		f.KeywordIDs = nil
	}
	return f
}

// endOfYearTail is appended to EndYear for the upper range bound. The range
// is a lexical comparison on release_date text, so "1999-compilation" falls
// inside 1990..2000 while "2000-special" does not.
const endOfYearTail = "-12-31"

// Predicate is a composed WHERE condition over the movies table aliased m.
// Clauses are ANDed; Args line up with the '?' markers in order.
type Predicate struct {
	Clauses []string
	Args    []any
}

// Where renders the condition, "1=1" when no clause applies.
func (p Predicate) Where() string {
	if len(p.Clauses) == 0 {
		return "1=1"
	}
	return strings.Join(p.Clauses, " AND ")
}

func (p *Predicate) add(clause string, args ...any) {
	p.Clauses = append(p.Clauses, clause)
	p.Args = append(p.Args, args...)
}

// facetJoin describes one many-to-many facet for the EXISTS subqueries.
type facetJoin struct {
	join  string // join table
	fk    string // join table column referencing the facet
	table string // facet table
}

var (
	keywordJoin  = facetJoin{join: "movie_keywords", fk: "keyword_id", table: "keywords"}
	directorJoin = facetJoin{join: "movie_directors", fk: "director_id", table: "directors"}
	countryJoin  = facetJoin{join: "movie_countries", fk: "country_id", table: "countries"}
	genreJoin    = facetJoin{join: "movie_genres", fk: "genre_id", table: "genres"}
)

// byIDs matches movies with at least one join row whose facet id is in ids.
func (fj facetJoin) byIDs(n int) string {
	return "EXISTS (SELECT 1 FROM " + fj.join + " j WHERE j.movie_id = m.id AND j." +
		fj.fk + " IN (" + database.Placeholders(n) + "))"
}

// byName matches movies with at least one facet whose name contains the
// pattern, case-insensitively.
func (fj facetJoin) byName() string {
	return "EXISTS (SELECT 1 FROM " + fj.join + " j JOIN " + fj.table + " f ON f.id = j." +
		fj.fk + " WHERE j.movie_id = m.id AND LOWER(f.name) LIKE ? ESCAPE '!')"
}

// BuildPredicate translates a filter into the AND of its present criteria.
func BuildPredicate(f MovieFilter) Predicate {
	f = f.Normalize()
	var p Predicate

	if f.Title != "" {
		p.add("LOWER(m.title) LIKE ? ESCAPE '!'", containsPattern(f.Title))
	}
	if f.Type != "" {
		p.add("m.type = ?", f.Type)
	}
	if f.Year != "" {
		p.add("m.release_date LIKE ? ESCAPE '!'", escapeLike(f.Year)+"%")
	}
	if f.StartYear != "" {
		p.add("m.release_date >= ?", f.StartYear)
	}
	if f.EndYear != "" {
		p.add("m.release_date <= ?", f.EndYear+endOfYearTail)
	}

	switch {
	case f.Keyword != "":
		p.add(keywordJoin.byName(), containsPattern(f.Keyword))
	case len(f.KeywordIDs) > 0:
		args := make([]any, len(f.KeywordIDs))
		for i, id := range f.KeywordIDs {
			args[i] = id
		}
		p.add(keywordJoin.byIDs(len(args)), args...)
	}

	switch {
	case f.DirectorID != "":
		p.add(directorJoin.byIDs(1), f.DirectorID)
	case f.Director != "":
		p.add(directorJoin.byName(), containsPattern(f.Director))
	}

	switch {
	case f.CountryID != 0:
		p.add(countryJoin.byIDs(1), f.CountryID)
	case f.Country != "":
		p.add(countryJoin.byName(), containsPattern(f.Country))
	}

	switch {
	case f.GenreID != "":
		p.add(genreJoin.byIDs(1), f.GenreID)
	case f.Genre != "":
		p.add(genreJoin.byName(), containsPattern(f.Genre))
	}

	return p
}
