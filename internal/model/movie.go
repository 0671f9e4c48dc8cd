package model

import (
	"strings"
	"time"
)

// MovieType enumerates the kinds of content the catalog holds. Runtime is
// minutes for films and the number of seasons for series.
type MovieType string

const (
	TypeFeatureFilm MovieType = "feature_film"
	TypeShortFilm   MovieType = "short_film"
	TypeSeries      MovieType = "series"
	TypeTVProgram   MovieType = "tv_program"
)

// MovieTypes lists every valid content type in display order.
var MovieTypes = []MovieType{TypeFeatureFilm, TypeShortFilm, TypeSeries, TypeTVProgram}

// Valid reports whether t is one of the known content types.
func (t MovieType) Valid() bool {
	for _, v := range MovieTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Movie mirrors the movies table.
//
// Fields:
//
//	ID            – movies.id, a UUID string.
//	Title         – display title.
//	OriginalTitle – title in the original language, optional.
//	ReleaseDate   – free text that usually starts with a year ("1999",
//	                "1999-05-01"); it is not a strict date.
//	Runtime       – minutes for films, seasons for series; nullable.
//	ImageURL      – object storage reference, nullable.
//	Boost         – marks featured items for the home page.
type Movie struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	OriginalTitle *string    `json:"original_title,omitempty"`
	Description   *string    `json:"description"`
	ReleaseDate   *string    `json:"release_date"`
	Language      *string    `json:"language"`
	Runtime       *int       `json:"runtime"`
	ImageURL      *string    `json:"image_url"`
	Type          *MovieType `json:"type"`
	Boost         bool       `json:"boost"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MovieSummary is a movie enriched with the names of its facets, flattened
// from the join tables. It is the unit returned by search and detail reads.
type MovieSummary struct {
	Movie
	Genres    []Facet    `json:"genres"`
	Directors []Facet    `json:"directors"`
	Countries []IntFacet `json:"countries"`
	Keywords  []IntFacet `json:"keywords"`
}

// NewSummary returns a summary with empty, non-nil facet lists so JSON
// always carries arrays.
func NewSummary(m Movie) MovieSummary {
	return MovieSummary{
		Movie:     m,
		Genres:    []Facet{},
		Directors: []Facet{},
		Countries: []IntFacet{},
		Keywords:  []IntFacet{},
	}
}

// ReleaseYear extracts the leading four-digit year of a free-text release
// date. ok is false when the text does not start with a year.
func ReleaseYear(releaseDate string) (year string, ok bool) {
	s := strings.TrimSpace(releaseDate)
	if len(s) < 4 {
		return "", false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return s[:4], true
}
