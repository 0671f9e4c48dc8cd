package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPredicate_EmptyFilterMatchesEverything(t *testing.T) {
	p := BuildPredicate(MovieFilter{Title: "   "})
	assert.Equal(t, "1=1", p.Where())
	assert.Empty(t, p.Args)
}

func TestBuildPredicate_TitleIsCaseInsensitiveSubstring(t *testing.T) {
	p := BuildPredicate(MovieFilter{Title: " Pride "})
	assert.Equal(t, "LOWER(m.title) LIKE ? ESCAPE '!'", p.Where())
	assert.Equal(t, []any{"%pride%"}, p.Args)
}

func TestBuildPredicate_EscapesWildcards(t *testing.T) {
	p := BuildPredicate(MovieFilter{Title: "100%_gay!"})
	assert.Equal(t, []any{"%100!%!_gay!!%"}, p.Args)
}

func TestBuildPredicate_YearAndRange(t *testing.T) {
	p := BuildPredicate(MovieFilter{Year: "1999", StartYear: "1990", EndYear: "2000"})
	assert.Equal(t,
		"m.release_date LIKE ? ESCAPE '!' AND m.release_date >= ? AND m.release_date <= ?",
		p.Where())
	assert.Equal(t, []any{"1999%", "1990", "2000-12-31"}, p.Args)
}

func TestBuildPredicate_KeywordNameBeatsIDs(t *testing.T) {
	p := BuildPredicate(MovieFilter{Keyword: "LGBT", KeywordIDs: []int64{1, 2}})
	assert.Len(t, p.Clauses, 1)
	assert.Contains(t, p.Where(), "LOWER(f.name) LIKE ?")
	assert.Equal(t, []any{"%lgbt%"}, p.Args)

	p = BuildPredicate(MovieFilter{KeywordIDs: []int64{1, 2}})
	assert.Contains(t, p.Where(), "j.keyword_id IN (?, ?)")
	assert.Equal(t, []any{int64(1), int64(2)}, p.Args)
}

func TestBuildPredicate_IDBeatsNameForOtherFacets(t *testing.T) {
	p := BuildPredicate(MovieFilter{
		Director: "Haynes", DirectorID: "d-1",
		Country: "France", CountryID: 7,
		Genre: "Drama", GenreID: "g-1",
	})
	assert.Len(t, p.Clauses, 3)
	assert.Equal(t, []any{"d-1", int64(7), "g-1"}, p.Args)
	assert.NotContains(t, p.Where(), "LIKE")
}

func TestBuildPredicate_AllClausesAreANDed(t *testing.T) {
	p := BuildPredicate(MovieFilter{Title: "a", Type: "series", Genre: "drama", Country: "br"})
	assert.Len(t, p.Clauses, 4)
	assert.Equal(t, 3, strings.Count(p.Where(), " AND ")-strings.Count(strings.Join(p.Clauses, ""), " AND "))
	assert.Len(t, p.Args, 4)
}
