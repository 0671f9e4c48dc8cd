package model

// Facet is an (id, name) pair for a classification dimension whose ids are
// UUID strings (genres, directors).
type Facet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IntFacet is an (id, name) pair for dimensions keyed by auto-increment
// integers (countries, keywords).
type IntFacet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FacetCount pairs a facet name with the number of movies tagged with it.
type FacetCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Associations carries the full facet id sets of one movie. Writes replace
// every set as a whole.
type Associations struct {
	GenreIDs    []string `json:"genre_ids"`
	DirectorIDs []string `json:"director_ids"`
	CountryIDs  []int64  `json:"country_ids"`
	KeywordIDs  []int64  `json:"keyword_ids"`
}
