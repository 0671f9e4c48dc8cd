package model

// Stats is the admin dashboard summary.
type Stats struct {
	TotalMovies      int64               `json:"total_movies"`
	MoviesByType     map[MovieType]int64 `json:"movies_by_type"`
	UntypedMovies    int64               `json:"untyped_movies"`
	FeaturedMovies   int64               `json:"featured_movies"`
	TotalLists       int64               `json:"total_lists"`
	TotalCollections int64               `json:"total_collections"`
	TopGenres        []FacetCount        `json:"top_genres"`
}
