package model

import "time"

// List is a user-owned named collection of movies. IsCollection marks
// admin-curated lists that every visitor can see.
type List struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	UserID       string    `json:"user_id"`
	IsCollection bool      `json:"is_collection"`
	MovieCount   int64     `json:"movie_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListMovie is one membership row of list_movies.
type ListMovie struct {
	ListID  string    `json:"list_id"`
	MovieID string    `json:"movie_id"`
	AddedAt time.Time `json:"added_at"`
}
