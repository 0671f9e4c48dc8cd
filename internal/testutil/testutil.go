// Package testutil provides an in-memory SQLite catalog with the production
// schema plus seeding helpers shared by repository, search and handler tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/queer-film-catalog/internal/config"
	"github.com/iliyamo/queer-film-catalog/internal/database"
)

// Catalog wraps a migrated in-memory database.
type Catalog struct {
	DB *database.DB
	t  testing.TB
	n  int
}

// NewCatalog opens a fresh in-memory database and applies the schema. The
// database is closed when the test ends.
func NewCatalog(t testing.TB) *Catalog {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: "sqlite3", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return &Catalog{DB: db, t: t}
}

// Exec runs a seeding statement and fails the test on error.
func (c *Catalog) Exec(q string, args ...any) {
	c.t.Helper()
	if _, err := c.DB.ExecContext(context.Background(), q, args...); err != nil {
		c.t.Fatalf("seed %q: %v", q, err)
	}
}

func (c *Catalog) insertID(q string, args ...any) int64 {
	c.t.Helper()
	res, err := c.DB.ExecContext(context.Background(), q, args...)
	if err != nil {
		c.t.Fatalf("seed %q: %v", q, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		c.t.Fatalf("seed last insert id: %v", err)
	}
	return id
}

// Genre inserts a genre and returns its id.
func (c *Catalog) Genre(name string) string {
	id := uuid.NewString()
	c.Exec(`INSERT INTO genres (id, name) VALUES (?, ?)`, id, name)
	return id
}

// Director inserts a director and returns its id.
func (c *Catalog) Director(name string) string {
	id := uuid.NewString()
	c.Exec(`INSERT INTO directors (id, name) VALUES (?, ?)`, id, name)
	return id
}

// Country inserts a country and returns its id.
func (c *Catalog) Country(name string) int64 {
	return c.insertID(`INSERT INTO countries (name) VALUES (?)`, name)
}

// Keyword inserts a keyword and returns its id.
func (c *Catalog) Keyword(name string) int64 {
	return c.insertID(`INSERT INTO keywords (name) VALUES (?)`, name)
}

// Movie describes a seeded movie. Empty ReleaseDate is stored as NULL.
type Movie struct {
	ID          string
	Title       string
	ReleaseDate string
	Type        string
	Boost       bool
	Genres      []string
	Directors   []string
	Countries   []int64
	Keywords    []int64
}

// AddMovie inserts m with its associations and returns the movie id.
// Creation timestamps increase with every call so ordering is stable.
func (c *Catalog) AddMovie(m Movie) string {
	c.t.Helper()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Title == "" {
		m.Title = fmt.Sprintf("Movie %d", c.n+1)
	}
	c.n++
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(c.n) * time.Minute)

	var release, typ any
	if m.ReleaseDate != "" {
		release = m.ReleaseDate
	}
	if m.Type != "" {
		typ = m.Type
	}
	c.Exec(`INSERT INTO movies (id, title, release_date, type, boost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, m.ID, m.Title, release, typ, m.Boost, ts, ts)
	for _, g := range m.Genres {
		c.Exec(`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`, m.ID, g)
	}
	for _, d := range m.Directors {
		c.Exec(`INSERT INTO movie_directors (movie_id, director_id) VALUES (?, ?)`, m.ID, d)
	}
	for _, co := range m.Countries {
		c.Exec(`INSERT INTO movie_countries (movie_id, country_id) VALUES (?, ?)`, m.ID, co)
	}
	for _, k := range m.Keywords {
		c.Exec(`INSERT INTO movie_keywords (movie_id, keyword_id) VALUES (?, ?)`, m.ID, k)
	}
	return m.ID
}

// AddList inserts a list directly and returns its id.
func (c *Catalog) AddList(title, userID string, collection bool) string {
	id := uuid.NewString()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Exec(`INSERT INTO lists (id, title, user_id, is_collection, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, id, title, userID, collection, ts, ts)
	return id
}

// Count returns SELECT COUNT(*) for an arbitrary query.
func (c *Catalog) Count(q string, args ...any) int {
	c.t.Helper()
	var n int
	if err := c.DB.QueryRowContext(context.Background(), q, args...).Scan(&n); err != nil {
		c.t.Fatalf("count %q: %v", q, err)
	}
	return n
}
