package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/queer-film-catalog/internal/database"
	"github.com/iliyamo/queer-film-catalog/internal/model"
)

// MovieRepo encapsulates every query touching the movies table and its facet
// join tables.
type MovieRepo struct {
	db *database.DB
}

// NewMovieRepo constructs a MovieRepo over the shared database handle.
func NewMovieRepo(db *database.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// GetSummary fetches one movie with its facets. It returns ErrNotFound if no
// row matches.
func (r *MovieRepo) GetSummary(ctx context.Context, id string) (*model.MovieSummary, error) {
	q := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = ?`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	out, err := attachFacets(ctx, r.db, []model.Movie{m})
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &out[0], nil
}

// validateMovie enforces the write-time rules shared by Create and Update.
func validateMovie(m *model.Movie) error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if m.Type != nil && *m.Type != "" && !m.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, *m.Type)
	}
	if m.Runtime != nil && *m.Runtime < 0 {
		return fmt.Errorf("%w: runtime must not be negative", ErrInvalidInput)
	}
	return nil
}

// Create inserts a movie and all of its facet associations in one
// transaction. A fresh UUID and timestamps are assigned to m.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, a model.Associations) error {
	if err := validateMovie(m); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	m.ID = uuid.NewString()
	m.CreatedAt, m.UpdatedAt = now, now

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		const q = `INSERT INTO movies
			(id, title, original_title, description, release_date, language, runtime,
			 image_url, type, boost, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, q, m.ID, m.Title, optString(m.OriginalTitle),
			optString(m.Description), optString(m.ReleaseDate), optString(m.Language),
			optInt(m.Runtime), optString(m.ImageURL), optType(m.Type), m.Boost,
			m.CreatedAt, m.UpdatedAt); err != nil {
			return fmt.Errorf("insert movie: %w", err)
		}
		return insertAssociations(ctx, tx, m.ID, a)
	})
}

// Update overwrites the movie row and replaces every facet association set
// within one transaction, so readers never observe a movie without facets.
// When keepImage is true the stored image reference is preserved.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie, a model.Associations, keepImage bool) error {
	if err := validateMovie(m); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		var (
			createdAt time.Time
			image     sql.NullString
		)
		err := tx.QueryRowContext(ctx, `SELECT created_at, image_url FROM movies WHERE id = ?`, m.ID).
			Scan(&createdAt, &image)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("load movie: %w", err)
		}
		m.CreatedAt = createdAt
		if keepImage {
			m.ImageURL = nullString(image)
		}

		const q = `UPDATE movies SET
			title = ?, original_title = ?, description = ?, release_date = ?, language = ?,
			runtime = ?, image_url = ?, type = ?, boost = ?, updated_at = ?
			WHERE id = ?`
		if _, err := tx.ExecContext(ctx, q, m.Title, optString(m.OriginalTitle),
			optString(m.Description), optString(m.ReleaseDate), optString(m.Language),
			optInt(m.Runtime), optString(m.ImageURL), optType(m.Type), m.Boost,
			m.UpdatedAt, m.ID); err != nil {
			return fmt.Errorf("update movie: %w", err)
		}
		return replaceAssociations(ctx, tx, m.ID, a)
	})
}

// ReplaceAssociations atomically swaps every facet set of a movie.
func (r *MovieRepo) ReplaceAssociations(ctx context.Context, movieID string, a model.Associations) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, movieID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		return replaceAssociations(ctx, tx, movieID, a)
	})
}

// Delete removes the movie's join rows (facets and list memberships) and then
// the movie itself. ErrNotFound is returned when no movie was deleted.
func (r *MovieRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := clearAssociations(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM list_movies WHERE movie_id = ?`, id); err != nil {
			return fmt.Errorf("delete list memberships: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete movie: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Exists reports whether a movie with id is present.
func (r *MovieRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

var joinTables = []struct{ table, fk string }{
	{"movie_genres", "genre_id"},
	{"movie_directors", "director_id"},
	{"movie_countries", "country_id"},
	{"movie_keywords", "keyword_id"},
}

func clearAssociations(ctx context.Context, tx *database.Tx, movieID string) error {
	for _, jt := range joinTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+jt.table+` WHERE movie_id = ?`, movieID); err != nil {
			return fmt.Errorf("clear %s: %w", jt.table, err)
		}
	}
	return nil
}

func replaceAssociations(ctx context.Context, tx *database.Tx, movieID string, a model.Associations) error {
	if err := clearAssociations(ctx, tx, movieID); err != nil {
		return err
	}
	return insertAssociations(ctx, tx, movieID, a)
}

func insertAssociations(ctx context.Context, tx *database.Tx, movieID string, a model.Associations) error {
	sets := [][]any{
		uniqueStrings(a.GenreIDs),
		uniqueStrings(a.DirectorIDs),
		uniqueInts(a.CountryIDs),
		uniqueInts(a.KeywordIDs),
	}
	for i, jt := range joinTables {
		if err := bulkInsertJoin(ctx, tx, jt.table, jt.fk, movieID, sets[i]); err != nil {
			return err
		}
	}
	return nil
}

// bulkInsertJoin inserts (movie_id, fk) pairs in a single statement. Passing
// an empty id set has no effect.
func bulkInsertJoin(ctx context.Context, tx *database.Tx, table, fk, movieID string, ids []any) error {
	if len(ids) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT INTO " + table + " (movie_id, " + fk + ") VALUES ")
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?)")
		args = append(args, movieID, id)
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func uniqueStrings(in []string) []any {
	seen := make(map[string]bool, len(in))
	out := make([]any, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func uniqueInts(in []int64) []any {
	seen := make(map[int64]bool, len(in))
	out := make([]any, 0, len(in))
	for _, n := range in {
		if n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
