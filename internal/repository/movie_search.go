package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/queer-film-catalog/internal/database"
	"github.com/iliyamo/queer-film-catalog/internal/model"
)

// CountMovies returns how many movies satisfy the predicate, unpaginated.
func (r *MovieRepo) CountMovies(ctx context.Context, p Predicate) (int64, error) {
	var total int64
	q := `SELECT COUNT(*) FROM movies m WHERE ` + p.Where()
	if err := r.db.QueryRowContext(ctx, q, p.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return total, nil
}

// FindMovies returns one bounded slice of the movies satisfying the
// predicate, each enriched with its facets.
func (r *MovieRepo) FindMovies(ctx context.Context, p Predicate, offset, limit int) ([]model.MovieSummary, error) {
	if limit <= 0 {
		return []model.MovieSummary{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + movieColumns + `
		FROM movies m
		WHERE ` + p.Where() + `
		` + movieOrder + `
		LIMIT ? OFFSET ?`
	args := append(append([]any{}, p.Args...), limit, offset)

	movies, err := queryMovies(ctx, r.db, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	out, err := attachFacets(ctx, r.db, movies)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	return out, nil
}

// Featured returns boosted movies in the standard order.
func (r *MovieRepo) Featured(ctx context.Context, limit int) ([]model.MovieSummary, error) {
	var p Predicate
	p.add("m.boost = ?", true)
	return r.FindMovies(ctx, p, 0, limit)
}

// queryMovies runs q and scans every row as a movie. The rows are fully
// drained and closed before returning so callers may issue follow-up queries
// on a single-connection pool.
func queryMovies(ctx context.Context, q querier, sqlText string, args ...any) ([]model.Movie, error) {
	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// attachFacets loads the four facet lists for all movies with one query per
// facet and returns summaries in the input order.
func attachFacets(ctx context.Context, q querier, movies []model.Movie) ([]model.MovieSummary, error) {
	out := make([]model.MovieSummary, len(movies))
	if len(movies) == 0 {
		return out, nil
	}
	index := make(map[string]int, len(movies))
	ids := make([]any, len(movies))
	for i, m := range movies {
		out[i] = model.NewSummary(m)
		index[m.ID] = i
		ids[i] = m.ID
	}
	in := database.Placeholders(len(ids))

	err := scanFacetRows(ctx, q, `SELECT j.movie_id, f.id, f.name
		FROM movie_genres j JOIN genres f ON f.id = j.genre_id
		WHERE j.movie_id IN (`+in+`) ORDER BY f.name, f.id`, ids,
		func(movieID, id, name string) {
			s := &out[index[movieID]]
			s.Genres = append(s.Genres, model.Facet{ID: id, Name: name})
		})
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}

	err = scanFacetRows(ctx, q, `SELECT j.movie_id, f.id, f.name
		FROM movie_directors j JOIN directors f ON f.id = j.director_id
		WHERE j.movie_id IN (`+in+`) ORDER BY f.name, f.id`, ids,
		func(movieID, id, name string) {
			s := &out[index[movieID]]
			s.Directors = append(s.Directors, model.Facet{ID: id, Name: name})
		})
	if err != nil {
		return nil, fmt.Errorf("directors: %w", err)
	}

	err = scanIntFacetRows(ctx, q, `SELECT j.movie_id, f.id, f.name
		FROM movie_countries j JOIN countries f ON f.id = j.country_id
		WHERE j.movie_id IN (`+in+`) ORDER BY f.name, f.id`, ids,
		func(movieID string, id int64, name string) {
			s := &out[index[movieID]]
			s.Countries = append(s.Countries, model.IntFacet{ID: id, Name: name})
		})
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}

	err = scanIntFacetRows(ctx, q, `SELECT j.movie_id, f.id, f.name
		FROM movie_keywords j JOIN keywords f ON f.id = j.keyword_id
		WHERE j.movie_id IN (`+in+`) ORDER BY f.name, f.id`, ids,
		func(movieID string, id int64, name string) {
			s := &out[index[movieID]]
			s.Keywords = append(s.Keywords, model.IntFacet{ID: id, Name: name})
		})
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	return out, nil
}

func scanFacetRows(ctx context.Context, q querier, sqlText string, args []any, fn func(movieID, id, name string)) error {
	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var movieID, id, name string
		if err := rows.Scan(&movieID, &id, &name); err != nil {
			return err
		}
		fn(movieID, id, name)
	}
	return rows.Err()
}

func scanIntFacetRows(ctx context.Context, q querier, sqlText string, args []any, fn func(movieID string, id int64, name string)) error {
	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			movieID, name string
			id            int64
		)
		if err := rows.Scan(&movieID, &id, &name); err != nil {
			return err
		}
		fn(movieID, id, name)
	}
	return rows.Err()
}
