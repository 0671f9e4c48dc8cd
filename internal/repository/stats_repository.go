package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/queer-film-catalog/internal/database"
	"github.com/iliyamo/queer-film-catalog/internal/model"
)

// StatsRepo aggregates catalog counters for the admin dashboard.
type StatsRepo struct {
	db *database.DB
}

func NewStatsRepo(db *database.DB) *StatsRepo { return &StatsRepo{db: db} }

// Stats collects totals and the topN genres by movie count.
func (r *StatsRepo) Stats(ctx context.Context, topN int) (*model.Stats, error) {
	st := &model.Stats{MoviesByType: map[model.MovieType]int64{}, TopGenres: []model.FacetCount{}}

	const totals = `SELECT
		(SELECT COUNT(*) FROM movies),
		(SELECT COUNT(*) FROM movies WHERE boost = ?),
		(SELECT COUNT(*) FROM lists),
		(SELECT COUNT(*) FROM lists WHERE is_collection = ?)`
	if err := r.db.QueryRowContext(ctx, totals, true, true).
		Scan(&st.TotalMovies, &st.FeaturedMovies, &st.TotalLists, &st.TotalCollections); err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM movies GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}
	for rows.Next() {
		var (
			typ sql.NullString
			n   int64
		)
		if err := rows.Scan(&typ, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("stats by type: %w", err)
		}
		if typ.Valid && typ.String != "" {
			st.MoviesByType[model.MovieType(typ.String)] = n
		} else {
			st.UntypedMovies += n
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}

	if topN <= 0 {
		return st, nil
	}
	rows, err = r.db.QueryContext(ctx, `SELECT g.id, g.name, COUNT(*) AS n
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		GROUP BY g.id, g.name
		ORDER BY n DESC, g.name ASC
		LIMIT ?`, topN)
	if err != nil {
		return nil, fmt.Errorf("stats top genres: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var fc model.FacetCount
		if err := rows.Scan(&fc.ID, &fc.Name, &fc.Count); err != nil {
			return nil, fmt.Errorf("stats top genres: %w", err)
		}
		st.TopGenres = append(st.TopGenres, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats top genres: %w", err)
	}
	return st, nil
}
