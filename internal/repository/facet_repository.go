package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/queer-film-catalog/internal/database"
	"github.com/iliyamo/queer-film-catalog/internal/model"
)

// FacetRepo reads the enumerable facet tables that populate search filter
// controls. Cardinalities are small, so nothing is paginated.
type FacetRepo struct {
	db *database.DB
}

func NewFacetRepo(db *database.DB) *FacetRepo { return &FacetRepo{db: db} }

func (r *FacetRepo) Genres(ctx context.Context) ([]model.Facet, error) {
	return r.listFacets(ctx, "genres")
}

func (r *FacetRepo) Directors(ctx context.Context) ([]model.Facet, error) {
	return r.listFacets(ctx, "directors")
}

func (r *FacetRepo) Countries(ctx context.Context) ([]model.IntFacet, error) {
	return r.listIntFacets(ctx, "countries")
}

func (r *FacetRepo) Keywords(ctx context.Context) ([]model.IntFacet, error) {
	return r.listIntFacets(ctx, "keywords")
}

// ReleaseDates returns every non-null release date text, unprocessed.
func (r *FacetRepo) ReleaseDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT release_date FROM movies WHERE release_date IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("release dates: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("release dates: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *FacetRepo) listFacets(ctx context.Context, table string) ([]model.Facet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	out := []model.Facet{}
	for rows.Next() {
		var f model.Facet
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("list %s: %w", table, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FacetRepo) listIntFacets(ctx context.Context, table string) ([]model.IntFacet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	out := []model.IntFacet{}
	for rows.Next() {
		var f model.IntFacet
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("list %s: %w", table, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
