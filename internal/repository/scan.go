package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/queer-film-catalog/internal/model"
)

// querier is satisfied by both *database.DB and *database.Tx.
type querier interface {
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const movieColumns = `m.id, m.title, m.original_title, m.description, m.release_date,
	m.language, m.runtime, m.image_url, m.type, m.boost, m.created_at, m.updated_at`

// movieOrder is the single ordering key of every movie listing: release date
// descending with undated movies last, ties broken by id.
const movieOrder = `ORDER BY (m.release_date IS NULL), m.release_date DESC, m.id ASC`

func scanMovie(s rowScanner) (model.Movie, error) {
	var (
		m                                       model.Movie
		original, desc, release, lang, img, typ sql.NullString
		runtime                                 sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.Title, &original, &desc, &release, &lang, &runtime,
		&img, &typ, &m.Boost, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return model.Movie{}, err
	}
	m.OriginalTitle = nullString(original)
	m.Description = nullString(desc)
	m.ReleaseDate = nullString(release)
	m.Language = nullString(lang)
	m.ImageURL = nullString(img)
	if runtime.Valid {
		v := int(runtime.Int64)
		m.Runtime = &v
	}
	if typ.Valid && typ.String != "" {
		t := model.MovieType(typ.String)
		m.Type = &t
	}
	return m, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// optString converts an optional string to a driver value, storing blank
// strings as NULL.
func optString(p *string) any {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return *p
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func optType(p *model.MovieType) any {
	if p == nil || *p == "" {
		return nil
	}
	return string(*p)
}

// escapeLike escapes LIKE wildcards with '!' so user input matches literally.
// Queries using it must add ESCAPE '!'.
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// containsPattern builds a lower-cased '%needle%' pattern for
// case-insensitive substring matching.
func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(s)) + "%"
}
