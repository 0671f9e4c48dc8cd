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

// ListRepo manages user lists and their movie memberships. Ownership is
// enforced here: callers pass the acting user and whether they are an admin.
type ListRepo struct {
	db *database.DB
}

func NewListRepo(db *database.DB) *ListRepo { return &ListRepo{db: db} }

// Actor identifies who performs a list mutation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

const listColumns = `l.id, l.title, l.description, l.user_id, l.is_collection,
	(SELECT COUNT(*) FROM list_movies lm WHERE lm.list_id = l.id), l.created_at, l.updated_at`

func scanList(s rowScanner) (model.List, error) {
	var (
		l    model.List
		desc sql.NullString
	)
	if err := s.Scan(&l.ID, &l.Title, &desc, &l.UserID, &l.IsCollection, &l.MovieCount,
		&l.CreatedAt, &l.UpdatedAt); err != nil {
		return model.List{}, err
	}
	l.Description = nullString(desc)
	return l, nil
}

// Create inserts a new list owned by l.UserID. Only admins may create
// collections; for anyone else IsCollection is forced to false.
func (r *ListRepo) Create(ctx context.Context, l *model.List, actor Actor) error {
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if actor.UserID == "" {
		return ErrForbidden
	}
	if !actor.IsAdmin {
		l.IsCollection = false
	}
	now := time.Now().UTC().Truncate(time.Second)
	l.ID = uuid.NewString()
	l.UserID = actor.UserID
	l.CreatedAt, l.UpdatedAt = now, now
	l.MovieCount = 0

	const q = `INSERT INTO lists (id, title, description, user_id, is_collection, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, l.ID, l.Title, optString(l.Description), l.UserID,
		l.IsCollection, l.CreatedAt, l.UpdatedAt); err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

// GetByID fetches a list regardless of owner. It returns ErrNotFound when
// absent.
func (r *ListRepo) GetByID(ctx context.Context, id string) (*model.List, error) {
	l, err := scanList(r.db.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists l WHERE l.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return &l, nil
}

// GetVisible fetches a list if the actor may see it: collections are public,
// other lists are visible to their owner and to admins.
func (r *ListRepo) GetVisible(ctx context.Context, id string, actor Actor) (*model.List, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsCollection && !actor.IsAdmin && l.UserID != actor.UserID {
		// private lists are indistinguishable from missing ones
		return nil, ErrNotFound
	}
	return l, nil
}

// ListByUser returns the lists owned by userID, newest first.
func (r *ListRepo) ListByUser(ctx context.Context, userID string) ([]model.List, error) {
	return r.queryLists(ctx, `SELECT `+listColumns+` FROM lists l
		WHERE l.user_id = ? ORDER BY l.created_at DESC, l.id`, userID)
}

// Collections returns every admin-curated public list.
func (r *ListRepo) Collections(ctx context.Context) ([]model.List, error) {
	return r.queryLists(ctx, `SELECT `+listColumns+` FROM lists l
		WHERE l.is_collection = ? ORDER BY l.title, l.id`, true)
}

func (r *ListRepo) queryLists(ctx context.Context, q string, args ...any) ([]model.List, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()
	out := []model.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// authorize loads the owner of a list and checks the actor may modify it.
func authorize(ctx context.Context, q querier, listID string, actor Actor) error {
	var owner string
	if err := q.QueryRowContext(ctx, `SELECT user_id FROM lists WHERE id = ?`, listID).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !actor.IsAdmin && owner != actor.UserID {
		return ErrForbidden
	}
	return nil
}

// Update changes title and description. The collection flag changes only
// when an admin passes a non-nil collection; otherwise it is left as stored.
func (r *ListRepo) Update(ctx context.Context, l *model.List, collection *bool, actor Actor) error {
	l.Title = strings.TrimSpace(l.Title)
	if l.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := authorize(ctx, tx, l.ID, actor); err != nil {
			return err
		}
		now := time.Now().UTC().Truncate(time.Second)
		if actor.IsAdmin && collection != nil {
			_, err := tx.ExecContext(ctx,
				`UPDATE lists SET title = ?, description = ?, is_collection = ?, updated_at = ? WHERE id = ?`,
				l.Title, optString(l.Description), *collection, now, l.ID)
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE lists SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
			l.Title, optString(l.Description), now, l.ID)
		return err
	})
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	*l = *updated
	return nil
}

// Delete removes a list and, first, all of its membership rows.
func (r *ListRepo) Delete(ctx context.Context, id string, actor Actor) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := authorize(ctx, tx, id, actor); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM list_movies WHERE list_id = ?`, id); err != nil {
			return fmt.Errorf("delete list movies: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete list: %w", err)
		}
		return nil
	})
}

// AddMovie appends a movie to a list. Adding a movie twice yields
// ErrConflict; an unknown movie yields ErrNotFound.
func (r *ListRepo) AddMovie(ctx context.Context, listID, movieID string, actor Actor) (*model.ListMovie, error) {
	lm := &model.ListMovie{ListID: listID, MovieID: movieID, AddedAt: time.Now().UTC().Truncate(time.Second)}
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := authorize(ctx, tx, listID, actor); err != nil {
			return err
		}
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, movieID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM list_movies WHERE list_id = ? AND movie_id = ?`, listID, movieID).Scan(&one)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO list_movies (list_id, movie_id, added_at) VALUES (?, ?, ?)`,
			listID, movieID, lm.AddedAt); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("insert list movie: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE lists SET updated_at = ? WHERE id = ?`, lm.AddedAt, listID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lm, nil
}

// RemoveMovie drops one membership row. ErrNotFound is returned when the
// movie was not on the list.
func (r *ListRepo) RemoveMovie(ctx context.Context, listID, movieID string, actor Actor) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := authorize(ctx, tx, listID, actor); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM list_movies WHERE list_id = ? AND movie_id = ?`, listID, movieID)
		if err != nil {
			return fmt.Errorf("delete list movie: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Movies pages through the movies of a list, most recently added first.
func (r *ListRepo) Movies(ctx context.Context, listID string, offset, limit int) ([]model.MovieSummary, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM list_movies WHERE list_id = ?`, listID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count list movies: %w", err)
	}
	if limit <= 0 || total == 0 {
		return []model.MovieSummary{}, total, nil
	}
	q := `SELECT ` + movieColumns + `
		FROM list_movies lm JOIN movies m ON m.id = lm.movie_id
		WHERE lm.list_id = ?
		ORDER BY lm.added_at DESC, m.id ASC
		LIMIT ? OFFSET ?`
	movies, err := queryMovies(ctx, r.db, q, listID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	out, err := attachFacets(ctx, r.db, movies)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	return out, total, nil
}
