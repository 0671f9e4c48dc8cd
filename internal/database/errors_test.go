package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queer-film-catalog/internal/config"
)

func TestIsUniqueViolation_DriverErrors(t *testing.T) {
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1452, Message: "duplicate-looking text"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("row 1062: duplicate unique constraint")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db, err := Open(config.DBConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = db.ExecContext(ctx, `CREATE TABLE tags (id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, "a", "queer")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, "a", "trans")
	assert.True(t, IsUniqueViolation(err), "primary key: %v", err)
	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, "b", "queer")
	assert.True(t, IsUniqueViolation(err), "unique: %v", err)
	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, NULL)`, "c")
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err), "not null is a different constraint")
}
