package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queer-film-catalog/internal/config"
)

func TestSQLiteLowerFoldsUnicode(t *testing.T) {
	db, err := Open(config.DBConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	var s string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT LOWER(?)`, "ÇÀ ET LÀ").Scan(&s))
	assert.Equal(t, "çà et là", s)

	var null sql.NullString
	require.NoError(t, db.QueryRowContext(ctx, `SELECT LOWER(NULL)`).Scan(&null))
	assert.False(t, null.Valid)

	var n int64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT LOWER(42)`).Scan(&n))
	assert.Equal(t, int64(42), n)
}
