package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queer-film-catalog/internal/config"
)

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"":           MySQL,
		"mysql":      MySQL,
		"Postgres":   Postgres,
		"postgresql": Postgres,
		"sqlite3":    SQLite,
	}
	for in, want := range cases {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM movies WHERE title = ? AND note = 'why?' AND id IN (?, ?)"
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t,
		"SELECT * FROM movies WHERE title = $1 AND note = 'why?' AND id IN ($2, $3)",
		Postgres.Rebind(q))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
}

func TestBuildDSN(t *testing.T) {
	cfg := config.DBConfig{User: "app", Pass: "secret", Host: "db", Port: "3306", Name: "catalog"}
	assert.Equal(t,
		"app:secret@tcp(db:3306)/catalog?charset=utf8mb4&parseTime=true&loc=UTC",
		buildDSN(MySQL, cfg))
	assert.Equal(t,
		"host=db port=3306 user=app dbname=catalog sslmode=require password=secret",
		buildDSN(Postgres, cfg))
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open(config.DBConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n))
	assert.Zero(t, n)
}
