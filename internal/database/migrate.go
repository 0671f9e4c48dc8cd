package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate creates the catalog tables when they do not exist yet. Every
// statement is idempotent so it is safe to run on each startup.
func Migrate(ctx context.Context, db *DB) error {
	name := "schema/" + schemaFile(db.Dialect)
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func schemaFile(d Dialect) string {
	switch d {
	case Postgres:
		return "postgres.sql"
	case SQLite:
		return "sqlite.sql"
	default:
		return "mysql.sql"
	}
}
