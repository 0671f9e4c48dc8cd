package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/queer-film-catalog/internal/config"
)

// DB is the single shared database handle of the process. It is constructed
// once at startup and injected into every repository. Queries are written with
// '?' placeholders and rebound for the driver's dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// New wraps an already opened pool. It is mostly used by tests that bring
// their own *sql.DB (sqlmock, in-memory sqlite).
func New(db *sql.DB, d Dialect) *DB {
	return &DB{DB: db, Dialect: d}
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DBConfig) (*DB, error) {
	d, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildDSN(d, cfg)
	}

	driver := d.DriverName()
	if d == SQLite {
		driver = sqliteDriver
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	if d == SQLite {
		// one writer; an in-memory database lives and dies with its connection
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return New(db, d), nil
}

func buildDSN(d Dialect, cfg config.DBConfig) string {
	switch d {
	case Postgres:
		parts := []string{
			"host=" + cfg.Host,
			"port=" + cfg.Port,
			"user=" + cfg.User,
			"dbname=" + cfg.Name,
			"sslmode=require",
		}
		if cfg.Pass != "" {
			parts = append(parts, "password="+cfg.Pass)
		}
		return strings.Join(parts, " ")
	case SQLite:
		return cfg.Name
	default:
		auth := cfg.User
		if cfg.Pass != "" {
			auth = fmt.Sprintf("%s:%s", cfg.User, cfg.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, cfg.Host, cfg.Port, cfg.Name)
	}
}

// QueryContext rebinds q for the dialect before running it.
func (db *DB) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.Rebind(q), args...)
}

// QueryRowContext rebinds q for the dialect before running it.
func (db *DB) QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.Rebind(q), args...)
}

// ExecContext rebinds q for the dialect before running it.
func (db *DB) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.Rebind(q), args...)
}

// Tx is a transaction that rebinds like DB.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

// BeginTx starts a transaction on the shared pool.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: db.Dialect}, nil
}

func (tx *Tx) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return tx.Tx.QueryContext(ctx, tx.dialect.Rebind(q), args...)
}

func (tx *Tx) QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, tx.dialect.Rebind(q), args...)
}

func (tx *Tx) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return tx.Tx.ExecContext(ctx, tx.dialect.Rebind(q), args...)
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}
