package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cache_snapshots (
	name       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteDB is a snapshot store backed by modernc.org/sqlite. One database
// can hold the snapshots of several caches, one row per cache name.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database and applies the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Backend returns the snapshot backend for the named cache.
func (s *SQLiteDB) Backend(name string) Backend {
	return &sqliteBackend{db: s.db, name: name}
}

type sqliteBackend struct {
	db   *sql.DB
	name string
}

func (b *sqliteBackend) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM cache_snapshots WHERE name = ?`, b.name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: load snapshot %s", b.name)
	}
	return []byte(data), nil
}

func (b *sqliteBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO cache_snapshots (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		b.name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save snapshot %s", b.name)
	}
	return nil
}
