package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used for snapshots. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cache_snapshots (
	name       TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresDB is a snapshot store backed by pgx.
type PostgresDB struct {
	pool    Pool
	closeFn func()
}

// OpenPostgres connects to Postgres and applies the schema.
func OpenPostgres(ctx context.Context, connString string) (*PostgresDB, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	p := &PostgresDB{pool: pool, closeFn: pool.Close}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresDB wraps an existing pool. The caller owns the pool's lifetime.
func NewPostgresDB(pool Pool) *PostgresDB {
	return &PostgresDB{pool: pool}
}

// Migrate creates the snapshot table.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool if this PostgresDB opened it.
func (p *PostgresDB) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

// Backend returns the snapshot backend for the named cache.
func (p *PostgresDB) Backend(name string) Backend {
	return &postgresBackend{pool: p.pool, name: name}
}

type postgresBackend struct {
	pool Pool
	name string
}

func (b *postgresBackend) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.pool.QueryRow(ctx,
		`SELECT data FROM cache_snapshots WHERE name = $1`, b.name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: load snapshot %s", b.name)
	}
	return data, nil
}

func (b *postgresBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO cache_snapshots (name, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		b.name, data,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save snapshot %s", b.name)
	}
	return nil
}
