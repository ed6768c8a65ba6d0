// internal/audit/postgres.go
package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS verifications (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	rounds      INTEGER NOT NULL,
	consumed    INTEGER NOT NULL,
	success     BOOLEAN NOT NULL,
	incomplete  BOOLEAN NOT NULL,
	cache_hit   BOOLEAN NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	fingerprint TEXT NOT NULL,
	summary     TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS verifications_session ON verifications (session_id, created_at);
`

// Postgres records verifications in PostgreSQL through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Record inserts r.
func (p *Postgres) Record(ctx context.Context, r Record) error {
	prepare(&r)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO verifications (id, session_id, rounds, consumed, success, incomplete, cache_hit, score, fingerprint, summary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.SessionID, r.Rounds, r.Consumed, r.Success, r.Incomplete, r.CacheHit,
		r.Score, formatFingerprint(r.Fingerprint), r.Summary, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// List returns the records of a session, oldest first.
func (p *Postgres) List(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, session_id, rounds, consumed, success, incomplete, cache_hit, score, fingerprint, summary, created_at
		 FROM verifications WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			r  Record
			fp string
		)
		if err := row.Scan(&r.ID, &r.SessionID, &r.Rounds, &r.Consumed, &r.Success, &r.Incomplete, &r.CacheHit,
			&r.Score, &fp, &r.Summary, &r.CreatedAt); err != nil {
			return r, err
		}
		f, err := parseFingerprint(fp)
		r.Fingerprint = f
		return r, err
	})
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
