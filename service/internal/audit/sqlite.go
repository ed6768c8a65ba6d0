// internal/audit/sqlite.go
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS verifications (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	rounds      INTEGER NOT NULL,
	consumed    INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	incomplete  INTEGER NOT NULL,
	cache_hit   INTEGER NOT NULL,
	score       REAL NOT NULL,
	fingerprint TEXT NOT NULL,
	summary     TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS verifications_session ON verifications (session_id, created_at);
`

// SQLite records verifications in a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit: sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Record inserts r.
func (s *SQLite) Record(ctx context.Context, r Record) error {
	prepare(&r)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, session_id, rounds, consumed, success, incomplete, cache_hit, score, fingerprint, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.SessionID, r.Rounds, r.Consumed, r.Success, r.Incomplete, r.CacheHit,
		r.Score, formatFingerprint(r.Fingerprint), r.Summary, r.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// List returns the records of a session, oldest first.
func (s *SQLite) List(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, rounds, consumed, success, incomplete, cache_hit, score, fingerprint, summary, created_at
		 FROM verifications WHERE session_id = ? ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			id, fp  string
			created int64
		)
		if err := rows.Scan(&id, &r.SessionID, &r.Rounds, &r.Consumed, &r.Success, &r.Incomplete, &r.CacheHit,
			&r.Score, &fp, &r.Summary, &created); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("audit: bad id %q: %w", id, err)
		}
		if r.Fingerprint, err = parseFingerprint(fp); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
