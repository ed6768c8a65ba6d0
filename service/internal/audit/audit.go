// internal/audit/audit.go

// Package audit records the outcome of every session verification for
// offline tooling. Recording is best effort: callers log recorder errors and
// carry on.
package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Record is one verification outcome.
type Record struct {
	ID          uuid.UUID
	SessionID   string
	Rounds      int
	Consumed    int
	Success     bool
	Incomplete  bool
	CacheHit    bool
	Score       float64
	Fingerprint uint64
	Summary     string
	CreatedAt   time.Time
}

// Recorder persists records.
type Recorder interface {
	Record(ctx context.Context, r Record) error
	Close() error
}

// Nop discards every record.
type Nop struct{}

func (Nop) Record(context.Context, Record) error { return nil }
func (Nop) Close() error                         { return nil }

// prepare fills the id and timestamp of r if unset.
func prepare(r *Record) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// Fingerprints do not fit a signed 64-bit column, so they are stored as hex.
func formatFingerprint(f uint64) string { return strconv.FormatUint(f, 16) }

func parseFingerprint(s string) (uint64, error) {
	f, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("audit: bad fingerprint %q: %w", s, err)
	}
	return f, nil
}

// Open returns the recorder for backend: "none", "sqlite" or "postgres".
func Open(ctx context.Context, backend, dsn string) (Recorder, error) {
	switch backend {
	case "", "none":
		return Nop{}, nil
	case "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("audit: unknown backend %q", backend)
}
