// internal/audit/audit_test.go
package audit

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(session string, hit bool) Record {
	return Record{
		SessionID:   session,
		Rounds:      3,
		Consumed:    2,
		Success:     false,
		Incomplete:  true,
		CacheHit:    hit,
		Score:       412.5,
		Fingerprint: math.MaxUint64 - 7,
		Summary:     "round 2 action 0: P1 performs Bake: invalid action",
	}
}

type lister interface {
	Recorder
	List(ctx context.Context, sessionID string) ([]Record, error)
}

func testRecorder(t *testing.T, r lister) {
	t.Helper()
	ctx := context.Background()

	session := "s-" + uuid.NewString()
	require.NoError(t, r.Record(ctx, sample(session, false)))
	require.NoError(t, r.Record(ctx, sample(session, true)))
	require.NoError(t, r.Record(ctx, sample("other-"+session, true)))

	got, err := r.List(ctx, session)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].CacheHit)
	assert.True(t, got[1].CacheHit)
	for _, rec := range got {
		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.Equal(t, session, rec.SessionID)
		assert.Equal(t, uint64(math.MaxUint64-7), rec.Fingerprint)
		assert.Equal(t, 412.5, rec.Score)
		assert.True(t, rec.Incomplete)
		assert.False(t, rec.Success)
		assert.WithinDuration(t, time.Now(), rec.CreatedAt, time.Minute)
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)

	none, err := r.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	testRecorder(t, db)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Record(context.Background(), sample("s", false)))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.List(context.Background(), "s")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// TestPostgres needs a live server: SINT_TEST_POSTGRES_DSN=postgres://...
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("SINT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SINT_TEST_POSTGRES_DSN not set")
	}
	db, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	testRecorder(t, db)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{"", "none"} {
		r, err := Open(ctx, backend, "")
		require.NoError(t, err)
		assert.Equal(t, Nop{}, r)
		assert.NoError(t, r.Record(ctx, sample("s", false)))
		assert.NoError(t, r.Close())
	}

	_, err := Open(ctx, "mongo", "")
	assert.ErrorContains(t, err, `unknown backend "mongo"`)

	_, err = Open(ctx, "sqlite", " ")
	assert.Error(t, err)

	r, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestFingerprintHex(t *testing.T) {
	for _, f := range []uint64{0, 1, math.MaxUint64} {
		got, err := parseFingerprint(formatFingerprint(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := parseFingerprint("zz")
	assert.Error(t, err)
}
