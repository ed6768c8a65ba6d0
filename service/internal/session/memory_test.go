// internal/session/memory_test.go
package session

import (
	"context"
	"testing"

	"github.com/pippijn/sint/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() *Entry {
	rounds := []engine.RoundBlock{block(rec("P1", engine.Move(0)))}
	return &Entry{
		Roster:   []engine.PlayerID{"P1"},
		Seed:     7,
		Rounds:   rounds,
		Digests:  Digests(rounds),
		Snapshot: &engine.Snapshot{TurnCount: 1, Players: map[engine.PlayerID]engine.Player{"P1": {ID: "P1", AP: 1}}},
		History:  []engine.Record{rec("P1", engine.Move(0))},
		Score:    3.5,
	}
}

// testStore runs the Store contract against s.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "  ")
	assert.ErrorIs(t, err, ErrIDRequired)
	assert.ErrorIs(t, s.Put(ctx, "", sampleEntry()), ErrIDRequired)

	in := sampleEntry()
	require.NoError(t, s.Put(ctx, "a", in))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, in.Seed, got.Seed)
	assert.Equal(t, in.Digests, got.Digests)
	assert.Equal(t, in.Snapshot.Fingerprint(), got.Snapshot.Fingerprint())
	assert.True(t, engine.RoundBlock(in.History).Equal(got.History))
	assert.False(t, got.UpdatedAt.IsZero())

	// Neither the stored input nor a returned entry aliases the store.
	in.Snapshot.TurnCount = 99
	got.Snapshot.Players["P1"] = engine.Player{ID: "P1", AP: 0}
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Snapshot.TurnCount)
	assert.Equal(t, 1, again.Snapshot.Players["P1"].AP)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "a"), "deleting twice")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	testStore(t, m)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntryCloneNil(t *testing.T) {
	var e *Entry
	assert.Nil(t, e.Clone())
	assert.NotEmpty(t, NewID())
	assert.NotEqual(t, NewID(), NewID())
}
