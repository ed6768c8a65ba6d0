// internal/session/cache.go
package session

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/service/internal/audit"
	"github.com/pippijn/sint/service/internal/logging"
	"github.com/pippijn/sint/service/internal/replay"
	"github.com/sirupsen/logrus"
)

// Cache wraps a replay.Verifier with per-session prefix memoization.
//
// Different ids never share state, so any number of sessions may be
// verified concurrently. Calls for the same id must be sequential.
type Cache struct {
	store    Store
	verifier *replay.Verifier
	log      logrus.FieldLogger
	recorder audit.Recorder

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) CacheOption {
	return func(c *Cache) { c.log = l }
}

// WithRecorder records every completed verification.
func WithRecorder(r audit.Recorder) CacheOption {
	return func(c *Cache) { c.recorder = r }
}

// NewCache returns a Cache over store and v.
func NewCache(store Store, v *replay.Verifier, opts ...CacheOption) *Cache {
	c := &Cache{store: store, verifier: v, recorder: audit.Nop{}}
	for _, fn := range opts {
		fn(c)
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	return c
}

// Stats counts cache outcomes since the Cache was created.
type Stats struct {
	Hits   int64
	Misses int64
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// VerifyWithSession verifies rounds for session id. When the session's
// stored log is a strict prefix of rounds, only the new suffix is replayed
// from the stored snapshot. Anything else replays rounds from a new game.
//
// The session is overwritten only after verification completes, with the
// cleanly verified prefix of rounds and the snapshot after it. An error
// leaves the stored session untouched.
func (c *Cache) VerifyWithSession(ctx context.Context, id string, roster []engine.PlayerID, seed uint64, rounds []engine.RoundBlock) (*replay.Result, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	log := c.log.WithField("session", id)

	prev, err := c.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		prev = nil
	case err != nil:
		return nil, err
	}

	req := replay.Request{Roster: roster, Seed: seed, Rounds: rounds}
	base := 0
	hit := prev != nil && prev.Seed == seed && slices.Equal(prev.Roster, roster) &&
		prev.Snapshot != nil && len(prev.Rounds) == len(prev.Digests) && StrictPrefix(prev.Digests, rounds) &&
		SameRounds(prev.Rounds, rounds[:len(prev.Rounds)])
	if hit {
		base = len(prev.Rounds)
		req = replay.Request{
			Start:       prev.Snapshot,
			History:     prev.History,
			Rounds:      rounds[base:],
			RoundOffset: base,
		}
		c.hits.Add(1)
		log.WithFields(logrus.Fields{"cache": "hit", "stored": base, "rounds": len(rounds)}).Info("resuming session")
	} else {
		c.misses.Add(1)
		fields := logrus.Fields{"cache": "miss", "rounds": len(rounds)}
		if prev != nil {
			fields["stored"] = len(prev.Rounds)
		}
		log.WithFields(fields).Info("replaying session from genesis")
	}

	res, err := c.verifier.Verify(ctx, req)
	if err != nil {
		log.WithError(err).Error("verification aborted")
		return nil, err
	}

	consumed := base + res.Consumed
	kept := rounds[:consumed]
	entry := &Entry{
		Roster:    slices.Clone(roster),
		Seed:      seed,
		Rounds:    kept,
		Digests:   Digests(kept),
		Snapshot:  res.Checkpoint,
		History:   res.History[:res.CheckpointHistory],
		Score:     c.verifier.Score(res.Checkpoint),
		UpdatedAt: time.Now().UTC(),
	}
	if err := c.store.Put(ctx, id, entry); err != nil {
		return nil, err
	}
	res.Consumed = consumed

	rec := audit.Record{
		SessionID:   id,
		Rounds:      len(rounds),
		Consumed:    consumed,
		Success:     res.Success,
		Incomplete:  res.Incomplete,
		CacheHit:    hit,
		Score:       res.Score,
		Fingerprint: res.Final.Fingerprint(),
		Summary:     res.Summary(),
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		log.WithError(err).Warn("audit record failed")
	}
	return res, nil
}

// Snapshot returns the stored checkpoint of session id.
func (c *Cache) Snapshot(ctx context.Context, id string) (*engine.Snapshot, error) {
	e, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Snapshot, nil
}

// Entry returns the stored state of session id.
func (c *Cache) Entry(ctx context.Context, id string) (*Entry, error) {
	return c.store.Get(ctx, id)
}

// Forget drops session id.
func (c *Cache) Forget(ctx context.Context, id string) error {
	return c.store.Delete(ctx, id)
}
