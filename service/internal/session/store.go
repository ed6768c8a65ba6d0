// internal/session/store.go

// Package session memoizes replay verification per caller-chosen session id.
// A session remembers the last cleanly verified round log and the snapshot
// it produced, so a resubmission that extends that log only replays the new
// rounds.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pippijn/sint/engine"
)

var (
	// ErrNotFound is returned by Store.Get for an unknown id.
	ErrNotFound = errors.New("session: not found")
	// ErrIDRequired is returned for an empty session id.
	ErrIDRequired = errors.New("session: id is required")
)

// Entry is the stored state of one session. Digests[i] is the chained
// digest of Rounds[:i+1]; Snapshot and History are the state and record
// log after the last of Rounds.
type Entry struct {
	Roster    []engine.PlayerID   `json:"roster"`
	Seed      uint64              `json:"seed"`
	Rounds    []engine.RoundBlock `json:"rounds"`
	Digests   []uint64            `json:"digests"`
	Snapshot  *engine.Snapshot    `json:"snapshot"`
	History   []engine.Record     `json:"history"`
	Score     float64             `json:"score"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Roster = slices.Clone(e.Roster)
	c.Digests = slices.Clone(e.Digests)
	c.Snapshot = e.Snapshot.Clone()
	c.History = cloneRecords(e.History)
	if e.Rounds != nil {
		c.Rounds = make([]engine.RoundBlock, len(e.Rounds))
		for i, b := range e.Rounds {
			c.Rounds[i] = cloneRecords(b)
		}
	}
	return &c
}

func cloneRecords(rs []engine.Record) []engine.Record {
	if rs == nil {
		return nil
	}
	out := make([]engine.Record, len(rs))
	for i, r := range rs {
		out[i] = engine.Record{Actor: r.Actor, Action: r.Action.Clone()}
	}
	return out
}

// Store persists session entries. Implementations must be safe for
// concurrent use across different ids and must not share returned entries
// with their own state.
type Store interface {
	Get(ctx context.Context, id string) (*Entry, error)
	Put(ctx context.Context, id string, e *Entry) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string { return uuid.NewString() }

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrIDRequired
	}
	return id, nil
}
