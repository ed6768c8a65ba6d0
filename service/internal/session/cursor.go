// internal/session/cursor.go
package session

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pippijn/sint/engine"
)

// ChainDigest folds block into the digest of the blocks before it. Records
// are hashed by engine.Record.AppendKey, so only records the engine cannot
// tell apart hash equal.
func ChainDigest(prev uint64, block engine.RoundBlock) uint64 {
	buf := binary.LittleEndian.AppendUint64(make([]byte, 0, 64), prev)
	buf = binary.AppendUvarint(buf, uint64(len(block)))
	for _, r := range block {
		buf = r.AppendKey(buf)
	}
	return xxhash.Sum64(buf)
}

// SameRounds reports whether a and b hold the same records, compared by key.
func SameRounds(a, b []engine.RoundBlock) bool {
	if len(a) != len(b) {
		return false
	}
	var ka, kb []byte
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			ka, kb = a[i][j].AppendKey(ka[:0]), b[i][j].AppendKey(kb[:0])
			if !bytes.Equal(ka, kb) {
				return false
			}
		}
	}
	return true
}

// Digests returns the digest chain of rounds.
func Digests(rounds []engine.RoundBlock) []uint64 {
	out := make([]uint64, len(rounds))
	var h uint64
	for i, b := range rounds {
		h = ChainDigest(h, b)
		out[i] = h
	}
	return out
}

// Cursor walks a submitted round log against the digest chain of a stored
// one. It is resumable: blocks are fed one at a time, and Pos reports how
// many matched so far.
type Cursor struct {
	stored []uint64
	pos    int
	h      uint64
	broken bool
}

// NewCursor starts a cursor over the stored digest chain.
func NewCursor(stored []uint64) *Cursor {
	return &Cursor{stored: stored}
}

// Advance feeds the next submitted block. It reports whether the block
// matches the stored block at the same position. Once a block diverges, or
// the stored log runs out, every further call returns false.
func (c *Cursor) Advance(block engine.RoundBlock) bool {
	if c.broken || c.pos >= len(c.stored) {
		c.broken = true
		return false
	}
	h := ChainDigest(c.h, block)
	if h != c.stored[c.pos] {
		c.broken = true
		return false
	}
	c.h = h
	c.pos++
	return true
}

// Pos is the number of blocks matched.
func (c *Cursor) Pos() int { return c.pos }

// Exhausted reports whether every stored block has been matched.
func (c *Cursor) Exhausted() bool { return c.pos == len(c.stored) }

// StrictPrefix reports whether the stored log is a strict prefix of rounds.
func StrictPrefix(stored []uint64, rounds []engine.RoundBlock) bool {
	if len(stored) >= len(rounds) {
		return false
	}
	c := NewCursor(stored)
	for _, b := range rounds[:len(stored)] {
		if !c.Advance(b) {
			return false
		}
	}
	return c.Exhausted()
}
