// internal/session/cursor_test.go
package session

import (
	"testing"

	"github.com/pippijn/sint/engine"
	"github.com/stretchr/testify/assert"
)

func block(recs ...engine.Record) engine.RoundBlock { return recs }

func rec(actor engine.PlayerID, a engine.Action) engine.Record {
	return engine.Record{Actor: actor, Action: a}
}

func TestDigestsChain(t *testing.T) {
	a := block(rec("P1", engine.Move(0)))
	b := block(rec("P2", engine.Pass()))

	d := Digests([]engine.RoundBlock{a, b})
	assert.Len(t, d, 2)
	assert.Equal(t, ChainDigest(0, a), d[0])
	assert.Equal(t, ChainDigest(d[0], b), d[1])

	// Order matters.
	swapped := Digests([]engine.RoundBlock{b, a})
	assert.NotEqual(t, d[1], swapped[1])

	// A JSON round trip turns 0 into float64(0) and keeps the digest.
	decoded := engine.Action{Type: engine.ActMove, Payload: map[string]any{engine.FieldToRoom: float64(0)}}
	assert.Equal(t, d[0], ChainDigest(0, block(rec("P1", decoded))))

	// Payloads that render alike but replay differently hash apart.
	word := engine.Action{Type: engine.ActMove, Payload: map[string]any{engine.FieldToRoom: "zero"}}
	assert.NotEqual(t, d[0], ChainDigest(0, block(rec("P1", word))))
	digit := engine.Action{Type: engine.ActMove, Payload: map[string]any{engine.FieldToRoom: "0"}}
	assert.NotEqual(t, d[0], ChainDigest(0, block(rec("P1", digit))))
	extra := engine.Action{Type: engine.ActPass, Payload: map[string]any{"note": 1}}
	assert.NotEqual(t, ChainDigest(0, b), ChainDigest(0, block(rec("P2", extra))))

	two := block(rec("P1", engine.Chat("hi")), rec("P1", engine.Pass()))
	one := block(rec("P1", engine.Chat("hi\nP1: Pass")))
	assert.NotEqual(t, ChainDigest(0, two), ChainDigest(0, one))
	padded := block(rec("P1", engine.Chat(" hi")), rec("P1", engine.Pass()))
	assert.NotEqual(t, ChainDigest(0, two), ChainDigest(0, padded))
}

func TestSameRounds(t *testing.T) {
	a := []engine.RoundBlock{block(rec("P1", engine.Move(3)), rec("P2", engine.Pass()))}
	decoded := []engine.RoundBlock{block(
		rec("P1", engine.Action{Type: engine.ActMove, Payload: map[string]any{engine.FieldToRoom: float64(3)}}),
		rec("P2", engine.Pass()),
	)}
	assert.True(t, SameRounds(a, decoded))
	assert.True(t, SameRounds(nil, nil))
	assert.False(t, SameRounds(a, nil))
	assert.False(t, SameRounds(a, []engine.RoundBlock{a[0][:1]}))
	assert.False(t, SameRounds(a, []engine.RoundBlock{block(rec("P1", engine.Move(3)), rec("P3", engine.Pass()))}))
}

func TestCursor(t *testing.T) {
	rounds := []engine.RoundBlock{
		block(rec("P1", engine.Move(0))),
		block(rec("P1", engine.Move(9))),
	}
	c := NewCursor(Digests(rounds))
	assert.True(t, c.Advance(rounds[0]))
	assert.False(t, c.Exhausted())
	assert.True(t, c.Advance(rounds[1]))
	assert.True(t, c.Exhausted())
	assert.Equal(t, 2, c.Pos())
	assert.False(t, c.Advance(rounds[0]), "stored log exhausted")

	c = NewCursor(Digests(rounds))
	assert.False(t, c.Advance(rounds[1]))
	assert.False(t, c.Advance(rounds[1]), "cursor stays broken")
	assert.Equal(t, 0, c.Pos())
}

func TestStrictPrefix(t *testing.T) {
	r0 := block(rec("P1", engine.Move(0)))
	r1 := block(rec("P2", engine.Pass()))
	r2 := block(rec("P3", engine.Pass()))
	stored := Digests([]engine.RoundBlock{r0, r1})

	assert.True(t, StrictPrefix(stored, []engine.RoundBlock{r0, r1, r2}))
	assert.True(t, StrictPrefix(nil, []engine.RoundBlock{r0}))
	assert.False(t, StrictPrefix(stored, []engine.RoundBlock{r0, r1}), "identical is not strict")
	assert.False(t, StrictPrefix(stored, []engine.RoundBlock{r0}), "shorter")
	assert.False(t, StrictPrefix(stored, []engine.RoundBlock{r0, r2, r1}), "diverges")
	assert.False(t, StrictPrefix(nil, nil))
}
