// internal/replay/verifier_test.go
package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/scoring"
	"github.com/pippijn/sint/engine/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roster4 = []engine.PlayerID{"P1", "P2", "P3", "P4"}

func rec(actor engine.PlayerID, a engine.Action) engine.Record {
	return engine.Record{Actor: actor, Action: a}
}

func passAll(roster []engine.PlayerID) engine.RoundBlock {
	var b engine.RoundBlock
	for _, id := range roster {
		b = append(b, rec(id, engine.Pass()))
	}
	return b
}

// planning returns the stabilized genesis state for seed.
func planning(t *testing.T, eng engine.Engine, seed uint64) *engine.Snapshot {
	t.Helper()
	res, err := NewVerifier(eng).Verify(context.Background(), Request{Roster: roster4, Seed: seed})
	require.NoError(t, err)
	require.Equal(t, engine.PhaseTacticalPlanning, res.Final.Phase)
	return res.Final
}

// rejectingEngine refuses every ready vote.
type rejectingEngine struct{ *sim.Engine }

func (e rejectingEngine) ApplyAction(s *engine.Snapshot, actor engine.PlayerID, a engine.Action, seed *uint64) (*engine.Snapshot, error) {
	if a.Type == engine.ActVoteReady {
		return nil, engine.Reject(engine.CodeInvalidAction, "no")
	}
	return e.Engine.ApplyAction(s, actor, a, seed)
}

// hollowEngine accepts moves but loses the resulting snapshot.
type hollowEngine struct{ *sim.Engine }

func (e hollowEngine) ApplyAction(s *engine.Snapshot, actor engine.PlayerID, a engine.Action, seed *uint64) (*engine.Snapshot, error) {
	if a.Type == engine.ActMove {
		return nil, nil
	}
	return e.Engine.ApplyAction(s, actor, a, seed)
}

func TestVerifyGenesisReachesPlanning(t *testing.T) {
	res, err := NewVerifier(sim.New()).Verify(context.Background(), Request{Roster: roster4, Seed: 12345})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Incomplete)
	assert.Equal(t, -1, res.IncompleteRound)
	assert.Equal(t, engine.PhaseTacticalPlanning, res.Final.Phase)
	assert.Equal(t, 1, res.Final.TurnCount)
	// Lobby, MorningReport and EnemyTelegraph each take one vote per actor.
	assert.Len(t, res.History, 3*len(roster4))
	for _, r := range res.History {
		assert.Equal(t, engine.ActVoteReady, r.Action.Type)
	}
	assert.Same(t, res.Final, res.Checkpoint)
	assert.Equal(t, len(res.History), res.CheckpointHistory)
}

func TestVerifyRequiresRoster(t *testing.T) {
	_, err := NewVerifier(sim.New()).Verify(context.Background(), Request{Seed: 1})
	assert.ErrorIs(t, err, ErrNoRoster)
}

func TestVerifyDeterminism(t *testing.T) {
	eng := sim.New()
	ctx := context.Background()
	rounds, err := RandomRounds(ctx, eng, roster4, 12345, 6)
	require.NoError(t, err)
	require.NotEmpty(t, rounds)

	v := NewVerifier(eng)
	a, err := v.Verify(ctx, Request{Roster: roster4, Seed: 12345, Rounds: rounds})
	require.NoError(t, err)
	b, err := v.Verify(ctx, Request{Roster: roster4, Seed: 12345, Rounds: rounds})
	require.NoError(t, err)

	require.True(t, a.Success, a.Summary())
	assert.Equal(t, len(rounds), a.Consumed)
	assert.Equal(t, a.Final.Fingerprint(), b.Final.Fingerprint())
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Final, b.Final)
}

func TestVerifyRejection(t *testing.T) {
	v := NewVerifier(sim.New())
	rounds := []engine.RoundBlock{
		{rec("P1", engine.Move(0))},
		{rec("P1", engine.Move(9)), rec("P2", engine.Move(5)), rec("P3", engine.Move(0))},
	}
	res, err := v.Verify(context.Background(), Request{Roster: roster4, Seed: 12345, Rounds: rounds})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Consumed)
	require.NotNil(t, res.Failed)
	assert.Equal(t, 1, res.Failed.Round)
	assert.Equal(t, 1, res.Failed.Index)
	assert.Equal(t, engine.PlayerID("P2"), res.Failed.Actor)
	assert.True(t, res.Failed.Action.Equal(engine.Move(5)))
	assert.ErrorIs(t, res.Failed, engine.ErrInvalidMove)
	assert.Equal(t, engine.RoomID(2), res.Failed.RoomID)
	assert.Empty(t, res.Failed.Inventory)
	assert.Equal(t, 0, res.Failed.AP["P1"])
	assert.Equal(t, 2, res.Failed.AP["P2"])

	// The checkpoint sits after the first, open block.
	assert.Equal(t, engine.RoomID(0), res.Checkpoint.Players["P1"].RoomID)
	assert.Equal(t, engine.RoomID(9), res.Final.Players["P1"].RoomID)

	sum := res.Summary()
	assert.Contains(t, sum, "=== FAILURE SUMMARY ===")
	assert.Contains(t, sum, "Round: 1\n")
	assert.Contains(t, sum, "Phase: TacticalPlanning\n")
	assert.Contains(t, sum, "Failed Action: P2 performs Move 5\n")
	assert.Contains(t, sum, "Error: InvalidMove")
	assert.Contains(t, sum, "Hull: 20 | Enemy: ")
	assert.Contains(t, sum, "Room 9: [Peppernut, Peppernut, Peppernut, Peppernut, Peppernut]")
	assert.Contains(t, sum, "  P1: Room 9 | AP 0 | HP 3 | Inv [] | Status []\n")
	assert.Contains(t, sum, "  P2: Room 2 | AP 2 | HP 3 | Inv [] | Status []\n")
	assert.Contains(t, sum, "=======================\n")
}

func TestRejectionHint(t *testing.T) {
	s := planning(t, sim.New(), 12345)
	for _, id := range []engine.PlayerID{"P1", "P3", "P4"} {
		p := s.Players[id]
		p.AP = 0
		s.Players[id] = p
	}
	r := newRejection(0, 0, rec("P1", engine.Simple(engine.ActBake)), engine.Reject(engine.CodeNotEnoughAP, "P1 has 0 AP"), s)
	assert.Contains(t, r.Summary(), "Hint: Round not over. P2 still has 2 AP.\n")

	p := s.Players["P3"]
	p.AP = 1
	s.Players["P3"] = p
	r = newRejection(0, 0, rec("P1", engine.Simple(engine.ActBake)), engine.Reject(engine.CodeNotEnoughAP, "P1 has 0 AP"), s)
	assert.NotContains(t, r.Summary(), "Hint:")
}

func TestVerifyIncompleteContinue(t *testing.T) {
	v := NewVerifier(sim.New())
	ctx := context.Background()

	res, err := v.Verify(ctx, Request{Roster: roster4, Seed: 12345, Rounds: []engine.RoundBlock{
		{rec("P1", engine.Move(0))},
	}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Incomplete)
	assert.Equal(t, 0, res.IncompleteRound)
	assert.Equal(t, 1, res.Consumed)
	assert.Nil(t, res.Failed)
	assert.Equal(t, 1, res.Final.Players["P1"].AP)

	res, err = v.Verify(ctx, Request{Roster: roster4, Seed: 12345, Rounds: []engine.RoundBlock{
		{rec("P1", engine.Move(0))},
		passAll(roster4),
	}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Incomplete)
	assert.Equal(t, -1, res.IncompleteRound)
	assert.Equal(t, 2, res.Final.TurnCount)
}

func TestVerifyIncompleteStrict(t *testing.T) {
	v := NewVerifier(sim.New(), WithIncompletePolicy(IncompleteStrict))
	assert.Equal(t, IncompleteStrict, v.Policy())

	res, err := v.Verify(context.Background(), Request{Roster: roster4, Seed: 12345, Rounds: []engine.RoundBlock{
		passAll(roster4),
		{rec("P1", engine.Move(0))},
		passAll(roster4),
	}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Incomplete)
	assert.Equal(t, 1, res.IncompleteRound)
	assert.Nil(t, res.Failed, "an open round is not a rejection")
	assert.Equal(t, 1, res.Consumed)
	assert.Equal(t, "", res.Summary())
}

func TestVerifyAutoReadyOnLastAP(t *testing.T) {
	res, err := NewVerifier(sim.New()).Verify(context.Background(), Request{Roster: roster4, Seed: 12345, Rounds: []engine.RoundBlock{
		{rec("P1", engine.Move(0)), rec("P1", engine.Move(9))},
	}})
	require.NoError(t, err)
	p1 := res.Final.Players["P1"]
	assert.Equal(t, 0, p1.AP)
	assert.True(t, p1.IsReady)
	last := res.History[len(res.History)-1]
	assert.True(t, last.Equal(rec("P1", engine.VoteReady(true))))
}

func TestVerifyResumeMatchesFull(t *testing.T) {
	eng := sim.New()
	ctx := context.Background()
	rounds, err := RandomRounds(ctx, eng, roster4, 99, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rounds), 3)

	v := NewVerifier(eng)
	full, err := v.Verify(ctx, Request{Roster: roster4, Seed: 99, Rounds: rounds})
	require.NoError(t, err)

	part, err := v.Verify(ctx, Request{Roster: roster4, Seed: 99, Rounds: rounds[:2]})
	require.NoError(t, err)
	resumed, err := v.Verify(ctx, Request{
		Start:       part.Checkpoint,
		History:     part.History[:part.CheckpointHistory],
		Rounds:      rounds[2:],
		RoundOffset: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, full.Final.Fingerprint(), resumed.Final.Fingerprint())
	assert.Equal(t, full.Score, resumed.Score)
	assert.True(t, engine.RoundBlock(full.History).Equal(resumed.History))
}

func TestVerifyIgnoresRecordsAfterGameEnd(t *testing.T) {
	s := planning(t, sim.New(), 12345).Clone()
	s.Phase = engine.PhaseVictory

	res, err := NewVerifier(sim.New()).Verify(context.Background(), Request{
		Start:  s,
		Rounds: []engine.RoundBlock{{rec("P1", engine.Move(0))}, passAll(roster4)},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 5, res.Ignored)
	assert.Equal(t, engine.PhaseVictory, res.Final.Phase)
	assert.Equal(t, scoring.Absolute(scoring.DefaultWeights(), s).Total, res.Score)
}

func TestVerifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVerifier(sim.New()).Verify(ctx, Request{Roster: roster4, Seed: 1, Rounds: []engine.RoundBlock{passAll(roster4)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyMissingSnapshot(t *testing.T) {
	v := NewVerifier(hollowEngine{sim.New()})
	_, err := v.Verify(context.Background(), Request{Roster: roster4, Seed: 1, Rounds: []engine.RoundBlock{{rec("P1", engine.Move(0))}}})
	assert.ErrorIs(t, err, ErrMissingSnapshot)
}

func TestStabilizeImplicitReadyRejected(t *testing.T) {
	v := NewVerifier(rejectingEngine{sim.New()})
	_, err := v.Verify(context.Background(), Request{Roster: roster4, Seed: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImplicitReady)
	assert.ErrorIs(t, err, engine.ErrInvalidAction)
}

func TestStabilizeCeiling(t *testing.T) {
	eng := sim.New()
	s, err := eng.NewGame(roster4, 1)
	require.NoError(t, err)

	v := NewVerifier(eng)
	out, implicit, err := Stabilize(eng, s, 2, v.log)
	require.NoError(t, err)
	assert.Len(t, implicit, 2)
	assert.Equal(t, engine.PhaseLobby, out.Phase)

	out, implicit, err = Stabilize(eng, s, DefaultStabilizeLimit, v.log)
	require.NoError(t, err)
	assert.Len(t, implicit, 12)
	assert.Equal(t, engine.PhaseTacticalPlanning, out.Phase)

	// A planning state with open AP is already stable.
	again, implicit, err := Stabilize(eng, out, DefaultStabilizeLimit, v.log)
	require.NoError(t, err)
	assert.Empty(t, implicit)
	assert.Same(t, out, again)
}

func TestActiveActor(t *testing.T) {
	eng := sim.New()
	s := planning(t, eng, 12345)
	id, ok := ActiveActor(s)
	require.True(t, ok)
	assert.Equal(t, engine.PlayerID("P1"), id)

	s, err := eng.ApplyAction(s, "P1", engine.Pass(), nil)
	require.NoError(t, err)
	id, ok = ActiveActor(s)
	require.True(t, ok)
	assert.Equal(t, engine.PlayerID("P2"), id)

	lobby, err := eng.NewGame(roster4, 1)
	require.NoError(t, err)
	_, ok = ActiveActor(lobby)
	assert.False(t, ok)
}

func TestParseIncompletePolicy(t *testing.T) {
	for in, want := range map[string]IncompletePolicy{"": IncompleteContinue, "continue": IncompleteContinue, " Strict ": IncompleteStrict} {
		got, err := ParseIncompletePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseIncompletePolicy("lenient")
	assert.Error(t, err)
	assert.Equal(t, "strict", IncompleteStrict.String())
}

func TestRejectionUnwrap(t *testing.T) {
	r := newRejection(3, 1, rec("P9", engine.Pass()), engine.Reject(engine.CodePlayerNotFound, "P9"), planning(t, sim.New(), 1))
	var target *Rejection
	require.True(t, errors.As(error(r), &target))
	assert.ErrorIs(t, r, engine.ErrPlayerNotFound)
	assert.Equal(t, engine.RoomID(-1), r.RoomID)
	assert.Contains(t, r.Error(), "round 3 action 1: P9 performs Pass")
}
