// internal/replay/random.go
package replay

import (
	"context"
	"fmt"

	"github.com/pippijn/sint/engine"
)

// RandomRounds plays a seeded uniform random policy over the legal actions
// and returns up to n round blocks that Verify accepts from genesis. Ready
// votes and chat are never chosen; actors that run out of AP are readied by
// Stabilize. The game may end before n rounds.
func RandomRounds(ctx context.Context, eng engine.Engine, roster []engine.PlayerID, seed uint64, n int) ([]engine.RoundBlock, error) {
	s, err := genesis(eng, roster, seed, nil)
	if err != nil {
		return nil, err
	}
	lin := NewLinear(eng)
	if s, _, err = Stabilize(eng, s, lin.limit, lin.log); err != nil {
		return nil, err
	}

	rng := seed | 1
	var rounds []engine.RoundBlock
	for len(rounds) < n && !s.Phase.IsTerminal() {
		turn := s.TurnCount
		var block engine.RoundBlock
		for s.TurnCount == turn && !s.Phase.IsTerminal() {
			actor, ok := ActiveActor(s)
			if !ok {
				return rounds, fmt.Errorf("replay: no active actor in %s turn %d", s.Phase, s.TurnCount)
			}
			var legal []engine.Action
			for _, a := range eng.ValidActions(s, actor) {
				if a.Type != engine.ActVoteReady && a.Type != engine.ActChat {
					legal = append(legal, a)
				}
			}
			a := engine.Pass()
			if len(legal) > 0 {
				rng ^= rng << 13
				rng ^= rng >> 7
				rng ^= rng << 17
				a = legal[rng%uint64(len(legal))]
			}
			rec := engine.Record{Actor: actor, Action: a}
			res, err := lin.Step(ctx, s, []engine.Record{rec}, nil)
			if err != nil {
				return rounds, err
			}
			s = res.Next
			block = append(block, rec)
		}
		rounds = append(rounds, block)
	}
	return rounds, nil
}
