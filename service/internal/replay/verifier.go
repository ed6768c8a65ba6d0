// internal/replay/verifier.go
package replay

import (
	"context"
	"fmt"
	"slices"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/scoring"
	"github.com/sirupsen/logrus"
)

// Request describes one verification run.
type Request struct {
	Roster []engine.PlayerID
	Seed   uint64
	Rounds []engine.RoundBlock

	// Start resumes from an existing snapshot instead of a new game.
	Start *engine.Snapshot
	// History is the record log that produced Start. It prefixes
	// Result.History.
	History []engine.Record
	// RoundOffset is added to block indices in rejections and logs, so a
	// resumed run reports positions within the whole log.
	RoundOffset int
}

// Result is the outcome of a verification run.
type Result struct {
	Final   *engine.Snapshot
	Score   float64
	Success bool

	// Incomplete is set when the last applied block left the round open.
	// It is a request for more input, not a failure.
	Incomplete      bool
	IncompleteRound int

	// Failed is set when the engine rejected a record.
	Failed *Rejection

	// History is every record applied, including implicit ready votes.
	History []engine.Record

	// Consumed counts the blocks that applied cleanly. Checkpoint is the
	// stabilized state after the last of them and CheckpointHistory the
	// length of History at that point.
	Consumed          int
	Checkpoint        *engine.Snapshot
	CheckpointHistory int

	// Ignored counts records submitted after the game had ended.
	Ignored int
}

// Summary returns the failure summary, or "" on success.
func (r *Result) Summary() string {
	if r.Failed == nil {
		return ""
	}
	return r.Failed.Summary()
}

// Verifier replays round blocks against an engine.
type Verifier struct {
	eng engine.Engine
	options
}

// NewVerifier returns a Verifier over eng.
func NewVerifier(eng engine.Engine, opts ...Option) *Verifier {
	return &Verifier{eng: eng, options: buildOptions(opts)}
}

// Score is the block-level score of s under the configured weights.
func (v *Verifier) Score(s *engine.Snapshot) float64 {
	return scoring.Absolute(v.weights, s).Total
}

// Policy returns the configured incomplete round policy.
func (v *Verifier) Policy() IncompletePolicy { return v.policy }

// Verify applies every block of req in order. Engine rejections end the run
// with Success false and Failed set; they are not returned as errors. The
// error return is reserved for context cancellation and assertion-class
// failures.
func (v *Verifier) Verify(ctx context.Context, req Request) (*Result, error) {
	s, err := genesis(v.eng, req.Roster, req.Seed, req.Start)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Success:         true,
		IncompleteRound: -1,
		History:         slices.Clone(req.History),
	}
	s, err = v.stabilize(s, res)
	if err != nil {
		return nil, err
	}
	res.Checkpoint = s
	res.CheckpointHistory = len(res.History)

	for i, block := range req.Rounds {
		round := req.RoundOffset + i
		log := v.log.WithField("round", round)
		if s.Phase.IsTerminal() {
			for _, b := range req.Rounds[i:] {
				res.Ignored += len(b)
			}
			log.WithField("phase", s.Phase).Debug("game over, ignoring remaining rounds")
			break
		}

		turn := s.TurnCount
		var failed bool
		s, failed, err = v.applyBlock(ctx, s, round, block, res)
		if err != nil {
			return nil, err
		}
		if failed {
			res.Success = false
			break
		}

		complete := s.Phase.IsTerminal() || s.TurnCount != turn || s.RoundComplete()
		res.Incomplete = !complete
		res.IncompleteRound = -1
		if !complete {
			res.IncompleteRound = round
			log.WithField("turn", s.TurnCount).Debug("round left open")
			if v.policy == IncompleteStrict {
				res.Success = false
				break
			}
		}

		s, err = v.stabilize(s, res)
		if err != nil {
			return nil, err
		}
		res.Consumed = i + 1
		res.Checkpoint = s
		res.CheckpointHistory = len(res.History)
	}

	res.Final = s
	res.Score = v.Score(s)
	v.log.WithFields(logrus.Fields{
		"rounds":  len(req.Rounds),
		"success": res.Success,
		"turn":    s.TurnCount,
		"phase":   s.Phase,
	}).Debug("verified")
	return res, nil
}

// applyBlock applies one block. It reports failed when the engine rejected
// a record, in which case res.Failed is set and the returned state is the
// one the record was rejected against.
func (v *Verifier) applyBlock(ctx context.Context, s *engine.Snapshot, round int, block engine.RoundBlock, res *Result) (*engine.Snapshot, bool, error) {
	for j, rec := range block {
		if err := ctx.Err(); err != nil {
			return s, false, err
		}
		if s.Phase.IsTerminal() {
			res.Ignored += len(block) - j
			return s, false, nil
		}

		var err error
		if s, err = v.stabilize(s, res); err != nil {
			return s, false, err
		}

		log := v.log.WithFields(logrus.Fields{"round": round, "actor": rec.Actor, "action": rec.Action})
		next, err := v.eng.ApplyAction(s, rec.Actor, rec.Action, nil)
		if err != nil {
			res.Failed = newRejection(round, j, rec, err, s)
			log.WithError(err).Info("action rejected")
			return s, true, nil
		}
		if next == nil {
			log.Error("engine returned no snapshot")
			return s, false, fmt.Errorf("%w: %s", ErrMissingSnapshot, rec)
		}
		log.Debug("applied")
		s = next
		res.History = append(res.History, rec)

		// An actor who spent their last AP is done for the round.
		if p, ok := s.Players[rec.Actor]; ok && s.Phase == engine.PhaseTacticalPlanning && p.AP == 0 && !p.IsReady {
			ready := engine.Record{Actor: rec.Actor, Action: engine.VoteReady(true)}
			next, err := v.eng.ApplyAction(s, rec.Actor, ready.Action, nil)
			if err != nil {
				log.WithError(err).Error("auto ready rejected")
				return s, false, fmt.Errorf("%w: %s: %w", ErrImplicitReady, rec.Actor, err)
			}
			if next == nil {
				return s, false, ErrMissingSnapshot
			}
			s = next
			res.History = append(res.History, ready)
		}
	}
	return s, false, nil
}

func (v *Verifier) stabilize(s *engine.Snapshot, res *Result) (*engine.Snapshot, error) {
	s, implicit, err := Stabilize(v.eng, s, v.limit, v.log)
	res.History = append(res.History, implicit...)
	return s, err
}
