// internal/replay/stabilize.go
package replay

import (
	"fmt"

	"github.com/pippijn/sint/engine"
	"github.com/sirupsen/logrus"
)

// Stabilize submits implicit ready votes until s reaches a decision point:
// a terminal phase, or a planning phase in which some actor still owes
// input. Outside planning every not-ready actor is readied. In planning only
// actors without AP are readied, and only once the whole roster is done.
//
// At most limit votes are submitted. Hitting the ceiling is logged and the
// state reached so far is returned. The votes are returned as records so
// callers can append them to their history.
func Stabilize(eng engine.Engine, s *engine.Snapshot, limit int, log logrus.FieldLogger) (*engine.Snapshot, []engine.Record, error) {
	var implicit []engine.Record
	for n := 0; ; n++ {
		actor, ok := pendingReady(s)
		if !ok {
			if !s.Phase.IsTerminal() && s.Phase != engine.PhaseTacticalPlanning {
				log.WithFields(logrus.Fields{"phase": s.Phase, "turn": s.TurnCount}).Warn("all actors ready but phase did not advance")
			}
			return s, implicit, nil
		}
		if n >= limit {
			log.WithFields(logrus.Fields{
				"phase": s.Phase,
				"turn":  s.TurnCount,
				"steps": n,
			}).Warn("stabilize ceiling reached")
			return s, implicit, nil
		}

		rec := engine.Record{Actor: actor, Action: engine.VoteReady(true)}
		next, err := eng.ApplyAction(s, actor, rec.Action, nil)
		if err != nil {
			log.WithFields(logrus.Fields{"actor": actor, "phase": s.Phase}).WithError(err).Error("implicit ready rejected")
			return s, implicit, fmt.Errorf("%w: %s in %s: %w", ErrImplicitReady, actor, s.Phase, err)
		}
		if next == nil {
			return s, implicit, ErrMissingSnapshot
		}
		log.WithFields(logrus.Fields{"actor": actor, "phase": s.Phase}).Debug("implicit ready")
		implicit = append(implicit, rec)
		s = next
	}
}

// pendingReady returns the first actor, in roster order, that Stabilize
// must ready next.
func pendingReady(s *engine.Snapshot) (engine.PlayerID, bool) {
	if s.Phase.IsTerminal() {
		return "", false
	}
	if s.Phase == engine.PhaseTacticalPlanning && !s.RoundComplete() {
		return "", false
	}
	for _, id := range s.Roster {
		if !s.Players[id].IsReady {
			return id, true
		}
	}
	return "", false
}

// ActiveActor is the first actor, in roster order, that is not ready and
// still has AP to spend.
func ActiveActor(s *engine.Snapshot) (engine.PlayerID, bool) {
	if s.Phase != engine.PhaseTacticalPlanning {
		return "", false
	}
	for _, id := range s.Roster {
		if p := s.Players[id]; !p.IsReady && p.AP > 0 {
			return id, true
		}
	}
	return "", false
}
