package sim

import "github.com/pippijn/sint/engine"

// ValidActions implements engine.Engine. Candidates are generated from the
// actor's surroundings and kept only if ApplyAction accepts them, so the
// list never disagrees with the rules. Chat is never listed.
func (e *Engine) ValidActions(s *engine.Snapshot, actor engine.PlayerID) []engine.Action {
	if s == nil || s.Phase.IsTerminal() {
		return nil
	}
	p, ok := s.Players[actor]
	if !ok {
		return nil
	}
	if p.IsReady {
		return []engine.Action{engine.VoteReady(false)}
	}
	if s.Phase != engine.PhaseTacticalPlanning || p.AP == 0 || p.HasStatus(engine.StatusFainted) {
		return []engine.Action{engine.VoteReady(true)}
	}

	var out []engine.Action
	for _, c := range candidates(s, p) {
		if _, err := e.ApplyAction(s, actor, c, nil); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func candidates(s *engine.Snapshot, p engine.Player) []engine.Action {
	var out []engine.Action
	room, _ := s.Room(p.RoomID)

	for _, n := range room.Neighbors {
		out = append(out, engine.Move(n))
	}
	for _, t := range []engine.ActionType{
		engine.ActInteract, engine.ActBake, engine.ActShoot, engine.ActRaiseShields,
		engine.ActEvasiveManeuvers, engine.ActExtinguish, engine.ActRepair,
	} {
		out = append(out, engine.Simple(t))
	}
	for it := engine.ItemType(0); it < engine.NumItemTypes; it++ {
		if room.CountItem(it) > 0 {
			out = append(out, engine.PickUp(it))
		}
	}
	for i := range p.Inventory {
		out = append(out, engine.Drop(i))
	}
	for _, id := range s.Roster {
		for i := range p.Inventory {
			out = append(out, engine.Throw(id, i))
		}
	}
	for _, id := range s.Roster {
		out = append(out, engine.FirstAid(id))
	}
	for _, id := range s.Roster {
		out = append(out, engine.Revive(id))
	}
	out = append(out, engine.Simple(engine.ActLookout), engine.Pass(), engine.VoteReady(true))
	return out
}
