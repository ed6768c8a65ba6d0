// internal/replay/trajectory.go
package replay

import (
	"fmt"
	"strings"

	"github.com/pippijn/sint/engine"
)

// FormatTrajectory replays history from initial and renders one text chunk
// per round: the planning context, the actions taken and what the round
// cost. history must be complete, implicit ready votes included, as in
// Result.History. Ready votes are applied but not printed.
func FormatTrajectory(eng engine.Engine, initial *engine.Snapshot, history []engine.Record) []string {
	s := initial
	var chunks []string
	var b strings.Builder

	round := s.TurnCount
	startHull, startHazards := s.HullIntegrity, s.HazardCount()
	boss := s.Enemy.Name
	planned := false

	fmt.Fprintf(&b, "\n=== TRAJECTORY ===\nStart: Hull %d, Boss %s, Players %d\n", s.HullIntegrity, boss, len(s.Roster))
	if s.Phase == engine.PhaseTacticalPlanning {
		fmt.Fprintf(&b, "\n--- ROUND %d ---\n", round)
		writePlanningContext(&b, s)
		planned = true
	}

	for _, rec := range history {
		switch rec.Action.Type {
		case engine.ActVoteReady:
		case engine.ActPass:
			fmt.Fprintf(&b, "  %s passes.\n", rec.Actor)
		case engine.ActChat:
			msg, _ := rec.Action.Str(engine.FieldMessage)
			fmt.Fprintf(&b, "  %s says: %s\n", rec.Actor, msg)
		default:
			fmt.Fprintf(&b, "    -> %s (%s)\n", rec.Action, rec.Actor)
		}

		next, err := eng.ApplyAction(s, rec.Actor, rec.Action, nil)
		if err != nil || next == nil {
			fmt.Fprintf(&b, "  ERROR REPLAYING: %s failed to %s: %v\n", rec.Actor, rec.Action, err)
			continue
		}
		prev := s
		s = next

		if s.Enemy.Name != boss {
			b.WriteString("\n**************************************************\n")
			fmt.Fprintf(&b, "BOSS DEFEATED: %s\nNEW CHALLENGER: %s\n", boss, s.Enemy.Name)
			b.WriteString("**************************************************\n\n")
			boss = s.Enemy.Name
		}

		switch {
		case s.TurnCount > round:
			writeResults(&b, startHull, s.HullIntegrity, startHazards, s.HazardCount())
			chunks = append(chunks, b.String())
			b.Reset()
			round = s.TurnCount
			startHull, startHazards = s.HullIntegrity, s.HazardCount()
			planned = false
			fmt.Fprintf(&b, "\n--- ROUND %d ---\n", round)
			if s.LatestEvent != "" {
				fmt.Fprintf(&b, "[EVENT] %s\n", s.LatestEvent)
			}
		case s.Phase.IsTerminal() && !prev.Phase.IsTerminal():
			fmt.Fprintf(&b, "\n=== GAME ENDED: %s ===\n", s.Phase)
		}
		if s.Phase == engine.PhaseTacticalPlanning && !planned {
			writePlanningContext(&b, s)
			planned = true
		}
	}

	fmt.Fprintf(&b, "\n=== LAST PHASE: %s ===\n", s.Phase)
	return append(chunks, b.String())
}

func writePlanningContext(b *strings.Builder, s *engine.Snapshot) {
	if s.LatestEvent != "" {
		fmt.Fprintf(b, "[EVENT] %s\n", s.LatestEvent)
	}
	if len(s.ActiveSituations) > 0 {
		names := make([]string, len(s.ActiveSituations))
		for i, c := range s.ActiveSituations {
			names[i] = c.Name
		}
		fmt.Fprintf(b, "[ACTIVE] %s\n", strings.Join(names, ", "))
	}
	if at := s.Enemy.NextAttack; at != nil {
		if at.TargetRoom != nil {
			fmt.Fprintf(b, "[ENEMY] %s targets Room %d with %s\n", s.Enemy.Name, *at.TargetRoom, at.Effect)
		} else {
			fmt.Fprintf(b, "[ENEMY] %s prepares %s\n", s.Enemy.Name, at.Effect)
		}
	}

	var fire, water []string
	for _, r := range s.Rooms {
		if n := r.CountHazard(engine.HazardFire); n > 0 {
			fire = append(fire, fmt.Sprintf("%d (x%d)", r.ID, n))
		}
		if n := r.CountHazard(engine.HazardWater); n > 0 {
			water = append(water, fmt.Sprintf("%d (x%d)", r.ID, n))
		}
	}
	if len(fire) > 0 {
		fmt.Fprintf(b, "[HAZARDS] Fire: %s\n", strings.Join(fire, ", "))
	}
	if len(water) > 0 {
		fmt.Fprintf(b, "[HAZARDS] Water: %s\n", strings.Join(water, ", "))
	}

	players := make([]string, 0, len(s.Roster))
	for _, id := range s.Roster {
		p := s.Players[id]
		line := fmt.Sprintf("%s: R%d", id, p.RoomID)
		if len(p.Inventory) > 0 {
			line += " " + list(p.Inventory)
		}
		players = append(players, line)
	}
	fmt.Fprintf(b, "[PLAYERS] %s\n", strings.Join(players, " | "))
	fmt.Fprintf(b, "[STATUS] Hull: %d | Boss HP: %d | Total Hazards: %d\n", s.HullIntegrity, s.Enemy.HP, s.HazardCount())
	b.WriteString("[TEAM] Actions:\n")
}

func writeResults(b *strings.Builder, oldHull, newHull, oldHazards, newHazards int) {
	b.WriteString("[RESULTS]\n")
	if newHull < oldHull {
		fmt.Fprintf(b, "  ! Hull Damage: %d -> %d\n", oldHull, newHull)
	} else {
		fmt.Fprintf(b, "  - Hull Stable (%d)\n", newHull)
	}
	switch {
	case newHazards > oldHazards:
		fmt.Fprintf(b, "  ! Hazards Increased: %d -> %d\n", oldHazards, newHazards)
	case newHazards < oldHazards:
		fmt.Fprintf(b, "  + Hazards Controlled: %d -> %d\n", oldHazards, newHazards)
	default:
		fmt.Fprintf(b, "  - Hazards Stable (%d)\n", newHazards)
	}
}
