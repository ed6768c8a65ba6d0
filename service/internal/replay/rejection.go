// internal/replay/rejection.go
package replay

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pippijn/sint/engine"
)

// Rejection is an action the engine refused. It carries enough context for
// a caller to correct the submission without asking for the full state.
type Rejection struct {
	Round  int // block index within the submitted log
	Index  int // record index within the block
	Actor  engine.PlayerID
	Action engine.Action
	Err    error

	RoomID      engine.RoomID
	RoomItems   []engine.ItemType
	RoomHazards []engine.HazardType
	Inventory   []engine.ItemType
	AP          map[engine.PlayerID]int

	// State is the snapshot the action was rejected against.
	State *engine.Snapshot
}

func newRejection(round, index int, rec engine.Record, err error, s *engine.Snapshot) *Rejection {
	r := &Rejection{
		Round:  round,
		Index:  index,
		Actor:  rec.Actor,
		Action: rec.Action,
		Err:    err,
		RoomID: -1,
		AP:     make(map[engine.PlayerID]int, len(s.Players)),
		State:  s,
	}
	for id, p := range s.Players {
		r.AP[id] = p.AP
	}
	if p, ok := s.Players[rec.Actor]; ok {
		r.RoomID = p.RoomID
		r.Inventory = slices.Clone(p.Inventory)
		if room, ok := s.Room(p.RoomID); ok {
			r.RoomItems = slices.Clone(room.Items)
			r.RoomHazards = slices.Clone(room.Hazards)
		}
	}
	return r
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("round %d action %d: %s performs %s: %v", r.Round, r.Index, r.Actor, r.Action, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Summary renders the rejection and the surrounding state as text meant to
// be read by whoever produced the submission.
func (r *Rejection) Summary() string {
	s := r.State
	var b strings.Builder
	b.WriteString("\n=== FAILURE SUMMARY ===\n")
	fmt.Fprintf(&b, "Round: %d\n", s.TurnCount)
	fmt.Fprintf(&b, "Phase: %s\n", s.Phase)
	fmt.Fprintf(&b, "Failed Action: %s performs %s\n", r.Actor, r.Action)
	fmt.Fprintf(&b, "Error: %v\n", r.Err)

	if errors.Is(r.Err, engine.ErrNotEnoughAP) {
		var others []engine.PlayerID
		for _, id := range s.Roster {
			if id != r.Actor && s.Players[id].AP > 0 {
				others = append(others, id)
			}
		}
		if len(others) == 1 {
			fmt.Fprintf(&b, "Hint: Round not over. %s still has %d AP.\n", others[0], s.Players[others[0]].AP)
		}
	}

	b.WriteString("\n-- State Context --\n")
	fmt.Fprintf(&b, "Hull: %d | Enemy: %s (%d HP)\n", s.HullIntegrity, s.Enemy.Name, s.Enemy.HP)

	b.WriteString("Active Situations:\n")
	for _, c := range s.ActiveSituations {
		fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.ID)
	}

	b.WriteString("Room Items:\n")
	for _, room := range s.Rooms {
		if len(room.Items) > 0 {
			fmt.Fprintf(&b, "  Room %d: %s\n", room.ID, list(room.Items))
		}
	}
	b.WriteString("Hazards:\n")
	for _, room := range s.Rooms {
		if len(room.Hazards) > 0 {
			fmt.Fprintf(&b, "  Room %d: %s\n", room.ID, list(room.Hazards))
		}
	}

	b.WriteString("Players:\n")
	ids := make([]engine.PlayerID, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := s.Players[id]
		fmt.Fprintf(&b, "  %s: Room %d | AP %d | HP %d | Inv %s | Status %s\n",
			id, p.RoomID, p.AP, p.HP, list(p.Inventory), list(p.Status))
	}
	b.WriteString("=======================\n")
	return b.String()
}

func list[T fmt.Stringer](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
