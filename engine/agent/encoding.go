package agent

import "github.com/pippijn/sint/engine"

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// soft clamps unbounded counters into the documented range.
func soft(x float32) float32 { return min(x, SoftMax) }

// ordinal returns n/norm, or -1 when absent.
func ordinal[T ~uint8](v *T) float32 {
	if v == nil {
		return -1
	}
	return float32(*v) / normOrdinal
}

// Encode writes the InputDim feature vector for perspective into out.
// Absent rooms and players stay all-zero, so offsets never shift.
// out is zeroed internally before writing.
func Encode(s *engine.Snapshot, perspective engine.PlayerID, out *[InputDim]float32) {
	*out = [InputDim]float32{}

	offset := OffGlobals

	// Globals: 8
	out[offset+0] = float32(s.HullIntegrity) / normHull
	out[offset+1] = soft(float32(s.TurnCount) / normTurn)
	out[offset+2] = float32(s.BossLevel) / normBoss
	out[offset+3] = float32(s.Enemy.HP) / normEnemyHP
	out[offset+4] = b2f(s.EvasionActive)
	out[offset+5] = b2f(s.ShieldsActive)
	out[offset+6] = float32(s.Phase) / normPhase
	out[offset+7] = b2f(s.IsResting)
	offset += GlobalDim
	// offset = 8

	// Rooms: 10 slots × 9
	for i := 0; i < RoomSlots; i++ {
		if i < len(s.Rooms) {
			encodeRoom(&s.Rooms[i], out[offset:offset+RoomDim])
		}
		offset += RoomDim
	}
	// offset = 98

	// Players: 6 slots × 9, in roster order
	for i := 0; i < PlayerSlots; i++ {
		if i < len(s.Roster) {
			if p, ok := s.Players[s.Roster[i]]; ok {
				encodePlayer(&p, p.ID == perspective, out[offset:offset+PlayerDim])
			}
		}
		offset += PlayerDim
	}
	// offset = 152

	// Situations: multi-hot by card ordinal
	for _, c := range s.ActiveSituations {
		if int(c.ID) < SituationDim {
			out[offset+int(c.ID)] = 1
		}
	}
	offset += SituationDim
	// offset = 202

	// Card details: 50 × 4, zero unless active
	for i := range s.ActiveSituations {
		c := &s.ActiveSituations[i]
		if int(c.ID) >= SituationDim {
			continue
		}
		d := out[offset+int(c.ID)*CardDetailDim:]
		if sol := c.Solution; sol != nil {
			d[0] = float32(sol.APCost) / normCardAP
			d[1] = ordinal(sol.ItemCost)
			d[2] = ordinal(sol.TargetSystem)
			d[3] = float32(sol.RequiredPlayers) / normCrew
		} else {
			d[1] = -1
			d[2] = -1
		}
	}
	offset += SituationDim * CardDetailDim
	// offset = 402

	// Enemy intent: target room + presence, or -1, 0 when absent or hidden
	if na := s.Enemy.NextAttack; na != nil && na.TargetRoom != nil && na.Effect != engine.EffectHidden {
		out[offset] = float32(*na.TargetRoom) / normRoom
		out[offset+1] = 1
	} else {
		out[offset] = -1
	}
	// offset = 404
}

func encodeRoom(r *engine.Room, d []float32) {
	d[0] = soft(float32(r.CountHazard(engine.HazardFire)) / normHazard)
	d[1] = soft(float32(r.CountHazard(engine.HazardWater)) / normHazard)
	for it := engine.ItemType(0); it < engine.NumItemTypes; it++ {
		d[2+int(it)] = soft(float32(r.CountItem(it)) / normRoomItem)
	}
	d[RoomDim-2] = b2f(r.System != nil)
	d[RoomDim-1] = ordinal(r.System)
}

func encodePlayer(p *engine.Player, active bool, d []float32) {
	d[0] = float32(p.RoomID) / normRoom
	d[1] = float32(p.HP) / normHP
	d[2] = float32(p.AP) / normAP
	for it := engine.ItemType(0); it < engine.NumItemTypes; it++ {
		d[3+int(it)] = float32(p.CountItem(it)) / normInvItem
	}
	d[PlayerDim-1] = b2f(active)
}

// Observe is Encode into a freshly allocated slice.
func Observe(s *engine.Snapshot, perspective engine.PlayerID) []float32 {
	var out [InputDim]float32
	Encode(s, perspective, &out)
	return out[:]
}
