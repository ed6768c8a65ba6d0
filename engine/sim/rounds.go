package sim

import (
	"fmt"

	"github.com/pippijn/sint/engine"
)

// advance moves to the next phase once every crew member is ready.
func (g game) advance() {
	switch g.Phase {
	case engine.PhaseLobby:
		g.TurnCount = 1
		g.enterMorningReport()
	case engine.PhaseMorningReport:
		g.enterTelegraph()
	case engine.PhaseEnemyTelegraph:
		g.enterPlanning()
	case engine.PhaseTacticalPlanning:
		g.resolveRound()
	}
}

func (g game) clearReady() {
	for _, id := range g.Roster {
		p := g.Players[id]
		p.IsReady = false
		g.setPlayer(p)
	}
}

func (g game) enterMorningReport() {
	g.Phase = engine.PhaseMorningReport
	g.clearReady()
	if g.TurnCount > 1 {
		g.drawCard()
	} else {
		g.LatestEvent = "The voyage begins"
	}
}

func (g game) enterTelegraph() {
	g.Phase = engine.PhaseEnemyTelegraph
	g.clearReady()
	switch {
	case g.IsResting:
		g.Enemy.NextAttack = nil
	case g.HasSituation(engine.CardFogBank):
		g.Enemy.NextAttack = &engine.EnemyAttack{Effect: engine.EffectHidden}
	default:
		g.Enemy.NextAttack = g.rollAttack()
	}
}

// enterPlanning refills action points. Fainted crew sit the round out and
// are marked ready so the round can close without them.
func (g game) enterPlanning() {
	g.Phase = engine.PhaseTacticalPlanning
	ap := engine.MaxAP
	if g.HasSituation(engine.CardSugarRush) {
		ap++
	}
	for _, id := range g.Roster {
		p := g.Players[id]
		if p.HasStatus(engine.StatusFainted) {
			p.AP = 0
			p.IsReady = true
		} else {
			p.AP = ap
			p.IsReady = false
		}
		g.setPlayer(p)
	}
	if g.allReady() {
		g.resolveRound()
	}
}

// rollAttack picks a target room among the system rooms and an effect.
func (g game) rollAttack() *engine.EnemyAttack {
	room := engine.RoomID(1 + g.randN(numRooms-1))
	sys := *g.Rooms[room].System
	effects := [...]engine.AttackEffect{engine.EffectFireball, engine.EffectLeak, engine.EffectBoarding, engine.EffectMiss}
	return &engine.EnemyAttack{
		TargetRoom:   &room,
		TargetSystem: &sys,
		Effect:       effects[g.randN(len(effects))],
	}
}

// resolveRound runs the execution and enemy phases in one go and starts
// the next round unless the ship sank.
func (g game) resolveRound() {
	hull := g.HullIntegrity
	g.Phase = engine.PhaseExecution
	g.resolveAttack()
	g.Phase = engine.PhaseEnemyAction
	g.resolveHazards()
	g.tickTimebombs()

	g.ShieldsActive = false
	g.EvasionActive = false
	g.IsResting = false
	g.Enemy.NextAttack = nil

	if g.HullIntegrity <= 0 {
		g.HullIntegrity = 0
		g.Phase = engine.PhaseGameOver
		g.LatestEvent = "The ship sank"
		return
	}
	g.TurnCount++
	g.LatestEvent = ""
	g.enterMorningReport()
	if g.LatestEvent == "" {
		g.LatestEvent = fmt.Sprintf("Round %d, hull took %d damage", g.TurnCount, hull-g.HullIntegrity)
	}
}

func (g game) resolveAttack() {
	na := g.Enemy.NextAttack
	if na == nil {
		return
	}
	if na.Effect == engine.EffectHidden {
		na = g.rollAttack()
	}
	if na.Effect == engine.EffectMiss || na.TargetRoom == nil {
		return
	}
	if g.ShieldsActive {
		return
	}
	if g.EvasionActive && g.randN(2) == 0 {
		return
	}
	r := g.room(*na.TargetRoom)
	switch na.Effect {
	case engine.EffectFireball:
		r.Hazards = append(r.Hazards, engine.HazardFire)
		g.HullIntegrity--
	case engine.EffectLeak:
		r.Hazards = append(r.Hazards, engine.HazardWater)
		g.HullIntegrity--
	case engine.EffectBoarding:
		g.HullIntegrity -= 2
	}
}

// resolveHazards burns the hull and crew in burning rooms, breaks flooded
// systems and lets large fires spread into a neighbour.
func (g game) resolveHazards() {
	var spread []engine.RoomID
	for i := range g.Rooms {
		r := &g.Rooms[i]
		fire := r.CountHazard(engine.HazardFire)
		if fire > 0 {
			g.HullIntegrity--
			g.burnCrew(r.ID)
		}
		if fire >= 2 && len(r.Neighbors) > 0 {
			spread = append(spread, r.Neighbors[g.randN(len(r.Neighbors))])
		}
		if r.System != nil && r.CountHazard(engine.HazardWater) > 0 {
			r.IsBroken = true
		}
	}
	for _, id := range spread {
		r := g.room(id)
		r.Hazards = append(r.Hazards, engine.HazardFire)
	}
}

func (g game) burnCrew(room engine.RoomID) {
	for _, id := range g.Roster {
		p := g.Players[id]
		if p.RoomID != room || p.HasStatus(engine.StatusFainted) {
			continue
		}
		p.HP--
		if p.HP <= 0 {
			p.HP = 0
			p.Status = append(p.Status, engine.StatusFainted)
		}
		g.setPlayer(p)
	}
}

func (g game) tickTimebombs() {
	kept := g.ActiveSituations[:0]
	for _, c := range g.ActiveSituations {
		if c.Type == engine.CardTimebomb {
			c.Countdown--
			if c.Countdown <= 0 {
				g.HullIntegrity -= 3
				continue
			}
		}
		kept = append(kept, c)
	}
	g.ActiveSituations = kept
}
