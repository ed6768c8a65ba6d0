// Package scoring evaluates snapshots for training and verification.
//
// Delta is the dense per-transition reward used by single-step control.
// Absolute is a pure function of one snapshot, so a verifier resumed from a
// cached checkpoint reports the same score as a full replay.
package scoring

import "github.com/pippijn/sint/engine"

// Details is a score broken down by category. Total is the sum of the rest.
type Details struct {
	Vitals      float64
	Hazards     float64
	Offense     float64
	Logistics   float64
	Situations  float64
	Progression float64
	Total       float64
}

func (d *Details) sum() {
	d.Total = d.Vitals + d.Hazards + d.Offense + d.Logistics + d.Situations + d.Progression
}

// ---------------------------------------------------------------------------
// Delta
// ---------------------------------------------------------------------------

// Delta scores the transition parent -> current. history holds the records
// applied so far; only the last one is inspected.
func Delta(w Weights, parent, current *engine.Snapshot, history []engine.Record) Details {
	var d Details

	if current.Phase == engine.PhaseVictory {
		d.Vitals = w.Victory
		d.sum()
		return d
	}
	if current.Phase == engine.PhaseGameOver || current.HullIntegrity <= 0 {
		d.Vitals = w.Defeat
		d.sum()
		return d
	}

	if dmg := bossProgress(parent, current); dmg > 0 {
		d.Offense += float64(dmg) * w.BossDamage
	}

	apCost := 1
	if n := len(history); n > 0 {
		last := history[n-1]
		apCost = spentAP(parent, current, last.Actor)
		switch last.Action.Type {
		case engine.ActRaiseShields, engine.ActEvasiveManeuvers:
			if na := current.Enemy.NextAttack; na != nil && na.TargetRoom != nil {
				d.Vitals += w.Defensive
			}
		}
	}

	if lost := parent.HullIntegrity - current.HullIntegrity; lost > 0 {
		d.Vitals -= float64(lost) * w.HullDamage
	}

	for h := engine.HazardType(0); h < engine.NumHazardTypes; h++ {
		if cleared := countHazard(parent, h) - countHazard(current, h); cleared > 0 {
			d.Hazards += float64(cleared) * w.HazardCleanup
		}
	}
	if repaired := countBroken(parent) - countBroken(current); repaired > 0 {
		d.Hazards += float64(repaired) * w.SystemRepair
	}
	if healed := totalHP(current) - totalHP(parent); healed > 0 {
		d.Vitals += float64(healed) * w.HealthRestore
	}

	if solved := countNegative(parent) - countNegative(current); solved > 0 {
		d.Situations += float64(solved) * w.SituationResolve
	}

	pi, ci := countCarried(parent), countCarried(current)
	switch {
	case ci > pi:
		d.Logistics += float64(ci-pi) * w.Pickup
	case ci < pi:
		d.Logistics -= float64(pi-ci) * w.Drop
	}

	if current.TurnCount > parent.TurnCount {
		d.Progression -= w.Turn
	}
	d.Progression -= float64(apCost) * w.StepPerAP

	d.Vitals += w.Survival
	d.sum()
	return d
}

// ---------------------------------------------------------------------------
// Absolute
// ---------------------------------------------------------------------------

// Absolute scores a single snapshot. Terminal phases dominate; otherwise
// hull, boss progress and crew health count for, and hazards, broken
// systems, negative situations and elapsed turns count against.
func Absolute(w Weights, s *engine.Snapshot) Details {
	var d Details

	switch {
	case s.Phase == engine.PhaseVictory:
		d.Vitals += w.Victory
	case s.Phase == engine.PhaseGameOver || s.HullIntegrity <= 0:
		d.Vitals += w.Defeat
	}

	d.Vitals += float64(s.HullIntegrity) * w.HullDamage
	d.Vitals += float64(totalHP(s)) * w.HealthRestore
	d.Offense += float64(s.BossLevel*bossStride+s.Enemy.MaxHP-s.Enemy.HP) * w.BossDamage
	d.Hazards -= float64(s.HazardCount()) * w.HazardCleanup
	d.Hazards -= float64(countBroken(s)) * w.SystemRepair
	d.Situations -= float64(countNegative(s)) * w.SituationResolve
	d.Progression -= float64(s.TurnCount) * w.Turn
	d.sum()
	return d
}

// bossStride credits a defeated boss as this many points of damage.
const bossStride = 10

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func bossProgress(parent, current *engine.Snapshot) int {
	if current.BossLevel > parent.BossLevel {
		return parent.Enemy.HP
	}
	return parent.Enemy.HP - current.Enemy.HP
}

// spentAP is the AP the actor paid for the last action, or 1 when the round
// rolled over and the budget was refilled.
func spentAP(parent, current *engine.Snapshot, actor engine.PlayerID) int {
	if current.TurnCount != parent.TurnCount {
		return 1
	}
	p, ok1 := parent.Players[actor]
	c, ok2 := current.Players[actor]
	if !ok1 || !ok2 || p.AP <= c.AP {
		return 0
	}
	return p.AP - c.AP
}

func countHazard(s *engine.Snapshot, h engine.HazardType) int {
	n := 0
	for i := range s.Rooms {
		n += s.Rooms[i].CountHazard(h)
	}
	return n
}

func countBroken(s *engine.Snapshot) int {
	n := 0
	for i := range s.Rooms {
		if s.Rooms[i].IsBroken {
			n++
		}
	}
	return n
}

func countNegative(s *engine.Snapshot) int {
	n := 0
	for _, c := range s.ActiveSituations {
		if c.Sentiment == engine.SentimentNegative {
			n++
		}
	}
	return n
}

func countCarried(s *engine.Snapshot) int {
	n := 0
	for _, p := range s.Players {
		n += len(p.Inventory)
	}
	return n
}

func totalHP(s *engine.Snapshot) int {
	n := 0
	for _, p := range s.Players {
		n += p.HP
	}
	return n
}
