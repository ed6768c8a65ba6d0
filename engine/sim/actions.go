package sim

import (
	"github.com/pippijn/sint/engine"
)

// apCost is the action point price of each action type during planning.
func apCost(t engine.ActionType) int {
	switch t {
	case engine.ActRaiseShields, engine.ActEvasiveManeuvers:
		return 2
	case engine.ActChat, engine.ActVoteReady, engine.ActPass:
		return 0
	}
	return 1
}

// planningOnly reports whether t may only be taken during TacticalPlanning.
func planningOnly(t engine.ActionType) bool {
	return t != engine.ActChat && t != engine.ActVoteReady
}

// ApplyAction implements engine.Engine.
func (e *Engine) ApplyAction(s *engine.Snapshot, actor engine.PlayerID, a engine.Action, seedOverride *uint64) (*engine.Snapshot, error) {
	if s == nil {
		return nil, engine.Reject(engine.CodeInvalidAction, "nil snapshot")
	}
	if err := e.Schema().Validate(a); err != nil {
		return nil, engine.Reject(engine.CodeInvalidAction, "%v", err)
	}
	if s.Phase.IsTerminal() {
		return nil, engine.Reject(engine.CodeWrongPhase, "game is over (%s)", s.Phase)
	}
	p, ok := s.Players[actor]
	if !ok {
		return nil, engine.Reject(engine.CodePlayerNotFound, "%s", actor)
	}
	if planningOnly(a.Type) && s.Phase != engine.PhaseTacticalPlanning {
		return nil, engine.Reject(engine.CodeWrongPhase, "%s not allowed during %s", a.Type, s.Phase)
	}

	g := game{s.Clone()}
	if seedOverride != nil {
		g.RNG = seedState(*seedOverride)
	}

	if planningOnly(a.Type) {
		if p.IsReady {
			return nil, engine.Reject(engine.CodeInvalidAction, "%s already voted ready", actor)
		}
		if p.HasStatus(engine.StatusFainted) {
			return nil, engine.Reject(engine.CodeInvalidAction, "%s is fainted", actor)
		}
		cost := apCost(a.Type)
		if a.Type == engine.ActInteract {
			cost = 1
			if i := g.solvableSituation(p); i >= 0 {
				cost = g.ActiveSituations[i].Solution.APCost
			}
		}
		if p.AP < cost || p.AP == 0 {
			return nil, engine.Reject(engine.CodeNotEnoughAP, "%s has %d AP, %s costs %d", actor, p.AP, a.Type, cost)
		}
	}

	var err error
	switch a.Type {
	case engine.ActMove:
		err = g.move(p, a)
	case engine.ActBake:
		err = g.bake(p)
	case engine.ActShoot:
		err = g.shoot(p)
	case engine.ActRaiseShields:
		err = g.systemAction(p, engine.SystemEngine, func() { g.ShieldsActive = true })
	case engine.ActEvasiveManeuvers:
		err = g.systemAction(p, engine.SystemBridge, func() { g.EvasionActive = true })
	case engine.ActInteract:
		err = g.interact(p)
	case engine.ActExtinguish:
		err = g.extinguish(p)
	case engine.ActRepair:
		err = g.repair(p)
	case engine.ActThrow:
		err = g.throw(p, a)
	case engine.ActPickUp:
		err = g.pickUp(p, a)
	case engine.ActDrop:
		err = g.drop(p, a)
	case engine.ActRevive:
		err = g.revive(p, a)
	case engine.ActLookout:
		err = g.lookout(p)
	case engine.ActFirstAid:
		err = g.firstAid(p, a)
	case engine.ActChat:
		err = g.chat(p, a)
	case engine.ActVoteReady:
		err = g.voteReady(p, a)
	case engine.ActPass:
		p.AP = 0
		p.IsReady = true
		g.setPlayer(p)
		g.LatestEvent = actor + " passes"
	default:
		err = engine.Reject(engine.CodeInvalidAction, "unsupported action %s", a.Type)
	}
	if err != nil {
		return nil, err
	}

	g.SequenceID++
	if g.Phase == engine.PhaseTacticalPlanning && a.Type != engine.ActInteract && planningOnly(a.Type) && a.Type != engine.ActPass {
		g.spend(actor, apCost(a.Type))
	}
	if g.allReady() {
		g.advance()
	}
	return g.Snapshot, nil
}

func (g game) spend(id engine.PlayerID, n int) {
	p := g.Players[id]
	p.AP -= n
	if p.AP < 0 {
		p.AP = 0
	}
	g.setPlayer(p)
}

// ---------------------------------------------------------------------------
// Individual actions. Each receives the actor as it was before the action
// and writes back any change it makes.
// ---------------------------------------------------------------------------

func (g game) move(p engine.Player, a engine.Action) error {
	to, _ := a.Int(engine.FieldToRoom)
	target := g.room(to)
	if target == nil {
		return engine.Reject(engine.CodeRoomNotFound, "room %d", to)
	}
	if !g.room(p.RoomID).IsNeighbor(to) {
		return engine.Reject(engine.CodeInvalidMove, "room %d is not adjacent to room %d", to, p.RoomID)
	}
	if to == RoomCargo && g.HasSituation(engine.CardBlockade) {
		return engine.Reject(engine.CodeRoomBlocked, "room %d is blocked", to)
	}
	p.RoomID = to
	g.setPlayer(p)
	g.LatestEvent = p.ID + " moves to " + target.Name
	return nil
}

// requireSystem checks the player stands in the working room of sys.
func (g game) requireSystem(p engine.Player, sys engine.SystemType) error {
	r := g.room(p.RoomID)
	if r.System == nil || *r.System != sys {
		return engine.Reject(engine.CodeInvalidAction, "%s must be in the %s room", p.ID, sys)
	}
	if r.IsBroken {
		return engine.Reject(engine.CodeInvalidAction, "%s is broken", sys)
	}
	return nil
}

func (g game) systemAction(p engine.Player, sys engine.SystemType, apply func()) error {
	if err := g.requireSystem(p, sys); err != nil {
		return err
	}
	apply()
	g.LatestEvent = p.ID + " operates the " + sys.String()
	return nil
}

func (g game) bake(p engine.Player) error {
	if err := g.requireSystem(p, engine.SystemKitchen); err != nil {
		return err
	}
	r := g.room(p.RoomID)
	r.Items = append(r.Items, engine.ItemPeppernut, engine.ItemPeppernut, engine.ItemPeppernut)
	g.LatestEvent = p.ID + " bakes peppernuts"
	return nil
}

func (g game) shoot(p engine.Player) error {
	if err := g.requireSystem(p, engine.SystemCannons); err != nil {
		return err
	}
	inv, ok := removeOne(p.Inventory, engine.ItemPeppernut)
	if !ok {
		return engine.Reject(engine.CodeInvalidItem, "%s has no peppernut to load", p.ID)
	}
	p.Inventory = inv
	g.setPlayer(p)
	if g.IsResting {
		g.LatestEvent = p.ID + " fires into empty sea"
		return nil
	}
	// One shot in six misses.
	if g.randN(6) == 0 {
		g.LatestEvent = p.ID + " misses"
		return nil
	}
	g.Enemy.HP--
	g.LatestEvent = p.ID + " hits " + g.Enemy.Name
	if g.Enemy.HP <= 0 {
		g.defeatBoss()
	}
	return nil
}

func (g game) defeatBoss() {
	g.BossLevel++
	if g.BossLevel >= len(bosses) {
		g.Enemy.HP = 0
		g.Enemy.NextAttack = nil
		g.Phase = engine.PhaseVictory
		g.LatestEvent = "Victory"
		return
	}
	b := bosses[g.BossLevel]
	g.Enemy = engine.Enemy{Name: b.name, HP: b.hp, MaxHP: b.hp}
	g.IsResting = true
	g.LatestEvent = "Boss defeated, resting before " + b.name
}

func (g game) interact(p engine.Player) error {
	i := g.solvableSituation(p)
	if i < 0 {
		return engine.Reject(engine.CodeInvalidAction, "nothing to solve in room %d", p.RoomID)
	}
	card := g.ActiveSituations[i]
	if c := card.Solution.ItemCost; c != nil {
		p.Inventory, _ = removeOne(p.Inventory, *c)
	}
	p.AP -= card.Solution.APCost
	g.setPlayer(p)
	g.ActiveSituations = removeAt(g.ActiveSituations, i)
	g.applySilence()
	g.LatestEvent = p.ID + " solves " + card.Name
	return nil
}

func (g game) extinguish(p engine.Player) error {
	r := g.room(p.RoomID)
	if r.CountHazard(engine.HazardFire) == 0 {
		return engine.Reject(engine.CodeInvalidAction, "no fire in room %d", p.RoomID)
	}
	if p.CountItem(engine.ItemExtinguisher) > 0 {
		kept := r.Hazards[:0]
		for _, h := range r.Hazards {
			if h != engine.HazardFire {
				kept = append(kept, h)
			}
		}
		r.Hazards = kept
	} else {
		r.Hazards, _ = removeOne(r.Hazards, engine.HazardFire)
	}
	g.LatestEvent = p.ID + " fights the fire in " + r.Name
	return nil
}

func (g game) repair(p engine.Player) error {
	r := g.room(p.RoomID)
	switch {
	case r.CountHazard(engine.HazardWater) > 0:
		r.Hazards, _ = removeOne(r.Hazards, engine.HazardWater)
	case r.IsBroken:
		r.IsBroken = false
	default:
		return engine.Reject(engine.CodeInvalidAction, "nothing to repair in room %d", p.RoomID)
	}
	g.LatestEvent = p.ID + " repairs " + r.Name
	return nil
}

func (g game) throw(p engine.Player, a engine.Action) error {
	target, _ := a.Str(engine.FieldTargetPlayer)
	idx, _ := a.Int(engine.FieldItemIndex)
	t, ok := g.player(target)
	if !ok {
		return engine.Reject(engine.CodePlayerNotFound, "%s", target)
	}
	if target == p.ID {
		return engine.Reject(engine.CodeInvalidAction, "cannot throw to yourself")
	}
	if t.RoomID != p.RoomID && !g.room(p.RoomID).IsNeighbor(t.RoomID) {
		return engine.Reject(engine.CodeInvalidAction, "%s is out of reach", target)
	}
	if idx < 0 || idx >= len(p.Inventory) {
		return engine.Reject(engine.CodeInvalidItem, "no item at slot %d", idx)
	}
	if len(t.Inventory) >= t.Capacity() {
		return engine.Reject(engine.CodeInventoryFull, "%s cannot carry more", target)
	}
	item := p.Inventory[idx]
	p.Inventory = removeAt(p.Inventory, idx)
	t.Inventory = append(t.Inventory, item)
	g.setPlayer(p)
	g.setPlayer(t)
	g.LatestEvent = p.ID + " throws a " + item.String() + " to " + target
	return nil
}

func (g game) pickUp(p engine.Player, a engine.Action) error {
	it, _ := a.Item()
	r := g.room(p.RoomID)
	if r.CountItem(it) == 0 {
		return engine.Reject(engine.CodeInvalidItem, "no %s in room %d", it, p.RoomID)
	}
	if len(p.Inventory) >= p.Capacity() {
		return engine.Reject(engine.CodeInventoryFull, "%s cannot carry more", p.ID)
	}
	r.Items, _ = removeOne(r.Items, it)
	p.Inventory = append(p.Inventory, it)
	g.setPlayer(p)
	g.LatestEvent = p.ID + " picks up a " + it.String()
	return nil
}

func (g game) drop(p engine.Player, a engine.Action) error {
	idx, _ := a.Int(engine.FieldItemIndex)
	if idx < 0 || idx >= len(p.Inventory) {
		return engine.Reject(engine.CodeInvalidItem, "no item at slot %d", idx)
	}
	item := p.Inventory[idx]
	if item == engine.ItemWheelbarrow && len(p.Inventory)-1 > engine.InventoryCap {
		return engine.Reject(engine.CodeInvalidItem, "wheelbarrow is still loaded")
	}
	p.Inventory = removeAt(p.Inventory, idx)
	r := g.room(p.RoomID)
	r.Items = append(r.Items, item)
	g.setPlayer(p)
	g.LatestEvent = p.ID + " drops a " + item.String()
	return nil
}

func (g game) revive(p engine.Player, a engine.Action) error {
	target, _ := a.Str(engine.FieldTargetPlayer)
	t, ok := g.player(target)
	if !ok {
		return engine.Reject(engine.CodePlayerNotFound, "%s", target)
	}
	if t.RoomID != p.RoomID {
		return engine.Reject(engine.CodeInvalidAction, "%s is not in room %d", target, p.RoomID)
	}
	if !t.HasStatus(engine.StatusFainted) {
		return engine.Reject(engine.CodeInvalidAction, "%s is not fainted", target)
	}
	t.Status, _ = removeOne(t.Status, engine.StatusFainted)
	t.HP = 1
	g.setPlayer(t)
	g.LatestEvent = p.ID + " revives " + target
	return nil
}

func (g game) firstAid(p engine.Player, a engine.Action) error {
	if err := g.requireSystem(p, engine.SystemSickbay); err != nil {
		return err
	}
	target, _ := a.Str(engine.FieldTargetPlayer)
	t, ok := g.player(target)
	if !ok {
		return engine.Reject(engine.CodePlayerNotFound, "%s", target)
	}
	if t.RoomID != p.RoomID {
		return engine.Reject(engine.CodeInvalidAction, "%s is not in room %d", target, p.RoomID)
	}
	if t.HasStatus(engine.StatusFainted) || t.HP >= engine.MaxHP {
		return engine.Reject(engine.CodeInvalidAction, "%s cannot be treated", target)
	}
	t.HP++
	g.setPlayer(t)
	g.LatestEvent = p.ID + " treats " + target
	return nil
}

func (g game) lookout(p engine.Player) error {
	if err := g.requireSystem(p, engine.SystemBow); err != nil {
		return err
	}
	na := g.Enemy.NextAttack
	if na == nil || na.Effect != engine.EffectHidden {
		return engine.Reject(engine.CodeInvalidAction, "nothing hidden to spot")
	}
	g.Enemy.NextAttack = g.rollAttack()
	g.LatestEvent = p.ID + " spots the enemy through the fog"
	return nil
}

func (g game) chat(p engine.Player, a engine.Action) error {
	if p.HasStatus(engine.StatusSilenced) {
		return engine.Reject(engine.CodeSilenced, "%s cannot chat", p.ID)
	}
	msg, _ := a.Str(engine.FieldMessage)
	g.ChatLog = append(g.ChatLog, engine.ChatMessage{Sender: p.ID, Text: msg, Timestamp: g.SequenceID})
	return nil
}

func (g game) voteReady(p engine.Player, a engine.Action) error {
	ready, _ := a.Bool(engine.FieldReady)
	if p.IsReady == ready {
		return engine.Reject(engine.CodeInvalidAction, "%s ready is already %t", p.ID, ready)
	}
	p.IsReady = ready
	g.setPlayer(p)
	return nil
}
