package agent

import (
	"errors"
	"fmt"

	"github.com/pippijn/sint/engine"
)

var (
	// ErrIndexOutOfRange is returned for indices outside [0, NumActions).
	ErrIndexOutOfRange = errors.New("agent: action index out of range")
	// ErrEmptySlot is returned for a recipient slot past the roster end.
	ErrEmptySlot = errors.New("agent: recipient slot is empty")
	// ErrMaskedAction means a caller selected an index whose mask bit is
	// false. The action table and the engine's live rules disagree.
	ErrMaskedAction = errors.New("agent: selected action is masked")
	// ErrSchemaDrift means the engine schema no longer accepts an action
	// the table can produce.
	ErrSchemaDrift = errors.New("agent: action table does not match engine schema")
)

// MaskedActionError describes a masked selection.
type MaskedActionError struct {
	Index  int
	Actor  engine.PlayerID
	Action engine.Action
}

func (e *MaskedActionError) Error() string {
	return fmt.Sprintf("%v: index %d (%s) for %s", ErrMaskedAction, e.Index, e.Action, e.Actor)
}

func (e *MaskedActionError) Unwrap() error { return ErrMaskedAction }

// ActionFor maps a table index to the structured action. Recipient slots
// address roster positions, so the roster is needed to resolve them.
func ActionFor(idx int, roster []engine.PlayerID) (engine.Action, error) {
	switch {
	case idx < 0 || idx >= NumActions:
		return engine.Action{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	case idx < IdxInteract:
		return engine.Move(idx - IdxMove), nil
	case idx == IdxInteract:
		return engine.Simple(engine.ActInteract), nil
	case idx == IdxBake:
		return engine.Simple(engine.ActBake), nil
	case idx == IdxShoot:
		return engine.Simple(engine.ActShoot), nil
	case idx == IdxShields:
		return engine.Simple(engine.ActRaiseShields), nil
	case idx == IdxEvasive:
		return engine.Simple(engine.ActEvasiveManeuvers), nil
	case idx == IdxExtinguish:
		return engine.Simple(engine.ActExtinguish), nil
	case idx == IdxRepair:
		return engine.Simple(engine.ActRepair), nil
	case idx < IdxDrop:
		return engine.PickUp(engine.ItemType(idx - IdxPickUp)), nil
	case idx < IdxThrow:
		return engine.Drop(idx - IdxDrop), nil
	case idx == IdxPass:
		return engine.Pass(), nil
	}

	base, build := IdxRevive, engine.Revive
	switch {
	case idx < IdxFirstAid:
		base, build = IdxThrow, func(p engine.PlayerID) engine.Action { return engine.Throw(p, 0) }
	case idx < IdxRevive:
		base, build = IdxFirstAid, engine.FirstAid
	}
	k := idx - base
	if k >= len(roster) {
		return engine.Action{}, fmt.Errorf("%w: index %d needs roster slot %d, roster has %d", ErrEmptySlot, idx, k, len(roster))
	}
	return build(roster[k]), nil
}

// IndexOf maps a structured action back to its table index.
func IndexOf(a engine.Action, roster []engine.PlayerID) (int, bool) {
	for i := 0; i < NumActions; i++ {
		c, err := ActionFor(i, roster)
		if err == nil && c.Equal(a) {
			return i, true
		}
	}
	return 0, false
}

// ActionMask writes the legality of every table index for actor into out.
// An actor without spendable AP gets an all-false mask; that means "wait",
// not an error.
func ActionMask(eng engine.Engine, s *engine.Snapshot, actor engine.PlayerID, out *[NumActions]bool) {
	*out = [NumActions]bool{}
	p, ok := s.Players[actor]
	if !ok || p.AP <= 0 {
		return
	}
	valid := eng.ValidActions(s, actor)
	for i := 0; i < NumActions; i++ {
		a, err := ActionFor(i, s.Roster)
		if err != nil {
			continue
		}
		out[i] = engine.ContainsAction(valid, a)
	}
}

// Resolve returns the action for idx after checking it against the mask.
// Selecting a masked index yields a *MaskedActionError.
func Resolve(eng engine.Engine, s *engine.Snapshot, actor engine.PlayerID, idx int) (engine.Action, error) {
	a, err := ActionFor(idx, s.Roster)
	if err != nil {
		return engine.Action{}, err
	}
	var mask [NumActions]bool
	ActionMask(eng, s, actor, &mask)
	if !mask[idx] {
		return engine.Action{}, &MaskedActionError{Index: idx, Actor: actor, Action: a}
	}
	return a, nil
}

// CheckSchema verifies that every action the table can produce is accepted
// by schema. Run it once per engine before training.
func CheckSchema(schema engine.Schema) error {
	roster := make([]engine.PlayerID, NumRecipients)
	for i := range roster {
		roster[i] = fmt.Sprintf("P%d", i+1)
	}
	var errs []error
	for i := 0; i < NumActions; i++ {
		a, err := ActionFor(i, roster)
		if err != nil {
			return err
		}
		if err := schema.Validate(a); err != nil {
			errs = append(errs, fmt.Errorf("index %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrSchemaDrift, errors.Join(errs...))
	}
	return nil
}
