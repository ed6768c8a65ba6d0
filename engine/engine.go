// Package engine defines the contract between the replay core and a
// deterministic turn-based cooperative rules engine.
//
// Snapshots are immutable values: every transition returns a new instance
// and callers never mutate a snapshot they did not create. Rooms are a dense
// slice indexed by RoomID and players are keyed by PlayerID, so the fixed
// offsets used by the agent encoders can be computed without lookups.
package engine

// Engine is the rules engine collaborator. Implementations must be
// deterministic: identical inputs always produce bit-identical snapshots.
type Engine interface {
	// NewGame creates the genesis snapshot for the roster and seed.
	NewGame(players []PlayerID, seed uint64) (*Snapshot, error)

	// ApplyAction returns the state after actor performs a. The input
	// snapshot is never modified. A non-nil seedOverride replaces the RNG
	// state before the action resolves. Rejections are *RuleError values.
	ApplyAction(s *Snapshot, actor PlayerID, a Action, seedOverride *uint64) (*Snapshot, error)

	// ValidActions lists the actions currently legal for actor, in a
	// stable order.
	ValidActions(s *Snapshot, actor PlayerID) []Action

	// ComputeScore returns the dense reward for the transition
	// parent -> current given the records that produced it.
	ComputeScore(parent, current *Snapshot, history []Record) float64

	// Schema describes every action variant the engine accepts.
	Schema() Schema
}
