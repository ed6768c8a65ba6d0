// Package sim is a small deterministic rules engine implementing
// engine.Engine.
//
// The ship is a star: room 0 is the hallway and every other room i hosts
// system i-1 and connects only to the hallway. A round runs
// MorningReport -> EnemyTelegraph -> TacticalPlanning; once every crew member
// has voted ready the telegraphed attack and the hazards resolve and the next
// round begins. All randomness comes from an xorshift64 state carried in the
// snapshot, so replays are bit-identical.
package sim

import (
	"fmt"
	"slices"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/scoring"
)

// Room ids of the reference ship.
const (
	RoomHallway   engine.RoomID = 0
	RoomBow       engine.RoomID = 1
	RoomDormitory engine.RoomID = 2
	RoomCargo     engine.RoomID = 3
	RoomEngine    engine.RoomID = 4
	RoomKitchen   engine.RoomID = 5
	RoomCannons   engine.RoomID = 6
	RoomBridge    engine.RoomID = 7
	RoomSickbay   engine.RoomID = 8
	RoomStorage   engine.RoomID = 9
	numRooms                    = 10
)

// StartRoom is where every crew member wakes up.
const StartRoom = RoomDormitory

type boss struct {
	name string
	hp   int
}

var bosses = [...]boss{
	{"The Petty Thief", 5},
	{"The Kraken", 8},
	{"The Admiral", 12},
}

// Engine is the reference engine. The zero value is not usable; call New.
type Engine struct {
	weights scoring.Weights
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights sets the weights ComputeScore uses.
func WithWeights(w scoring.Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// New returns an Engine with default scoring weights.
func New(opts ...Option) *Engine {
	e := &Engine{weights: scoring.DefaultWeights()}
	for _, o := range opts {
		o(e)
	}
	return e
}

var _ engine.Engine = (*Engine)(nil)

// Schema implements engine.Engine.
func (e *Engine) Schema() engine.Schema { return engine.DefaultSchema() }

// ComputeScore implements engine.Engine.
func (e *Engine) ComputeScore(parent, current *engine.Snapshot, history []engine.Record) float64 {
	return scoring.Delta(e.weights, parent, current, history).Total
}

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

// game wraps a snapshot that this package owns and may mutate.
type game struct {
	*engine.Snapshot
}

func (g game) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g game) randN(n int) int {
	return int(g.nextRand() % uint64(n))
}

func seedState(seed uint64) uint64 {
	if seed == 0 {
		return 1 // xorshift can't start at 0
	}
	return seed
}

// ---------------------------------------------------------------------------
// NewGame
// ---------------------------------------------------------------------------

var roomNames = [numRooms]string{
	"Central Hallway", "The Bow", "Dormitory", "Cargo Hold", "Engine Room",
	"Kitchen", "Cannons", "Bridge", "Sickbay", "Storage",
}

// NewGame implements engine.Engine. Crew members start in the dormitory
// and the game waits in the lobby until everyone votes ready.
func (e *Engine) NewGame(players []engine.PlayerID, seed uint64) (*engine.Snapshot, error) {
	if len(players) == 0 || len(players) > engine.MaxPlayers {
		return nil, fmt.Errorf("sim: need 1..%d players, got %d", engine.MaxPlayers, len(players))
	}
	for i, id := range players {
		if id == "" {
			return nil, fmt.Errorf("sim: empty player id at position %d", i)
		}
		if slices.Contains(players[:i], id) {
			return nil, fmt.Errorf("sim: duplicate player id %q", id)
		}
	}

	s := &engine.Snapshot{
		RNG:           seedState(seed),
		Phase:         engine.PhaseLobby,
		HullIntegrity: engine.MaxHull,
		Rooms:         make([]engine.Room, numRooms),
		Players:       make(map[engine.PlayerID]engine.Player, len(players)),
		Roster:        slices.Clone(players),
		Enemy:         engine.Enemy{Name: bosses[0].name, HP: bosses[0].hp, MaxHP: bosses[0].hp},
	}

	for i := range s.Rooms {
		r := engine.Room{ID: i, Name: roomNames[i], Hazards: []engine.HazardType{}, Items: []engine.ItemType{}}
		if i == int(RoomHallway) {
			for j := 1; j < numRooms; j++ {
				r.Neighbors = append(r.Neighbors, j)
			}
		} else {
			sys := engine.SystemType(i - 1)
			r.System = &sys
			r.Neighbors = []engine.RoomID{RoomHallway}
		}
		s.Rooms[i] = r
	}
	for range 5 {
		s.Rooms[RoomStorage].Items = append(s.Rooms[RoomStorage].Items, engine.ItemPeppernut)
	}
	s.Rooms[RoomCargo].Items = append(s.Rooms[RoomCargo].Items, engine.ItemExtinguisher, engine.ItemWheelbarrow)

	for _, id := range players {
		s.Players[id] = engine.Player{
			ID:        id,
			Name:      id,
			RoomID:    StartRoom,
			HP:        engine.MaxHP,
			AP:        engine.MaxAP,
			Inventory: []engine.ItemType{},
			Status:    []engine.PlayerStatus{},
		}
	}

	g := game{s}
	g.shuffleDeck()
	g.LatestEvent = "Waiting in the lobby"
	return s, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// player returns a copy of the player; write it back with setPlayer.
func (g game) player(id engine.PlayerID) (engine.Player, bool) {
	p, ok := g.Players[id]
	return p, ok
}

func (g game) setPlayer(p engine.Player) { g.Players[p.ID] = p }

func (g game) room(id engine.RoomID) *engine.Room {
	r, ok := g.Room(id)
	if !ok {
		return nil
	}
	return r
}

func (g game) systemRoom(sys engine.SystemType) engine.RoomID {
	return engine.RoomID(sys) + 1
}

func (g game) allReady() bool {
	for _, id := range g.Roster {
		if !g.Players[id].IsReady {
			return false
		}
	}
	return true
}

func removeAt[T any](xs []T, i int) []T {
	return slices.Delete(xs, i, i+1)
}

func removeOne[T comparable](xs []T, x T) ([]T, bool) {
	i := slices.Index(xs, x)
	if i < 0 {
		return xs, false
	}
	return removeAt(xs, i), true
}
