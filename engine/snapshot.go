package engine

import (
	"encoding/json"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Room is one compartment of the ship.
type Room struct {
	ID        RoomID       `json:"id"`
	Name      string       `json:"name"`
	System    *SystemType  `json:"system,omitempty"`
	IsBroken  bool         `json:"is_broken"`
	Neighbors []RoomID     `json:"neighbors"`
	Hazards   []HazardType `json:"hazards"`
	Items     []ItemType   `json:"items"`
}

// CountHazard returns how many tokens of h are in the room.
func (r *Room) CountHazard(h HazardType) int { return countOf(r.Hazards, h) }

// CountItem returns how many items of type it lie in the room.
func (r *Room) CountItem(it ItemType) int { return countOf(r.Items, it) }

// IsNeighbor reports whether to is directly reachable from r.
func (r *Room) IsNeighbor(to RoomID) bool { return slices.Contains(r.Neighbors, to) }

// Player is one crew member.
type Player struct {
	ID        PlayerID       `json:"id"`
	Name      string         `json:"name"`
	RoomID    RoomID         `json:"room_id"`
	HP        int            `json:"hp"`
	AP        int            `json:"ap"`
	Inventory []ItemType     `json:"inventory"`
	Status    []PlayerStatus `json:"status"`
	IsReady   bool           `json:"is_ready"`
}

// HasStatus reports whether the player currently carries s.
func (p *Player) HasStatus(s PlayerStatus) bool { return slices.Contains(p.Status, s) }

// CountItem returns how many items of type it the player carries.
func (p *Player) CountItem(it ItemType) int { return countOf(p.Inventory, it) }

// Capacity is the number of inventory slots available to the player.
func (p *Player) Capacity() int {
	if slices.Contains(p.Inventory, ItemWheelbarrow) {
		return WheelbarrowCap
	}
	return InventoryCap
}

// CardSolution describes how an active situation is resolved.
type CardSolution struct {
	TargetSystem    *SystemType `json:"target_system,omitempty"`
	APCost          int         `json:"ap_cost"`
	ItemCost        *ItemType   `json:"item_cost,omitempty"`
	RequiredPlayers int         `json:"required_players"`
}

// Card is a situation or flash card.
type Card struct {
	ID          CardID        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        CardType      `json:"card_type"`
	Sentiment   CardSentiment `json:"sentiment"`
	Solution    *CardSolution `json:"solution,omitempty"`
	Countdown   int           `json:"countdown,omitempty"`
}

// EnemyAttack is the telegraphed next attack.
type EnemyAttack struct {
	TargetRoom   *RoomID      `json:"target_room,omitempty"`
	TargetSystem *SystemType  `json:"target_system,omitempty"`
	Effect       AttackEffect `json:"effect"`
}

// Enemy is the current boss.
type Enemy struct {
	Name       string       `json:"name"`
	HP         int          `json:"hp"`
	MaxHP      int          `json:"max_hp"`
	NextAttack *EnemyAttack `json:"next_attack,omitempty"`
}

// ChatMessage is a free-text message recorded by the Chat action.
type ChatMessage struct {
	Sender    PlayerID `json:"sender"`
	Text      string   `json:"text"`
	Timestamp uint64   `json:"timestamp"`
}

// Snapshot is the complete engine state at one point in time.
type Snapshot struct {
	SequenceID       uint64              `json:"sequence_id"`
	RNG              uint64              `json:"rng_seed"`
	Phase            Phase               `json:"phase"`
	TurnCount        int                 `json:"turn_count"`
	HullIntegrity    int                 `json:"hull_integrity"`
	BossLevel        int                 `json:"boss_level"`
	Rooms            []Room              `json:"rooms"`
	Players          map[PlayerID]Player `json:"players"`
	Roster           []PlayerID          `json:"roster"`
	Enemy            Enemy               `json:"enemy"`
	ActiveSituations []Card              `json:"active_situations"`
	Deck             []CardID            `json:"deck"`
	ChatLog          []ChatMessage       `json:"chat_log"`
	LatestEvent      string              `json:"latest_event,omitempty"`
	ShieldsActive    bool                `json:"shields_active"`
	EvasionActive    bool                `json:"evasion_active"`
	IsResting        bool                `json:"is_resting"`
}

// Room returns the room with the given id.
func (s *Snapshot) Room(id RoomID) (*Room, bool) {
	if id < 0 || id >= len(s.Rooms) {
		return nil, false
	}
	return &s.Rooms[id], true
}

// Player returns the player with the given id.
func (s *Snapshot) Player(id PlayerID) (Player, bool) {
	p, ok := s.Players[id]
	return p, ok
}

// HasSituation reports whether card c is currently active.
func (s *Snapshot) HasSituation(c CardID) bool {
	for i := range s.ActiveSituations {
		if s.ActiveSituations[i].ID == c {
			return true
		}
	}
	return false
}

// HazardCount returns the total number of hazard tokens on the ship.
func (s *Snapshot) HazardCount() int {
	n := 0
	for i := range s.Rooms {
		n += len(s.Rooms[i].Hazards)
	}
	return n
}

// RoundComplete reports whether every roster actor is ready or out of AP.
func (s *Snapshot) RoundComplete() bool {
	for _, id := range s.Roster {
		p := s.Players[id]
		if !p.IsReady && p.AP > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Rooms = slices.Clone(s.Rooms)
	for i, r := range c.Rooms {
		r.System = clonePtr(r.System)
		r.Neighbors = slices.Clone(r.Neighbors)
		r.Hazards = slices.Clone(r.Hazards)
		r.Items = slices.Clone(r.Items)
		c.Rooms[i] = r
	}
	if s.Players != nil {
		c.Players = make(map[PlayerID]Player, len(s.Players))
	}
	for id, p := range s.Players {
		p.Inventory = slices.Clone(p.Inventory)
		p.Status = slices.Clone(p.Status)
		c.Players[id] = p
	}
	c.Roster = slices.Clone(s.Roster)
	if s.Enemy.NextAttack != nil {
		na := *s.Enemy.NextAttack
		na.TargetRoom = clonePtr(na.TargetRoom)
		na.TargetSystem = clonePtr(na.TargetSystem)
		c.Enemy.NextAttack = &na
	}
	c.ActiveSituations = slices.Clone(s.ActiveSituations)
	for i, card := range c.ActiveSituations {
		if card.Solution != nil {
			sol := *card.Solution
			sol.TargetSystem = clonePtr(sol.TargetSystem)
			sol.ItemCost = clonePtr(sol.ItemCost)
			card.Solution = &sol
		}
		c.ActiveSituations[i] = card
	}
	c.Deck = slices.Clone(s.Deck)
	c.ChatLog = slices.Clone(s.ChatLog)
	return &c
}

// Fingerprint is an xxhash digest of the canonical JSON encoding. Two
// snapshots with equal fingerprints are treated as bit-identical.
func (s *Snapshot) Fingerprint() uint64 {
	b, err := json.Marshal(s)
	if err != nil {
		// All fields are plain data; Marshal cannot fail.
		panic(err)
	}
	return xxhash.Sum64(b)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func countOf[T comparable](xs []T, x T) int {
	n := 0
	for _, v := range xs {
		if v == x {
			n++
		}
	}
	return n
}
