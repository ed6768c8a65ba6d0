package engine

import (
	"encoding/json"
	"testing"
)

func sampleSnapshot() *Snapshot {
	sys := SystemCannons
	room := RoomID(6)
	item := ItemPeppernut
	return &Snapshot{
		Phase:         PhaseTacticalPlanning,
		TurnCount:     3,
		HullIntegrity: 17,
		Rooms: []Room{
			{ID: 0, Name: "Hallway", Neighbors: []RoomID{1}, Hazards: []HazardType{HazardFire}, Items: []ItemType{}},
			{ID: 1, Name: "Cannons", System: &sys, Neighbors: []RoomID{0}, Hazards: []HazardType{}, Items: []ItemType{ItemPeppernut}},
		},
		Players: map[PlayerID]Player{
			"P1": {ID: "P1", RoomID: 0, HP: 3, AP: 2, Inventory: []ItemType{ItemMitre}, Status: []PlayerStatus{}},
			"P2": {ID: "P2", RoomID: 1, HP: 1, AP: 0, Inventory: []ItemType{}, Status: []PlayerStatus{StatusSilenced}},
		},
		Roster: []PlayerID{"P1", "P2"},
		Enemy: Enemy{Name: "Boss", HP: 4, MaxHP: 5, NextAttack: &EnemyAttack{
			TargetRoom: &room, TargetSystem: &sys, Effect: EffectFireball,
		}},
		ActiveSituations: []Card{{ID: CardBlockade, Solution: &CardSolution{TargetSystem: &sys, APCost: 1, ItemCost: &item}}},
		Deck:             []CardID{CardFogBank},
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := sampleSnapshot()
	before := s.Fingerprint()
	c := s.Clone()
	if c.Fingerprint() != before {
		t.Fatalf("clone fingerprint differs")
	}

	c.Rooms[0].Hazards[0] = HazardWater
	c.Rooms[1].Neighbors[0] = 9
	*c.Rooms[1].System = SystemBow
	p := c.Players["P1"]
	p.Inventory[0] = ItemKeychain
	c.Players["P1"] = p
	*c.Enemy.NextAttack.TargetRoom = 2
	*c.ActiveSituations[0].Solution.ItemCost = ItemMitre
	c.Roster[0] = "PX"
	c.Deck[0] = CardLeak

	if got := s.Fingerprint(); got != before {
		t.Fatalf("mutating the clone changed the original")
	}
}

func TestFingerprintStable(t *testing.T) {
	a, b := sampleSnapshot(), sampleSnapshot()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal snapshots fingerprint differently")
	}
	b.TurnCount++
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("different snapshots share a fingerprint")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	s := sampleSnapshot()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var back Snapshot
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Fingerprint() != s.Fingerprint() {
		t.Fatalf("fingerprint changed across JSON")
	}
}

func TestRoundComplete(t *testing.T) {
	s := sampleSnapshot()
	if s.RoundComplete() {
		t.Fatalf("P1 has AP and is not ready")
	}
	p := s.Players["P1"]
	p.IsReady = true
	s.Players["P1"] = p
	if !s.RoundComplete() {
		t.Fatalf("P1 ready and P2 out of AP")
	}
}

func TestAccessors(t *testing.T) {
	s := sampleSnapshot()
	if _, ok := s.Room(5); ok {
		t.Fatalf("Room(5) found")
	}
	r, ok := s.Room(0)
	if !ok || r.CountHazard(HazardFire) != 1 || !r.IsNeighbor(1) {
		t.Fatalf("Room(0) = %+v", r)
	}
	if !s.HasSituation(CardBlockade) || s.HasSituation(CardFogBank) {
		t.Fatalf("HasSituation wrong")
	}
	if s.HazardCount() != 1 {
		t.Fatalf("HazardCount = %d, want 1", s.HazardCount())
	}
	p, _ := s.Player("P2")
	if !p.HasStatus(StatusSilenced) || p.Capacity() != InventoryCap {
		t.Fatalf("P2 = %+v", p)
	}
}
