// Package agent is the fixed-shape control surface over engine snapshots:
// a discrete action table with legality masking, and an observation
// encoder with constant offsets.
package agent

import "github.com/pippijn/sint/engine"

// Action table. Per-recipient slots address roster positions.
const (
	NumActions    = 46
	NumRecipients = engine.MaxPlayers
	NumDropSlots  = engine.WheelbarrowCap

	IdxMove       = 0 // 0-9: Move{to_room: i}
	IdxInteract   = 10
	IdxBake       = 11
	IdxShoot      = 12
	IdxShields    = 13
	IdxEvasive    = 14
	IdxExtinguish = 15
	IdxRepair     = 16
	IdxPickUp     = 17 // 17-21: PickUp by item ordinal
	IdxDrop       = 22 // 22-26: Drop slot 0-4
	IdxThrow      = 27 // 27-32: Throw{roster[k], item 0}
	IdxFirstAid   = 33 // 33-38
	IdxRevive     = 39 // 39-44
	IdxPass       = 45
)

// Observation layout.
const (
	GlobalDim     = 8
	RoomSlots     = engine.MaxRooms
	RoomDim       = 2 + int(engine.NumItemTypes) + 2
	PlayerSlots   = engine.MaxPlayers
	PlayerDim     = 3 + int(engine.NumItemTypes) + 1
	SituationDim  = int(engine.NumCards)
	CardDetailDim = 4
	IntentDim     = 2

	OffGlobals     = 0
	OffRooms       = OffGlobals + GlobalDim                      // 8
	OffPlayers     = OffRooms + RoomSlots*RoomDim                // 98
	OffSituations  = OffPlayers + PlayerSlots*PlayerDim          // 152
	OffCardDetails = OffSituations + SituationDim                // 202
	OffIntent      = OffCardDetails + SituationDim*CardDetailDim // 402

	InputDim = 404
)

// Compile-time layout checks: both array lengths must be non-negative.
var (
	_ [InputDim - (OffIntent + IntentDim)]struct{}
	_ [(OffIntent + IntentDim) - InputDim]struct{}
	_ [NumActions - (IdxPass + 1)]struct{}
	_ [(IdxRevive + NumRecipients) - IdxPass]struct{}
	_ [(IdxPass) - (IdxRevive + NumRecipients)]struct{}
)

// Normalisation constants.
const (
	normHull     = engine.MaxHull
	normTurn     = 100
	normBoss     = 10
	normEnemyHP  = 100
	normPhase    = 10
	normHazard   = 5
	normRoomItem = 10
	normOrdinal  = 10
	normRoom     = 10
	normHP       = engine.MaxHP
	normAP       = 4
	normInvItem  = 5
	normCardAP   = 5
	normCrew     = 4
)

// Soft range every observation field stays within.
const (
	SoftMin = -1
	SoftMax = 2
)
