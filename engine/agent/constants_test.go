package agent

import (
	"testing"

	"github.com/pippijn/sint/engine"
)

// TestLayoutOffsets pins the observation offsets consumers index into.
func TestLayoutOffsets(t *testing.T) {
	cases := []struct {
		name      string
		got, want int
	}{
		{"OffRooms", OffRooms, 8},
		{"RoomDim", RoomDim, 9},
		{"OffPlayers", OffPlayers, 98},
		{"PlayerDim", PlayerDim, 9},
		{"OffSituations", OffSituations, 152},
		{"OffCardDetails", OffCardDetails, 202},
		{"OffIntent", OffIntent, 402},
		{"InputDim", InputDim, 404},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

// TestActionTableBounds pins the slot ranges of the action table.
func TestActionTableBounds(t *testing.T) {
	if NumActions != 46 {
		t.Fatalf("NumActions = %d, want 46", NumActions)
	}
	if IdxPickUp+int(engine.NumItemTypes) != IdxDrop {
		t.Errorf("pickup range ends at %d, want %d", IdxPickUp+int(engine.NumItemTypes), IdxDrop)
	}
	if IdxDrop+NumDropSlots != IdxThrow {
		t.Errorf("drop range ends at %d, want %d", IdxDrop+NumDropSlots, IdxThrow)
	}
	if IdxThrow+NumRecipients != IdxFirstAid || IdxFirstAid+NumRecipients != IdxRevive {
		t.Errorf("recipient ranges overlap")
	}
	if IdxMove+engine.MaxRooms != IdxInteract {
		t.Errorf("move range ends at %d, want %d", IdxMove+engine.MaxRooms, IdxInteract)
	}
}
