package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestActionEqualCoercion(t *testing.T) {
	tests := []struct {
		a, b Action
		want bool
	}{
		{Move(3), Action{Type: ActMove, Payload: map[string]any{"to_room": "3"}}, true},
		{Move(3), Action{Type: ActMove, Payload: map[string]any{"to_room": 3.0}}, true},
		{Move(3), Action{Type: ActMove, Payload: map[string]any{"to_room": int64(3)}}, true},
		{Move(3), Action{Type: ActMove, Payload: map[string]any{"to_room": json.Number("3")}}, true},
		{Move(3), Move(4), false},
		{Move(3), Action{Type: ActMove, Payload: map[string]any{"to_room": 3.5}}, false},
		{PickUp(ItemPeppernut), Action{Type: ActPickUp, Payload: map[string]any{"item_type": ItemPeppernut}}, true},
		{Throw("P2", 0), Action{Type: ActThrow, Payload: map[string]any{"target_player": "P2", "item_index": "0"}}, true},
		{Throw("P2", 0), Throw("P3", 0), false},
		{Pass(), Action{Type: ActPass, Payload: map[string]any{}}, true},
		{Pass(), Simple(ActBake), false},
		{Drop(0), Action{Type: ActDrop}, false},
		{VoteReady(true), Action{Type: ActVoteReady, Payload: map[string]any{"ready": true}}, true},
	}
	for i, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("case %d: %v.Equal(%v) = %t, want %t", i, tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Equal(tt.a); got != tt.want {
			t.Errorf("case %d: Equal not symmetric", i)
		}
	}
}

func TestActionJSONRoundTripStaysEqual(t *testing.T) {
	for _, a := range []Action{Move(7), Throw("P4", 1), PickUp(ItemMitre), Drop(2), Chat("hi"), VoteReady(false), Pass()} {
		b, err := json.Marshal(Record{Actor: "P1", Action: a})
		if err != nil {
			t.Fatal(err)
		}
		var r Record
		if err := json.Unmarshal(b, &r); err != nil {
			t.Fatal(err)
		}
		if !r.Action.Equal(a) || r.Actor != "P1" {
			t.Fatalf("%s: round trip gave %s", a, r.Action)
		}
	}
}

func TestActionString(t *testing.T) {
	tests := map[string]Action{
		"Move 3":           Move(3),
		"Throw P2 0":       Throw("P2", 0),
		"PickUp Peppernut": PickUp(ItemPeppernut),
		"Drop 1":           Drop(1),
		"FirstAid P3":      FirstAid("P3"),
		"Revive P1":        Revive("P1"),
		"Ready":            VoteReady(true),
		"Unready":          VoteReady(false),
		"Bake":             Simple(ActBake),
		"Chat hello":       Chat("hello"),
	}
	for want, a := range tests {
		if got := a.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestActionStringShowsRawPayload(t *testing.T) {
	tests := map[string]Action{
		`Move "zero"`:          {Type: ActMove, Payload: map[string]any{FieldToRoom: "zero"}},
		"Move 4":               {Type: ActMove, Payload: map[string]any{FieldToRoom: "4"}},
		"Move <missing>":       {Type: ActMove},
		"Pass note=1":          {Type: ActPass, Payload: map[string]any{"note": 1}},
		"Move 2 speed=fast":    {Type: ActMove, Payload: map[string]any{FieldToRoom: 2, "speed": "fast"}},
		`Chat "hi\nP1: Pass"`: Chat("hi\nP1: Pass"),
		"VoteReady maybe":      {Type: ActVoteReady, Payload: map[string]any{FieldReady: "maybe"}},
	}
	for want, a := range tests {
		if got := a.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestRecordKey(t *testing.T) {
	key := func(r Record) string { return string(r.AppendKey(nil)) }
	move := Record{"P1", Move(3)}
	same := []Record{
		{"P1", Action{Type: ActMove, Payload: map[string]any{FieldToRoom: float64(3)}}},
		{"P1", Action{Type: ActMove, Payload: map[string]any{FieldToRoom: json.Number("3")}}},
		{"P1", Action{Type: ActMove, Payload: map[string]any{FieldToRoom: uint8(3)}}},
	}
	for _, r := range same {
		if key(r) != key(move) {
			t.Errorf("%v: key differs from %v", r.Action.Payload, move.Action.Payload)
		}
	}
	differ := []Record{
		{"P2", Move(3)},
		{"P1", Action{Type: ActMove, Payload: map[string]any{FieldToRoom: "3"}}},
		{"P1", Action{Type: ActMove, Payload: map[string]any{FieldToRoom: 3.5}}},
		{"P1", Action{Type: ActMove, Payload: map[string]any{FieldToRoom: 3, "x": nil}}},
		{"P1", Simple(ActMove)},
	}
	for _, r := range differ {
		if key(r) == key(move) {
			t.Errorf("%v: key equals %v", r, move)
		}
	}
	if key(Record{"P1", Chat(" hi")}) == key(Record{"P1", Chat("hi")}) {
		t.Errorf("chat text is trimmed in the key")
	}
	if key(Record{"P1", PickUp(ItemPeppernut)}) != key(Record{"P1", Action{Type: ActPickUp, Payload: map[string]any{FieldItemType: ItemPeppernut}}}) {
		t.Errorf("typed item and its name key differently")
	}
	// Self-delimiting: a field boundary cannot be forged inside a value.
	a := Record{"P1", Action{Type: ActChat, Payload: map[string]any{"a": "b", "c": "d"}}}
	b := Record{"P1", Action{Type: ActChat, Payload: map[string]any{"a": "b\x01c\x02sd"}}}
	if key(a) == key(b) {
		t.Errorf("keys collide across field boundaries")
	}
}

func TestRoundBlockEqual(t *testing.T) {
	a := RoundBlock{{"P1", Move(0)}, {"P2", Pass()}}
	b := RoundBlock{{"P1", Action{Type: ActMove, Payload: map[string]any{"to_room": "0"}}}, {"P2", Pass()}}
	if !a.Equal(b) {
		t.Fatalf("blocks differ under coercion")
	}
	if a.Equal(b[:1]) {
		t.Fatalf("prefix reported equal")
	}
	if a.Equal(RoundBlock{{"P2", Move(0)}, {"P2", Pass()}}) {
		t.Fatalf("different actor reported equal")
	}
}

func TestSchemaValidate(t *testing.T) {
	s := DefaultSchema()
	for _, a := range []Action{Move(1), Throw("P1", 0), PickUp(ItemKeychain), VoteReady(true), Pass(), Chat("x")} {
		if err := s.Validate(a); err != nil {
			t.Errorf("Validate(%s): %v", a, err)
		}
	}
	bad := []Action{
		{Type: "Teleport"},
		{Type: ActMove},
		{Type: ActMove, Payload: map[string]any{"to_room": "hallway"}},
		{Type: ActPickUp, Payload: map[string]any{"item_type": "Banana"}},
		{Type: ActPass, Payload: map[string]any{"extra": 1}},
	}
	for _, a := range bad {
		if err := s.Validate(a); err == nil {
			t.Errorf("Validate(%+v) succeeded, want error", a)
		}
	}
}

func TestRuleErrorIs(t *testing.T) {
	err := fmt.Errorf("apply: %w", Reject(CodeNotEnoughAP, "P1 has 0 AP"))
	if !errors.Is(err, ErrNotEnoughAP) {
		t.Fatalf("errors.Is(NotEnoughAP) = false")
	}
	if errors.Is(err, ErrInvalidMove) {
		t.Fatalf("errors.Is(InvalidMove) = true")
	}
	var re *RuleError
	if !errors.As(err, &re) || re.Code != CodeNotEnoughAP {
		t.Fatalf("errors.As gave %v", re)
	}
	if got := re.Error(); got != "NotEnoughAP: P1 has 0 AP" {
		t.Fatalf("Error() = %q", got)
	}
}
