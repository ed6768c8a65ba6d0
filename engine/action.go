package engine

import (
	"encoding"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// ActionType is the tag of an Action variant.
type ActionType string

const (
	ActMove             ActionType = "Move"
	ActBake             ActionType = "Bake"
	ActShoot            ActionType = "Shoot"
	ActRaiseShields     ActionType = "RaiseShields"
	ActEvasiveManeuvers ActionType = "EvasiveManeuvers"
	ActInteract         ActionType = "Interact"
	ActExtinguish       ActionType = "Extinguish"
	ActRepair           ActionType = "Repair"
	ActThrow            ActionType = "Throw"
	ActPickUp           ActionType = "PickUp"
	ActDrop             ActionType = "Drop"
	ActRevive           ActionType = "Revive"
	ActLookout          ActionType = "Lookout"
	ActFirstAid         ActionType = "FirstAid"
	ActChat             ActionType = "Chat"
	ActVoteReady        ActionType = "VoteReady"
	ActPass             ActionType = "Pass"
)

// Payload field names.
const (
	FieldToRoom       = "to_room"
	FieldTargetPlayer = "target_player"
	FieldItemIndex    = "item_index"
	FieldItemType     = "item_type"
	FieldMessage      = "message"
	FieldReady        = "ready"
)

// Action is a tagged variant: a type plus an optional payload.
type Action struct {
	Type    ActionType     `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Record is one action attributed to an actor.
type Record struct {
	Actor  PlayerID `json:"actor"`
	Action Action   `json:"action"`
}

// RoundBlock is the ordered list of records submitted for one round.
type RoundBlock []Record

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func Simple(t ActionType) Action { return Action{Type: t} }

func Move(to RoomID) Action {
	return Action{Type: ActMove, Payload: map[string]any{FieldToRoom: to}}
}

func PickUp(it ItemType) Action {
	return Action{Type: ActPickUp, Payload: map[string]any{FieldItemType: it.String()}}
}

func Drop(itemIndex int) Action {
	return Action{Type: ActDrop, Payload: map[string]any{FieldItemIndex: itemIndex}}
}

func Throw(target PlayerID, itemIndex int) Action {
	return Action{Type: ActThrow, Payload: map[string]any{FieldTargetPlayer: target, FieldItemIndex: itemIndex}}
}

func FirstAid(target PlayerID) Action {
	return Action{Type: ActFirstAid, Payload: map[string]any{FieldTargetPlayer: target}}
}

func Revive(target PlayerID) Action {
	return Action{Type: ActRevive, Payload: map[string]any{FieldTargetPlayer: target}}
}

func Chat(msg string) Action {
	return Action{Type: ActChat, Payload: map[string]any{FieldMessage: msg}}
}

func VoteReady(ready bool) Action {
	return Action{Type: ActVoteReady, Payload: map[string]any{FieldReady: ready}}
}

func Pass() Action { return Action{Type: ActPass} }

// ---------------------------------------------------------------------------
// Payload access
// ---------------------------------------------------------------------------

// Int returns the payload field as an integer, accepting any integral
// numeric representation or a decimal string.
func (a Action) Int(key string) (int, bool) {
	v, ok := a.Payload[key]
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// Str returns the payload field as a string.
func (a Action) Str(key string) (string, bool) {
	v, ok := a.Payload[key]
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case encoding.TextMarshaler:
		b, err := x.MarshalText()
		if err != nil {
			return "", false
		}
		return string(b), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

// Bool returns the payload field as a boolean.
func (a Action) Bool(key string) (bool, bool) {
	v, ok := a.Payload[key]
	if !ok {
		return false, false
	}
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(x)
		return b, err == nil
	}
	return false, false
}

// Item returns the item_type payload field.
func (a Action) Item() (ItemType, bool) {
	if v, ok := a.Payload[FieldItemType]; ok {
		if it, ok := v.(ItemType); ok {
			return it, true
		}
	}
	s, ok := a.Str(FieldItemType)
	if !ok {
		return 0, false
	}
	it, err := ParseItemType(s)
	return it, err == nil
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		return int(x), true
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case json.Number:
		n, err := x.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

// canonical renders a payload value so that 1, 1.0, "1" and json.Number("1")
// compare equal, and typed enums compare equal to their names.
func canonical(v any) string {
	if n, ok := toInt(v); ok {
		return strconv.Itoa(n)
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strings.TrimSpace(x)
	case encoding.TextMarshaler:
		if b, err := x.MarshalText(); err == nil {
			return string(b)
		}
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Equal reports structural equality: same tag, same payload keys, and
// payload values equal under int/string coercion.
func (a Action) Equal(b Action) bool {
	if a.Type != b.Type || len(a.Payload) != len(b.Payload) {
		return false
	}
	for k, av := range a.Payload {
		bv, ok := b.Payload[k]
		if !ok || canonical(av) != canonical(bv) {
			return false
		}
	}
	return true
}

// AppendKey appends an exact, self-delimiting encoding of r to dst. Two
// records with the same key are interchangeable to the engine: integral
// numbers collapse across Go types (so a JSON round trip keeps the key) but
// strings are kept verbatim and every value carries its kind.
func (r Record) AppendKey(dst []byte) []byte {
	dst = appendField(dst, r.Actor)
	dst = appendField(dst, string(r.Action.Type))
	keys := slices.Sorted(maps.Keys(r.Action.Payload))
	dst = binary.AppendUvarint(dst, uint64(len(keys)))
	for _, k := range keys {
		dst = appendField(dst, k)
		dst = appendField(dst, valueKey(r.Action.Payload[k]))
	}
	return dst
}

func appendField(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

func valueKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "z"
	case bool:
		return "b" + strconv.FormatBool(x)
	case string:
		return "s" + x
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		if n, ok := toInt(x); ok {
			return "n" + strconv.Itoa(n)
		}
		return fmt.Sprintf("f%v", x)
	case encoding.TextMarshaler:
		if b, err := x.MarshalText(); err == nil {
			return "s" + string(b)
		}
	case fmt.Stringer:
		return "s" + x.String()
	}
	return fmt.Sprintf("x%T:%#v", v, v)
}

// Clone returns a copy with its own payload map.
func (a Action) Clone() Action {
	if a.Payload != nil {
		a.Payload = maps.Clone(a.Payload)
	}
	return a
}

// Equal compares actor and action.
func (r Record) Equal(o Record) bool { return r.Actor == o.Actor && r.Action.Equal(o.Action) }

// Equal compares two blocks record by record.
func (b RoundBlock) Equal(o RoundBlock) bool {
	return slices.EqualFunc(b, o, Record.Equal)
}

// ContainsAction reports whether a appears in list.
func ContainsAction(list []Action, a Action) bool {
	return slices.ContainsFunc(list, a.Equal)
}

// ---------------------------------------------------------------------------
// Text form
// ---------------------------------------------------------------------------

// String renders the action the way solution files spell it, e.g.
// "Move 3", "Throw P2 0", "PickUp Peppernut". Payload the variant does not
// take is appended as key=value so no part of the action is hidden.
func (a Action) String() string {
	var out string
	switch a.Type {
	case ActMove:
		out = "Move " + a.text(FieldToRoom)
	case ActThrow:
		out = "Throw " + a.text(FieldTargetPlayer) + " " + a.text(FieldItemIndex)
	case ActPickUp:
		out = "PickUp " + a.text(FieldItemType)
	case ActDrop:
		out = "Drop " + a.text(FieldItemIndex)
	case ActFirstAid, ActRevive:
		out = string(a.Type) + " " + a.text(FieldTargetPlayer)
	case ActChat:
		m := a.text(FieldMessage)
		if strings.ContainsFunc(m, unicode.IsControl) {
			m = strconv.Quote(m)
		}
		out = "Chat " + m
	case ActVoteReady:
		r, ok := a.Bool(FieldReady)
		switch {
		case !ok:
			out = "VoteReady " + a.text(FieldReady)
		case r:
			out = "Ready"
		default:
			out = "Unready"
		}
	default:
		out = string(a.Type)
	}
	v, _ := DefaultSchema().Variant(a.Type)
	for _, k := range slices.Sorted(maps.Keys(a.Payload)) {
		if !slices.ContainsFunc(v.Fields, func(f Field) bool { return f.Name == k }) {
			out += " " + k + "=" + a.text(k)
		}
	}
	return out
}

// text renders one payload field. Values the typed accessors reject are
// shown as given, quoted when they are strings.
func (a Action) text(key string) string {
	v, ok := a.Payload[key]
	if !ok {
		return "<missing>"
	}
	if _, isStr := v.(string); !isStr {
		if n, ok := toInt(v); ok {
			return strconv.Itoa(n)
		}
	}
	switch key {
	case FieldToRoom, FieldItemIndex:
		if n, ok := a.Int(key); ok {
			return strconv.Itoa(n)
		}
	case FieldItemType:
		if it, ok := a.Item(); ok {
			return it.String()
		}
	default:
		if s, ok := a.Str(key); ok {
			return s
		}
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}

func (r Record) String() string { return r.Actor + ": " + r.Action.String() }
