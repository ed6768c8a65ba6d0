package engine

import "fmt"

// FieldKind is the value domain of a payload field.
type FieldKind string

const (
	KindRoom   FieldKind = "room"
	KindPlayer FieldKind = "player"
	KindItem   FieldKind = "item"
	KindIndex  FieldKind = "index"
	KindText   FieldKind = "text"
	KindBool   FieldKind = "bool"
)

// Field is one payload entry of a variant.
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// Variant describes one action tag and its payload.
type Variant struct {
	Type   ActionType `json:"type"`
	Fields []Field    `json:"fields,omitempty"`
}

// Schema is the machine-readable action catalogue reported by an engine.
type Schema struct {
	Version  string    `json:"version"`
	Variants []Variant `json:"variants"`
}

// Variant returns the variant with tag t.
func (s Schema) Variant(t ActionType) (Variant, bool) {
	for _, v := range s.Variants {
		if v.Type == t {
			return v, true
		}
	}
	return Variant{}, false
}

// Validate checks that a names a known variant and carries exactly the
// variant's payload fields, each of a plausible kind.
func (s Schema) Validate(a Action) error {
	v, ok := s.Variant(a.Type)
	if !ok {
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	if len(a.Payload) != len(v.Fields) {
		return fmt.Errorf("%s: payload has %d fields, want %d", a.Type, len(a.Payload), len(v.Fields))
	}
	for _, f := range v.Fields {
		if _, ok := a.Payload[f.Name]; !ok {
			return fmt.Errorf("%s: missing field %q", a.Type, f.Name)
		}
		switch f.Kind {
		case KindRoom, KindIndex:
			if _, ok := a.Int(f.Name); !ok {
				return fmt.Errorf("%s: field %q is not an integer", a.Type, f.Name)
			}
		case KindItem:
			if _, ok := a.Item(); !ok {
				return fmt.Errorf("%s: field %q is not an item", a.Type, f.Name)
			}
		case KindPlayer, KindText:
			if _, ok := a.Str(f.Name); !ok {
				return fmt.Errorf("%s: field %q is not a string", a.Type, f.Name)
			}
		case KindBool:
			if _, ok := a.Bool(f.Name); !ok {
				return fmt.Errorf("%s: field %q is not a bool", a.Type, f.Name)
			}
		}
	}
	return nil
}

// DefaultSchema is the action catalogue of the current rules revision.
func DefaultSchema() Schema {
	return Schema{
		Version: "1",
		Variants: []Variant{
			{Type: ActMove, Fields: []Field{{FieldToRoom, KindRoom}}},
			{Type: ActBake},
			{Type: ActShoot},
			{Type: ActRaiseShields},
			{Type: ActEvasiveManeuvers},
			{Type: ActInteract},
			{Type: ActExtinguish},
			{Type: ActRepair},
			{Type: ActThrow, Fields: []Field{{FieldTargetPlayer, KindPlayer}, {FieldItemIndex, KindIndex}}},
			{Type: ActPickUp, Fields: []Field{{FieldItemType, KindItem}}},
			{Type: ActDrop, Fields: []Field{{FieldItemIndex, KindIndex}}},
			{Type: ActRevive, Fields: []Field{{FieldTargetPlayer, KindPlayer}}},
			{Type: ActLookout},
			{Type: ActFirstAid, Fields: []Field{{FieldTargetPlayer, KindPlayer}}},
			{Type: ActChat, Fields: []Field{{FieldMessage, KindText}}},
			{Type: ActVoteReady, Fields: []Field{{FieldReady, KindBool}}},
			{Type: ActPass},
		},
	}
}
