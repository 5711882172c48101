package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"artnetctl/internal/animation"
	"artnetctl/internal/colour"
	"gopkg.in/yaml.v3"
)

// ErrTypeMismatch is returned when a control value meets a colour macro or
// the other way round.
var ErrTypeMismatch = errors.New("value type does not match macro")

// Kind tags a Value.
type Kind int

const (
	KindControl Kind = iota
	KindColour
)

func (k Kind) String() string {
	if k == KindColour {
		return "colour"
	}
	return "control"
}

// Value is the persisted form of a macro's state. It never carries an
// animation.
type Value struct {
	Kind    Kind
	Control uint16
	Colour  colour.RGBA
	// level marks Control as an 8-bit level to widen for 16-bit macros.
	level bool
}

// ControlValue is a control value in the macro's own range.
func ControlValue(v uint16) Value {
	return Value{Kind: KindControl, Control: v}
}

// LevelValue is an 8-bit control level, widened for 16-bit macros.
func LevelValue(v uint8) Value {
	return Value{Kind: KindControl, Control: uint16(v), level: true}
}

// ColourValue is a colour macro value.
func ColourValue(c colour.RGBA) Value {
	return Value{Kind: KindColour, Colour: c}
}

func (v Value) String() string {
	if v.Kind == KindColour {
		return v.Colour.Hex()
	}
	return fmt.Sprint(v.Control)
}

// Snapshot captures the current value of m.
func Snapshot(m Macro) Value {
	switch mm := m.(type) {
	case *ControlMacro:
		return ControlValue(mm.Value)
	case *ColourMacro:
		return ColourValue(mm.Value)
	}
	panic(fmt.Sprintf("fixture: unknown macro type %T", m))
}

// Apply writes v into m, instantly when d <= 0 and through a new animation
// from the present value otherwise. A mismatched Kind leaves m untouched.
func Apply(m Macro, v Value, now time.Time, d time.Duration, curve animation.Curve) error {
	switch mm := m.(type) {
	case *ControlMacro:
		if v.Kind != KindControl {
			return fmt.Errorf("macro %q: %w: got %s", m.Label(), ErrTypeMismatch, v.Kind)
		}
		target := v.Control
		if v.level {
			target = mm.FromLevel(uint8(v.Control))
		}
		if d > 0 {
			mm.AnimateTo(now, d, target, curve)
		} else {
			mm.Set(target)
		}
	case *ColourMacro:
		if v.Kind != KindColour {
			return fmt.Errorf("macro %q: %w: got %s", m.Label(), ErrTypeMismatch, v.Kind)
		}
		if d > 0 {
			mm.AnimateTo(now, d, v.Colour, curve)
		} else {
			mm.Set(v.Colour)
		}
	default:
		return fmt.Errorf("macro %q: unknown type %T", m.Label(), m)
	}
	return nil
}

type valueJSON struct {
	ControlValue *uint16      `json:"ControlValue,omitempty" yaml:"ControlValue,omitempty"`
	ColourValue  *colour.RGBA `json:"ColourValue,omitempty" yaml:"ColourValue,omitempty"`
}

func (v Value) wire() valueJSON {
	if v.Kind == KindColour {
		c := v.Colour
		return valueJSON{ColourValue: &c}
	}
	n := v.Control
	return valueJSON{ControlValue: &n}
}

func (v *Value) fromWire(w valueJSON) error {
	switch {
	case w.ControlValue != nil && w.ColourValue != nil:
		return errors.New("value has both ControlValue and ColourValue")
	case w.ControlValue != nil:
		*v = ControlValue(*w.ControlValue)
	case w.ColourValue != nil:
		*v = ColourValue(*w.ColourValue)
	default:
		return errors.New("value needs ControlValue or ColourValue")
	}
	return nil
}

// MarshalJSON writes {"ControlValue": n} or {"ColourValue": [r, g, b, a]}.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.wire())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var w valueJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	return v.fromWire(w)
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.wire(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var w valueJSON
	if err := node.Decode(&w); err != nil {
		return err
	}
	return v.fromWire(w)
}
