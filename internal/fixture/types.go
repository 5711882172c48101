package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownFixture    = errors.New("fixture config not found")
	ErrModeOutOfRange    = errors.New("mode index out of range")
	ErrChannelOutOfRange = errors.New("channel outside universe")
	ErrNoChannels        = errors.New("macro has no channels")
	ErrBadGroup          = errors.New("invalid colour channel group")
)

// Config is a fixture type from the catalog. It is shared read-only between
// instances of the same type.
type Config struct {
	Name      string        `json:"name"`
	Reference string        `json:"reference,omitempty"`
	Modes     []ControlMode `json:"modes"`
}

// ControlMode is one way of patching a fixture type.
type ControlMode struct {
	Name     string     `json:"name"`
	Mappings []Mapping  `json:"mappings"`
	Macros   []MacroDef `json:"macros"`
}

// Mapping documents one physical channel of a mode.
type Mapping struct {
	Channel uint16             `json:"channel"`
	Label   string             `json:"label"`
	Notes   string             `json:"notes,omitempty"`
	Home    *uint8             `json:"home,omitempty"`
	Ranges  []RangeDescription `json:"ranges,omitempty"`
}

// RangeDescription labels a sub-range of a channel's values.
type RangeDescription struct {
	Range [2]uint8 `json:"range"`
	Label string   `json:"label"`
}

// ChannelRef is a channel number within the fixture. A non-zero Fine makes
// it a 16-bit coarse/fine pair written big-endian.
type ChannelRef struct {
	Coarse uint16
	Fine   uint16
}

// HiRes reports whether the reference is a coarse/fine pair.
func (c ChannelRef) HiRes() bool { return c.Fine != 0 }

func (c ChannelRef) MarshalJSON() ([]byte, error) {
	if c.HiRes() {
		return json.Marshal([2]uint16{c.Coarse, c.Fine})
	}
	return json.Marshal(c.Coarse)
}

// UnmarshalJSON accepts 7 or [7, 8].
func (c *ChannelRef) UnmarshalJSON(b []byte) error {
	var single uint16
	if err := json.Unmarshal(b, &single); err == nil {
		*c = ChannelRef{Coarse: single}
		return nil
	}
	var pair [2]uint16
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("channel must be a number or a [coarse, fine] pair: %s", b)
	}
	if pair[1] == 0 {
		return fmt.Errorf("fine channel of %s must be non-zero", b)
	}
	*c = ChannelRef{Coarse: pair[0], Fine: pair[1]}
	return nil
}

// MacroDef is the catalog form of a macro: exactly one of Control and Colour
// is set.
type MacroDef struct {
	Control *ControlDef `json:"control,omitempty"`
	Colour  *ColourDef  `json:"colour,omitempty"`
}

// ControlDef drives one intensity-like value onto its channels.
type ControlDef struct {
	Label    string       `json:"label"`
	Channels []ChannelRef `json:"channels"`
}

// ColourDef drives an RGBA colour onto a channel group.
type ColourDef struct {
	Label    string       `json:"label"`
	Channels ChannelGroup `json:"channels"`
}

// GroupKind is the physical colour system of a ChannelGroup.
type GroupKind int

const (
	AdditiveRGBW GroupKind = iota
	AdditiveRGBL
	AdditiveRGB16
	SubtractiveCMY
)

var groupKeys = map[GroupKind]string{
	AdditiveRGBW:   "additive",
	AdditiveRGBL:   "additiveLime",
	AdditiveRGB16:  "additive16",
	SubtractiveCMY: "subtractive",
}

func (k GroupKind) String() string { return groupKeys[k] }

// ChannelGroup names the channels carrying each colour component. Mix holds
// the white (RGBW) or lime (RGBL) channels; Dimmer holds the white channels
// of a CMY fixture.
type ChannelGroup struct {
	Kind    GroupKind
	Red     []ChannelRef
	Green   []ChannelRef
	Blue    []ChannelRef
	Mix     []ChannelRef
	Cyan    []ChannelRef
	Magenta []ChannelRef
	Yellow  []ChannelRef
	Dimmer  []ChannelRef
}

type additiveJSON struct {
	Red   []ChannelRef `json:"red"`
	Green []ChannelRef `json:"green"`
	Blue  []ChannelRef `json:"blue"`
	White []ChannelRef `json:"white,omitempty"`
	Lime  []ChannelRef `json:"lime,omitempty"`
}

type subtractiveJSON struct {
	Cyan    []ChannelRef `json:"cyan"`
	Magenta []ChannelRef `json:"magenta"`
	Yellow  []ChannelRef `json:"yellow"`
	White   []ChannelRef `json:"white,omitempty"`
}

func (g ChannelGroup) MarshalJSON() ([]byte, error) {
	var body interface{}
	switch g.Kind {
	case AdditiveRGBW, AdditiveRGB16:
		body = additiveJSON{Red: g.Red, Green: g.Green, Blue: g.Blue, White: g.Mix}
	case AdditiveRGBL:
		body = additiveJSON{Red: g.Red, Green: g.Green, Blue: g.Blue, Lime: g.Mix}
	case SubtractiveCMY:
		body = subtractiveJSON{Cyan: g.Cyan, Magenta: g.Magenta, Yellow: g.Yellow, White: g.Dimmer}
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrBadGroup, g.Kind)
	}
	return json.Marshal(map[string]interface{}{groupKeys[g.Kind]: body})
}

// UnmarshalJSON decodes {"additive": {...}}, {"additiveLime": {...}},
// {"additive16": {...}} or {"subtractive": {...}}.
func (g *ChannelGroup) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("%w: want exactly one group key, got %d", ErrBadGroup, len(raw))
	}
	for key, body := range raw {
		switch key {
		case "additive", "additiveLime", "additive16":
			var a additiveJSON
			if err := json.Unmarshal(body, &a); err != nil {
				return fmt.Errorf("%s group: %w", key, err)
			}
			*g = ChannelGroup{Red: a.Red, Green: a.Green, Blue: a.Blue}
			switch key {
			case "additive":
				g.Kind, g.Mix = AdditiveRGBW, a.White
			case "additiveLime":
				g.Kind, g.Mix = AdditiveRGBL, a.Lime
			default:
				g.Kind = AdditiveRGB16
			}
		case "subtractive":
			var s subtractiveJSON
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("%s group: %w", key, err)
			}
			*g = ChannelGroup{Kind: SubtractiveCMY, Cyan: s.Cyan, Magenta: s.Magenta, Yellow: s.Yellow, Dimmer: s.White}
		default:
			return fmt.Errorf("%w: unknown key %q", ErrBadGroup, key)
		}
	}
	return nil
}

// refs lists every channel reference of the group.
func (g ChannelGroup) refs() []ChannelRef {
	var out []ChannelRef
	for _, list := range [][]ChannelRef{g.Red, g.Green, g.Blue, g.Mix, g.Cyan, g.Magenta, g.Yellow, g.Dimmer} {
		out = append(out, list...)
	}
	return out
}

func (g ChannelGroup) validate() error {
	switch g.Kind {
	case AdditiveRGBW, AdditiveRGBL:
		if len(g.Red)+len(g.Green)+len(g.Blue)+len(g.Mix) == 0 {
			return fmt.Errorf("%w: %s group has no channels", ErrBadGroup, g.Kind)
		}
	case AdditiveRGB16:
		if len(g.Red)+len(g.Green)+len(g.Blue) == 0 {
			return fmt.Errorf("%w: %s group has no channels", ErrBadGroup, g.Kind)
		}
		if len(g.Mix) != 0 {
			return fmt.Errorf("%w: %s group has no mix channel", ErrBadGroup, g.Kind)
		}
		for _, r := range g.refs() {
			if !r.HiRes() {
				return fmt.Errorf("%w: %s channel %d must be a coarse/fine pair", ErrBadGroup, g.Kind, r.Coarse)
			}
		}
	case SubtractiveCMY:
		if len(g.Cyan)+len(g.Magenta)+len(g.Yellow) == 0 {
			return fmt.Errorf("%w: %s group has no channels", ErrBadGroup, g.Kind)
		}
	default:
		return fmt.Errorf("%w: kind %d", ErrBadGroup, g.Kind)
	}
	return nil
}
