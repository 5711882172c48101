package fixture

import (
	"math"
	"time"

	"artnetctl/internal/animation"
	"artnetctl/internal/colour"
)

// Macro is the live state of one macro in an active mode. It is either a
// *ControlMacro or a *ColourMacro; consumers switch over both.
type Macro interface {
	Label() string
	// Animating reports whether an animation is in flight.
	Animating() bool
	refs() []ChannelRef
	animate(now time.Time)
	write(channels []byte, index func(uint16) int)
}

// ControlMacro drives one value onto one or more channels. The value is 8-bit
// unless any channel is a coarse/fine pair, in which case it is 16-bit.
type ControlMacro struct {
	label     string
	Channels  []ChannelRef
	Value     uint16
	Animation *animation.Animation
	// KnobIndex is assigned once at project load, in load order across all
	// fixtures; -1 when unassigned.
	KnobIndex int
}

// NewControlMacro builds live state for a control macro definition.
func NewControlMacro(def ControlDef) *ControlMacro {
	return &ControlMacro{
		label:     def.Label,
		Channels:  append([]ChannelRef(nil), def.Channels...),
		KnobIndex: -1,
	}
}

func (m *ControlMacro) Label() string      { return m.label }
func (m *ControlMacro) Animating() bool    { return m.Animation != nil }
func (m *ControlMacro) refs() []ChannelRef { return m.Channels }

// Wide reports whether the macro's logical value is 16-bit.
func (m *ControlMacro) Wide() bool {
	for _, c := range m.Channels {
		if c.HiRes() {
			return true
		}
	}
	return false
}

// Max is the largest logical value.
func (m *ControlMacro) Max() uint16 {
	if m.Wide() {
		return math.MaxUint16
	}
	return math.MaxUint8
}

// Set cancels any animation and sets the logical value, clamped to Max.
func (m *ControlMacro) Set(v uint16) {
	m.Animation = nil
	m.Value = m.clamp(v)
}

// SetLevel sets the value from an 8-bit level, widened for 16-bit macros.
func (m *ControlMacro) SetLevel(level uint8) {
	m.Set(m.FromLevel(level))
}

// FromLevel widens an 8-bit level to the macro's logical range.
func (m *ControlMacro) FromLevel(level uint8) uint16 {
	if m.Wide() {
		return uint16(level) * 257
	}
	return uint16(level)
}

// AnimateTo replaces any animation with one from the present value to target.
func (m *ControlMacro) AnimateTo(now time.Time, d time.Duration, target uint16, curve animation.Curve) {
	m.Animation = animation.NewAt(now, d, float64(m.Value), float64(m.clamp(target)), curve)
}

func (m *ControlMacro) clamp(v uint16) uint16 {
	if limit := m.Max(); v > limit {
		return limit
	}
	return v
}

func (m *ControlMacro) animate(now time.Time) {
	if m.Animation == nil {
		return
	}
	v, done := m.Animation.SampleAt(now)
	m.Value = m.clamp(uint16(math.Round(v)))
	if done {
		m.Animation = nil
	}
}

func (m *ControlMacro) write(channels []byte, index func(uint16) int) {
	wide := m.Wide()
	for _, c := range m.Channels {
		if c.HiRes() {
			put(channels, index(c.Coarse), byte(m.Value>>8))
			put(channels, index(c.Fine), byte(m.Value))
			continue
		}
		v := m.Value
		if wide {
			v = uint16(uint32(v) * 255 / math.MaxUint16)
		}
		put(channels, index(c.Coarse), byte(v))
	}
}

// ColourAnimation tweens between two colours using eased progress.
type ColourAnimation struct {
	*animation.Animation
	From colour.RGBA
	To   colour.RGBA
}

// ColourMacro drives an RGBA colour onto a channel group.
type ColourMacro struct {
	label     string
	Group     ChannelGroup
	Value     colour.RGBA
	Animation *ColourAnimation
}

// NewColourMacro builds live state for a colour macro definition.
func NewColourMacro(def ColourDef) *ColourMacro {
	return &ColourMacro{
		label: def.Label,
		Group: def.Channels,
		Value: colour.Default,
	}
}

func (m *ColourMacro) Label() string      { return m.label }
func (m *ColourMacro) Animating() bool    { return m.Animation != nil }
func (m *ColourMacro) refs() []ChannelRef { return m.Group.refs() }

// Set cancels any animation and sets the colour.
func (m *ColourMacro) Set(c colour.RGBA) {
	m.Animation = nil
	m.Value = c
}

// AnimateTo replaces any animation with one from the present colour to target.
func (m *ColourMacro) AnimateTo(now time.Time, d time.Duration, target colour.RGBA, curve animation.Curve) {
	m.Animation = &ColourAnimation{
		Animation: animation.NewAt(now, d, 0, 1, curve),
		From:      m.Value,
		To:        target,
	}
}

func (m *ColourMacro) animate(now time.Time) {
	if m.Animation == nil {
		return
	}
	p, done := m.Animation.EasedProgressAt(now)
	if done {
		m.Value = m.Animation.To
		m.Animation = nil
		return
	}
	m.Value = colour.Lerp(m.Animation.From, m.Animation.To, p)
}

func (m *ColourMacro) write(channels []byte, index func(uint16) int) {
	g := m.Group
	r, gr, b := m.Value.Opaque()
	switch g.Kind {
	case AdditiveRGBW, AdditiveRGBL, AdditiveRGB16:
		putAll(channels, index, g.Red, r)
		putAll(channels, index, g.Green, gr)
		putAll(channels, index, g.Blue, b)
		putAll(channels, index, g.Mix, m.Value.Mix())
	case SubtractiveCMY:
		c, mg, y := m.Value.CMY()
		putAll(channels, index, g.Cyan, c)
		putAll(channels, index, g.Magenta, mg)
		putAll(channels, index, g.Yellow, y)
		putAll(channels, index, g.Dimmer, m.Value.A)
	}
}

// putAll writes v to every reference; pairs receive v widened to 16 bits.
func putAll(channels []byte, index func(uint16) int, refs []ChannelRef, v uint8) {
	for _, c := range refs {
		if c.HiRes() {
			wide := uint16(v) * 257
			put(channels, index(c.Coarse), byte(wide>>8))
			put(channels, index(c.Fine), byte(wide))
			continue
		}
		put(channels, index(c.Coarse), v)
	}
}

// put ignores indices outside the buffer.
func put(channels []byte, i int, v byte) {
	if i < 0 || i >= len(channels) {
		return
	}
	channels[i] = v
}
