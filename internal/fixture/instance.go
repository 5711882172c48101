package fixture

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Universe is the number of channels addressable by a fixture.
const Universe = 512

// Mode is the live copy of the selected ControlMode of one instance. Macro
// values live here.
type Mode struct {
	Name     string
	Mappings []Mapping
	Macros   []Macro
}

// Instance is one patched fixture of a project.
type Instance struct {
	Label        string `json:"label" yaml:"label"`
	ConfigName   string `json:"configName" yaml:"configName"`
	StartChannel uint16 `json:"startChannel" yaml:"startChannel"`
	ModeIndex    int    `json:"modeIndex" yaml:"modeIndex"`

	// Config is resolved from the catalog at load; nil when unmatched.
	Config *Config `json:"-" yaml:"-"`
	// Active is nil when the instance cannot drive channels.
	Active *Mode `json:"-" yaml:"-"`
}

// Index converts a one-indexed fixture channel into a buffer index. Both the
// channel and StartChannel count from one.
func (f *Instance) Index(channel uint16) int {
	return int(channel) - 1 + int(f.StartChannel) - 1
}

// Usable reports whether the instance has a validated active mode.
func (f *Instance) Usable() bool {
	return f.Active != nil
}

// Resolve looks the instance's config up in the catalog, copies the selected
// mode into live state and validates every channel against the universe. On
// error the instance is left unusable.
func (f *Instance) Resolve(c *Catalog) error {
	f.Config, f.Active = nil, nil

	cfg, ok := c.Find(f.ConfigName)
	if !ok {
		return fmt.Errorf("fixture %q: %w: %q", f.Label, ErrUnknownFixture, f.ConfigName)
	}
	f.Config = cfg
	if f.ModeIndex < 0 || f.ModeIndex >= len(cfg.Modes) {
		return fmt.Errorf("fixture %q: %w: %d of %d", f.Label, ErrModeOutOfRange, f.ModeIndex, len(cfg.Modes))
	}
	mode, err := newMode(cfg.Modes[f.ModeIndex])
	if err != nil {
		return fmt.Errorf("fixture %q: %w", f.Label, err)
	}
	if err := f.validate(mode); err != nil {
		return err
	}
	f.Active = mode
	return nil
}

func newMode(cm ControlMode) (*Mode, error) {
	mode := &Mode{
		Name:     cm.Name,
		Mappings: append([]Mapping(nil), cm.Mappings...),
		Macros:   make([]Macro, 0, len(cm.Macros)),
	}
	for i, def := range cm.Macros {
		switch {
		case def.Control != nil && def.Colour != nil:
			return nil, fmt.Errorf("macro %d is both control and colour", i)
		case def.Control != nil:
			if len(def.Control.Channels) == 0 {
				return nil, fmt.Errorf("macro %q: %w", def.Control.Label, ErrNoChannels)
			}
			mode.Macros = append(mode.Macros, NewControlMacro(*def.Control))
		case def.Colour != nil:
			if err := def.Colour.Channels.validate(); err != nil {
				return nil, fmt.Errorf("macro %q: %w", def.Colour.Label, err)
			}
			mode.Macros = append(mode.Macros, NewColourMacro(*def.Colour))
		default:
			return nil, fmt.Errorf("macro %d is neither control nor colour", i)
		}
	}
	return mode, nil
}

func (f *Instance) validate(mode *Mode) error {
	check := func(what string, ch uint16) error {
		if i := f.Index(ch); ch == 0 || i < 0 || i >= Universe {
			return fmt.Errorf("fixture %q %s channel %d at start %d: %w", f.Label, what, ch, f.StartChannel, ErrChannelOutOfRange)
		}
		return nil
	}
	for _, m := range mode.Mappings {
		if err := check("mapping "+m.Label, m.Channel); err != nil {
			return err
		}
	}
	for _, m := range mode.Macros {
		for _, r := range m.refs() {
			if err := check("macro "+m.Label(), r.Coarse); err != nil {
				return err
			}
			if r.HiRes() {
				if err := check("macro "+m.Label(), r.Fine); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// SortMacros orders the active macros by label so controller numbers map to
// a stable index.
func (f *Instance) SortMacros() {
	if f.Active == nil {
		return
	}
	sort.SliceStable(f.Active.Macros, func(i, j int) bool {
		return f.Active.Macros[i].Label() < f.Active.Macros[j].Label()
	})
}

// Macros returns the active macros, or nil for an unusable instance.
func (f *Instance) Macros() []Macro {
	if f.Active == nil {
		return nil
	}
	return f.Active.Macros
}

// Macro finds an active macro by exact label.
func (f *Instance) Macro(label string) (Macro, bool) {
	for _, m := range f.Macros() {
		if m.Label() == label {
			return m, true
		}
	}
	return nil, false
}

// Matches reports whether label names this instance, ignoring case.
func (f *Instance) Matches(label string) bool {
	return strings.EqualFold(f.Label, label)
}

// Animate advances every in-flight animation to now, dropping finished ones.
func (f *Instance) Animate(now time.Time) {
	for _, m := range f.Macros() {
		m.animate(now)
	}
}

// WriteMacros writes every active macro's current value into channels.
func (f *Instance) WriteMacros(channels []byte) {
	for _, m := range f.Macros() {
		m.write(channels, f.Index)
	}
}

// WriteHome writes the home value of every mapping that has one.
func (f *Instance) WriteHome(channels []byte) {
	if f.Active == nil {
		return
	}
	for _, m := range f.Active.Mappings {
		if m.Home != nil {
			put(channels, f.Index(m.Channel), *m.Home)
		}
	}
}

// Claimed lists the buffer indices this instance's mappings and macros write.
func (f *Instance) Claimed() []int {
	if f.Active == nil {
		return nil
	}
	seen := map[int]bool{}
	var out []int
	add := func(ch uint16) {
		i := f.Index(ch)
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	for _, m := range f.Active.Mappings {
		add(m.Channel)
	}
	for _, m := range f.Active.Macros {
		for _, r := range m.refs() {
			add(r.Coarse)
			if r.HiRes() {
				add(r.Fine)
			}
		}
	}
	sort.Ints(out)
	return out
}
