// Package scene captures macro state across fixtures and recalls it.
package scene

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"artnetctl/internal/animation"
	"artnetctl/internal/fixture"
)

// State maps fixture label to macro label to value.
type State map[string]map[string]fixture.Value

// Scene is a named snapshot. It holds values only, never live macros.
type Scene struct {
	Label string `json:"label" yaml:"label"`
	State State  `json:"state" yaml:"state"`

	LastActive bool `json:"-" yaml:"-"`
}

// Capture snapshots every usable fixture's active macros.
func Capture(label string, fixtures []*fixture.Instance) *Scene {
	s := &Scene{Label: label}
	s.Recapture(fixtures)
	return s
}

// Recapture overwrites the scene's state with the current macro values.
func (s *Scene) Recapture(fixtures []*fixture.Instance) {
	s.State = State{}
	for _, f := range fixtures {
		if !f.Usable() {
			continue
		}
		macros := make(map[string]fixture.Value, len(f.Macros()))
		for _, m := range f.Macros() {
			macros[m.Label()] = fixture.Snapshot(m)
		}
		s.State[f.Label] = macros
	}
}

// Options controls a recall. A zero Duration applies values instantly; an
// empty Fixtures list targets every fixture in the scene.
type Options struct {
	Duration time.Duration
	Fixtures []string
	Curve    animation.Curve
	Now      time.Time
}

func (o Options) includes(label string) bool {
	if len(o.Fixtures) == 0 {
		return true
	}
	for _, l := range o.Fixtures {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Recall writes the scene's stored values into the live macros of matching
// fixtures. It returns how many macros were applied and an error for each
// entry skipped; skipped entries never stop the rest of the recall.
func Recall(s *Scene, fixtures []*fixture.Instance, opt Options) (int, []error) {
	var (
		applied int
		skipped []error
	)
	for _, f := range fixtures {
		stored, ok := s.State[f.Label]
		if !ok || !opt.includes(f.Label) {
			continue
		}
		if !f.Usable() {
			skipped = append(skipped, fmt.Errorf("scene %q: fixture %q has no active mode", s.Label, f.Label))
			continue
		}
		for _, label := range sortedKeys(stored) {
			m, ok := f.Macro(label)
			if !ok {
				skipped = append(skipped, fmt.Errorf("scene %q: fixture %q has no macro %q", s.Label, f.Label, label))
				continue
			}
			if err := fixture.Apply(m, stored[label], opt.Now, opt.Duration, opt.Curve); err != nil {
				skipped = append(skipped, fmt.Errorf("scene %q fixture %q: %w", s.Label, f.Label, err))
				continue
			}
			applied++
		}
	}
	return applied, skipped
}

func sortedKeys(m map[string]fixture.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
