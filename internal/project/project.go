// Package project loads and saves the patched fixtures, scenes and device
// settings of a show.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"artnetctl/internal/config"
	"artnetctl/internal/fixture"
	"artnetctl/internal/logger"
	"artnetctl/internal/scene"
	"gopkg.in/yaml.v3"
)

// MidiConfig offsets incoming MIDI numbers. Note noteStart selects fixture
// group 0 and controller controllerStart selects macro 0.
type MidiConfig struct {
	ControllerStart uint8 `json:"controllerStart" yaml:"controllerStart"`
	NoteStart       uint8 `json:"noteStart" yaml:"noteStart"`
}

// DefaultMidi matches a 25-key controller with its first knob on CC 48.
func DefaultMidi() MidiConfig {
	return MidiConfig{ControllerStart: 48, NoteStart: 49}
}

// ArtNetConfig is the output transport stored with the project.
type ArtNetConfig struct {
	Mode        string `json:"mode" yaml:"mode"`
	Interface   string `json:"interface,omitempty" yaml:"interface,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// UnmarshalJSON also accepts the tagged forms "Broadcast" and
// {"Unicast": [interface, destination]}.
func (c *ArtNetConfig) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err == nil {
		if !strings.EqualFold(tag, "broadcast") {
			return fmt.Errorf("unknown artnet config %q", tag)
		}
		*c = ArtNetConfig{Mode: "broadcast"}
		return nil
	}
	var tagged struct {
		Unicast []string `json:"Unicast"`
	}
	if err := json.Unmarshal(b, &tagged); err == nil && tagged.Unicast != nil {
		if len(tagged.Unicast) != 2 {
			return fmt.Errorf("unicast artnet config needs interface and destination, got %v", tagged.Unicast)
		}
		*c = ArtNetConfig{Mode: "unicast", Interface: tagged.Unicast[0], Destination: tagged.Unicast[1]}
		return nil
	}
	type plain ArtNetConfig
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = ArtNetConfig(p)
	return nil
}

// Project is everything persisted about a show.
type Project struct {
	Fixtures   []*fixture.Instance `json:"fixtures" yaml:"fixtures"`
	Scenes     []*scene.Scene      `json:"scenes" yaml:"scenes"`
	MidiConfig MidiConfig          `json:"midiConfig" yaml:"midiConfig"`
	ArtNet     *ArtNetConfig       `json:"artnetConfig,omitempty" yaml:"artnetConfig,omitempty"`
}

// New returns an empty project with default MIDI offsets.
func New() *Project {
	return &Project{MidiConfig: DefaultMidi()}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads a JSON or YAML project, picked by extension, and prepares it for
// the engine. Fixtures that fail to resolve are logged and kept unusable.
func Load(path string, catalog *fixture.Catalog, log logger.Logger) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	p := New()
	if isYAML(path) {
		err = yaml.Unmarshal(b, p)
	} else {
		err = json.Unmarshal(b, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	log.With(logger.Fields{"module": "project"}).Infof("loaded project %s with %d fixtures and %d scenes", path, len(p.Fixtures), len(p.Scenes))
	p.Prepare(catalog, log)
	return p, nil
}

// Prepare resolves every fixture, numbers control macros for knob input in
// load order and then sorts fixtures, macros and scenes by label.
func (p *Project) Prepare(catalog *fixture.Catalog, log logger.Logger) {
	l := log.With(logger.Fields{"module": "project"})
	knob := 0
	for _, f := range p.Fixtures {
		if err := f.Resolve(catalog); err != nil {
			l.Errorf("fixture unusable: %v", err)
			continue
		}
		for _, m := range f.Macros() {
			if cm, ok := m.(*fixture.ControlMacro); ok {
				cm.KnobIndex = knob
				knob++
			}
		}
	}

	sort.SliceStable(p.Fixtures, func(i, j int) bool { return p.Fixtures[i].Label < p.Fixtures[j].Label })
	for _, f := range p.Fixtures {
		f.SortMacros()
	}
	sort.SliceStable(p.Scenes, func(i, j int) bool { return p.Scenes[i].Label < p.Scenes[j].Label })

	for _, o := range Overlaps(p.Fixtures) {
		l.Warnf("channel %d is claimed by %s; %s wins", o.Channel, strings.Join(o.Fixtures, ", "), o.Fixtures[len(o.Fixtures)-1])
	}
}

// Overlap is a buffer channel written by more than one fixture.
type Overlap struct {
	// Channel is one-indexed.
	Channel  int
	Fixtures []string
}

// Overlaps lists channels claimed by several usable fixtures, in fixture
// order. The last fixture listed writes last.
func Overlaps(fixtures []*fixture.Instance) []Overlap {
	claims := map[int][]string{}
	for _, f := range fixtures {
		for _, i := range f.Claimed() {
			claims[i] = append(claims[i], f.Label)
		}
	}
	var out []Overlap
	for i, labels := range claims {
		if len(labels) > 1 {
			out = append(out, Overlap{Channel: i + 1, Fixtures: labels})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Save writes the project as indented JSON, or YAML when path says so.
func (p *Project) Save(path string) error {
	var (
		b   []byte
		err error
	)
	if isYAML(path) {
		b, err = yaml.Marshal(p)
	} else {
		b, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return nil
}

// ErrNoArtNet is returned when neither configuration nor project names an
// output transport.
var ErrNoArtNet = errors.New("no artnet settings in configuration or project")

// Transport picks the output settings: a mode set in configuration overrides
// whatever the project stored.
func (p *Project) Transport(cfg config.ArtNetConf) (ArtNetConfig, error) {
	if cfg.Mode != "" {
		return ArtNetConfig{Mode: strings.ToLower(cfg.Mode), Interface: cfg.Interface, Destination: cfg.Destination}, nil
	}
	if p.ArtNet != nil && p.ArtNet.Mode != "" {
		c := *p.ArtNet
		c.Mode = strings.ToLower(c.Mode)
		return c, nil
	}
	return ArtNetConfig{}, ErrNoArtNet
}
