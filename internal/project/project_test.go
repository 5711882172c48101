package project

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"artnetctl/internal/config"
	"artnetctl/internal/fixture"
	"artnetctl/internal/logger"
)

const sample = `{
  "fixtures": [
    {"label": "Spot", "configName": "CMY Spot", "startChannel": 20, "modeIndex": 0},
    {"label": "Bad", "configName": "No Such Fixture", "startChannel": 1},
    {"label": "Par", "configName": "generic rgbw par", "startChannel": 1, "modeIndex": 0},
    {"label": "Dim", "configName": "Dimmer", "startChannel": 8}
  ],
  "scenes": [
    {"label": "Zed", "state": {}},
    {"label": "Alpha", "state": {"Par": {"Dimmer": {"ControlValue": 10}, "Colour": {"ColourValue": [1, 2, 3, 4]}}}}
  ],
  "artnetConfig": {"Unicast": ["10.0.0.2", "10.0.0.50"]}
}`

func writeProject(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func load(t *testing.T, path string) *Project {
	t.Helper()
	c, err := fixture.LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	p, err := Load(path, c, logger.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := load(t, writeProject(t, "show.json", sample))

	var labels []string
	for _, f := range p.Fixtures {
		labels = append(labels, f.Label)
	}
	want := []string{"Bad", "Dim", "Par", "Spot"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("fixture order got %v, want %v", labels, want)
		}
	}
	if p.Fixtures[0].Usable() {
		t.Error("unknown fixture should be unusable")
	}
	if p.Scenes[0].Label != "Alpha" {
		t.Errorf("scenes not sorted: %s first", p.Scenes[0].Label)
	}
	if p.MidiConfig != DefaultMidi() {
		t.Errorf("midi config got %+v", p.MidiConfig)
	}
	if p.ArtNet == nil || p.ArtNet.Mode != "unicast" || p.ArtNet.Destination != "10.0.0.50" {
		t.Errorf("artnet config got %+v", p.ArtNet)
	}
}

func TestKnobIndexFollowsLoadOrder(t *testing.T) {
	p := load(t, writeProject(t, "show.json", sample))

	// Spot loads first, so its control macros own the lowest knob numbers
	// even though it sorts last.
	spot := p.Fixtures[3]
	seen := map[int]bool{}
	for _, m := range spot.Macros() {
		if cm, ok := m.(*fixture.ControlMacro); ok {
			if cm.KnobIndex < 0 || cm.KnobIndex > 3 {
				t.Errorf("spot %s knob %d, want 0..3", cm.Label(), cm.KnobIndex)
			}
			seen[cm.KnobIndex] = true
		}
	}
	if len(seen) != 4 {
		t.Errorf("spot knob indices %v, want four distinct", seen)
	}
	dim := p.Fixtures[1].Macros()[0].(*fixture.ControlMacro)
	if dim.KnobIndex != 6 {
		t.Errorf("dimmer knob got %d, want 6", dim.KnobIndex)
	}
}

func TestOverlaps(t *testing.T) {
	p := load(t, writeProject(t, "show.json", sample))
	overlaps := Overlaps(p.Fixtures)
	if len(overlaps) != 1 {
		t.Fatalf("got %v, want one overlap", overlaps)
	}
	o := overlaps[0]
	if o.Channel != 8 || len(o.Fixtures) != 2 || o.Fixtures[1] != "Par" {
		t.Errorf("overlap got %+v", o)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := load(t, writeProject(t, "show.json", sample))
	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := p.Save(path); err != nil {
			t.Fatal(err)
		}
		back := load(t, path)
		if len(back.Fixtures) != 4 || len(back.Scenes) != 2 {
			t.Fatalf("%s: got %d fixtures %d scenes", name, len(back.Fixtures), len(back.Scenes))
		}
		v := back.Scenes[0].State["Par"]["Colour"]
		if v.Kind != fixture.KindColour || v.Colour.B != 3 {
			t.Errorf("%s: colour got %+v", name, v)
		}
		if back.ArtNet == nil || back.ArtNet.Interface != "10.0.0.2" {
			t.Errorf("%s: artnet got %+v", name, back.ArtNet)
		}
	}
}

func TestTransportPrecedence(t *testing.T) {
	p := New()
	if _, err := p.Transport(config.ArtNetConf{}); !errors.Is(err, ErrNoArtNet) {
		t.Errorf("got %v, want ErrNoArtNet", err)
	}
	p.ArtNet = &ArtNetConfig{Mode: "Broadcast"}
	got, err := p.Transport(config.ArtNetConf{})
	if err != nil || got.Mode != "broadcast" {
		t.Errorf("project transport got %+v %v", got, err)
	}
	got, _ = p.Transport(config.ArtNetConf{Mode: "unicast", Interface: "1.2.3.4", Destination: "5.6.7.8"})
	if got.Mode != "unicast" || got.Destination != "5.6.7.8" {
		t.Errorf("configured transport got %+v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	c, _ := fixture.LoadLibrary()
	if _, err := Load(filepath.Join(t.TempDir(), "none.json"), c, logger.NewTestLogger(io.Discard)); err == nil {
		t.Error("missing project loaded")
	}
}
