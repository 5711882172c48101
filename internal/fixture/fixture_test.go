package fixture

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"artnetctl/internal/animation"
	"artnetctl/internal/colour"
)

func loadLibrary(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func resolve(t *testing.T, c *Catalog, label, config string, start uint16) *Instance {
	t.Helper()
	f := &Instance{Label: label, ConfigName: config, StartChannel: start}
	if err := f.Resolve(c); err != nil {
		t.Fatal(err)
	}
	return f
}

func controlMacro(t *testing.T, f *Instance, label string) *ControlMacro {
	t.Helper()
	m, ok := f.Macro(label)
	if !ok {
		t.Fatalf("macro %q not found", label)
	}
	cm, ok := m.(*ControlMacro)
	if !ok {
		t.Fatalf("macro %q is %T, want control", label, m)
	}
	return cm
}

func colourMacro(t *testing.T, f *Instance, label string) *ColourMacro {
	t.Helper()
	m, ok := f.Macro(label)
	if !ok {
		t.Fatalf("macro %q not found", label)
	}
	cm, ok := m.(*ColourMacro)
	if !ok {
		t.Fatalf("macro %q is %T, want colour", label, m)
	}
	return cm
}

func TestLibraryLoads(t *testing.T) {
	c := loadLibrary(t)
	if len(c.Names()) != 5 {
		t.Errorf("got %d fixtures, want 5: %v", len(c.Names()), c.Names())
	}
	if _, ok := c.Find("generic rgbw PAR"); !ok {
		t.Error("case-insensitive lookup failed")
	}
	if _, ok := c.Find("Nope"); ok {
		t.Error("unexpected match")
	}
}

func TestIndexDoubleOffset(t *testing.T) {
	f := &Instance{StartChannel: 1}
	if got := f.Index(1); got != 0 {
		t.Errorf("channel 1 at start 1 got %d, want 0", got)
	}
	f.StartChannel = 10
	if got := f.Index(3); got != 11 {
		t.Errorf("channel 3 at start 10 got %d, want 11", got)
	}
}

func TestResolveErrors(t *testing.T) {
	c := loadLibrary(t)

	f := &Instance{Label: "x", ConfigName: "Missing", StartChannel: 1}
	if err := f.Resolve(c); !errors.Is(err, ErrUnknownFixture) {
		t.Errorf("got %v, want ErrUnknownFixture", err)
	}
	if f.Usable() {
		t.Error("unknown fixture should be unusable")
	}

	f = &Instance{Label: "x", ConfigName: "Dimmer", StartChannel: 1, ModeIndex: 3}
	if err := f.Resolve(c); !errors.Is(err, ErrModeOutOfRange) {
		t.Errorf("got %v, want ErrModeOutOfRange", err)
	}

	// 8 channels starting at 506 reach index 512.
	f = &Instance{Label: "x", ConfigName: "Generic RGBW Par", StartChannel: 506}
	if err := f.Resolve(c); !errors.Is(err, ErrChannelOutOfRange) {
		t.Errorf("got %v, want ErrChannelOutOfRange", err)
	}
	if f.Usable() {
		t.Error("out of range fixture should be unusable")
	}

	f = &Instance{Label: "x", ConfigName: "Generic RGBW Par", StartChannel: 505}
	if err := f.Resolve(c); err != nil {
		t.Errorf("fixture ending at channel 512: %v", err)
	}

	f = &Instance{Label: "x", ConfigName: "Dimmer", StartChannel: 0}
	if err := f.Resolve(c); !errors.Is(err, ErrChannelOutOfRange) {
		t.Errorf("start channel 0 got %v, want ErrChannelOutOfRange", err)
	}
}

func TestBadGroupRejected(t *testing.T) {
	var def Config
	err := json.Unmarshal([]byte(`{
		"name": "Broken16",
		"modes": [{"name": "m", "mappings": [], "macros": [
			{"colour": {"label": "C", "channels": {"additive16": {"red": [1], "green": [[2, 3]], "blue": [[4, 5]]}}}}
		]}]
	}`), &def)
	if err != nil {
		t.Fatal(err)
	}
	f := &Instance{Label: "b", ConfigName: "Broken16", StartChannel: 1}
	if err := f.Resolve(NewCatalog(&def)); !errors.Is(err, ErrBadGroup) {
		t.Errorf("got %v, want ErrBadGroup", err)
	}

	var g ChannelGroup
	if err := json.Unmarshal([]byte(`{"hsv": {}}`), &g); !errors.Is(err, ErrBadGroup) {
		t.Errorf("got %v, want ErrBadGroup", err)
	}
}

func TestWriteControlMacros(t *testing.T) {
	c := loadLibrary(t)
	spot := resolve(t, c, "spot", "CMY Spot", 1)

	controlMacro(t, spot, "Pan").Set(0x1234)
	controlMacro(t, spot, "Dimmer").SetLevel(200)
	buf := make([]byte, Universe)
	spot.WriteMacros(buf)

	if buf[0] != 0x12 || buf[1] != 0x34 {
		t.Errorf("pan coarse/fine got %#x %#x, want 0x12 0x34", buf[0], buf[1])
	}
	if buf[4] != 200 {
		t.Errorf("dimmer got %d, want 200", buf[4])
	}

	tilt := controlMacro(t, spot, "Tilt")
	tilt.SetLevel(255)
	if tilt.Value != 0xffff {
		t.Errorf("16-bit level 255 got %#x, want 0xffff", tilt.Value)
	}
}

func TestWideMacroOnLoResChannelScales(t *testing.T) {
	m := NewControlMacro(ControlDef{Label: "Mixed", Channels: []ChannelRef{{Coarse: 1, Fine: 2}, {Coarse: 3}}})
	f := &Instance{StartChannel: 1, Active: &Mode{Macros: []Macro{m}}}
	m.Set(0x8000)
	buf := make([]byte, Universe)
	f.WriteMacros(buf)
	want := byte(uint32(0x8000) * 255 / 65535)
	if buf[2] != want {
		t.Errorf("scaled got %d, want %d", buf[2], want)
	}
	if buf[0] != 0x80 || buf[1] != 0 {
		t.Errorf("pair got %#x %#x", buf[0], buf[1])
	}
}

func TestWriteColourGroups(t *testing.T) {
	c := loadLibrary(t)
	par := resolve(t, c, "par", "Generic RGBW Par", 11)
	wash := resolve(t, c, "wash", "RGBL Wash", 31)
	spot := resolve(t, c, "spot", "CMY Spot", 41)
	bar := resolve(t, c, "bar", "LED Bar 16bit", 61)

	col := colour.RGBA{R: 255, G: 128, B: 1, A: 64}
	for _, f := range []*Instance{par, wash, spot, bar} {
		colourMacro(t, f, "Colour").Set(col)
	}

	buf := make([]byte, Universe)
	for _, f := range []*Instance{par, wash, spot, bar} {
		f.WriteMacros(buf)
	}

	// par: R G B W at channels 2..5 from start 11.
	if got := buf[11:15]; got[0] != 255 || got[1] != 128 || got[2] != 1 || got[3] != 191 {
		t.Errorf("rgbw got %v", got)
	}
	// wash: lime on channel 5.
	if got := buf[wash.Index(5)]; got != 191 {
		t.Errorf("lime got %d, want 191", got)
	}
	// spot: CMY on channels 6..8.
	if got := buf[spot.Index(6) : spot.Index(8)+1]; got[0] != 0 || got[1] != 127 || got[2] != 254 {
		t.Errorf("cmy got %v", got)
	}
	// bar: 16-bit pairs of c*257.
	if buf[bar.Index(1)] != 0xff || buf[bar.Index(2)] != 0xff {
		t.Errorf("red16 got %#x %#x", buf[bar.Index(1)], buf[bar.Index(2)])
	}
	if buf[bar.Index(3)] != 0x80 || buf[bar.Index(4)] != 0x80 {
		t.Errorf("green16 got %#x %#x", buf[bar.Index(3)], buf[bar.Index(4)])
	}
	if buf[bar.Index(5)] != 0x01 || buf[bar.Index(6)] != 0x01 {
		t.Errorf("blue16 got %#x %#x", buf[bar.Index(5)], buf[bar.Index(6)])
	}
}

func TestWriteHome(t *testing.T) {
	c := loadLibrary(t)
	spot := resolve(t, c, "spot", "CMY Spot", 1)
	buf := make([]byte, Universe)
	spot.WriteHome(buf)
	if buf[0] != 128 || buf[8] != 255 || buf[5] != 0 {
		t.Errorf("home got pan=%d shutter=%d cyan=%d", buf[0], buf[8], buf[5])
	}
}

func TestAnimate(t *testing.T) {
	c := loadLibrary(t)
	par := resolve(t, c, "par", "Generic RGBW Par", 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	dim := controlMacro(t, par, "Dimmer")
	dim.AnimateTo(now, time.Second, 255, animation.Linear)
	col := colourMacro(t, par, "Colour")
	col.Set(colour.RGBA{A: 255})
	col.AnimateTo(now, time.Second, colour.RGBA{R: 200, A: 255}, animation.Linear)

	par.Animate(now.Add(500 * time.Millisecond))
	if dim.Value != 128 || !dim.Animating() {
		t.Errorf("half way dimmer got %d animating=%v", dim.Value, dim.Animating())
	}
	if col.Value.R != 100 {
		t.Errorf("half way red got %d, want 100", col.Value.R)
	}

	par.Animate(now.Add(time.Second))
	if dim.Value != 255 || dim.Animating() {
		t.Errorf("end dimmer got %d animating=%v", dim.Value, dim.Animating())
	}
	if col.Value.R != 200 || col.Animating() {
		t.Errorf("end colour got %v animating=%v", col.Value, col.Animating())
	}
}

func TestSortAndClaimed(t *testing.T) {
	c := loadLibrary(t)
	spot := resolve(t, c, "spot", "CMY Spot", 1)
	spot.SortMacros()
	var labels []string
	for _, m := range spot.Macros() {
		labels = append(labels, m.Label())
	}
	want := []string{"Colour", "Dimmer", "Focus", "Pan", "Tilt"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("sorted got %v, want %v", labels, want)
		}
	}
	claimed := spot.Claimed()
	if len(claimed) != 10 || claimed[0] != 0 || claimed[9] != 9 {
		t.Errorf("claimed got %v", claimed)
	}
}
