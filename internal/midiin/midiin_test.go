package midiin

import (
	"testing"

	"artnetctl/internal/remote"
	"gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	m, ok := Decode(midi.NoteOn(2, 60, 100))
	if !ok {
		t.Fatal("note on dropped")
	}
	if got := m.(remote.NoteOn); got.Channel != 2 || got.Note != 60 || got.Velocity != 100 {
		t.Errorf("got %+v", got)
	}

	m, ok = Decode(midi.ControlChange(0, 50, 64))
	if !ok {
		t.Fatal("control change dropped")
	}
	if got := m.(remote.ControlChange); got.Controller != 50 || got.Value != 64 {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeDrops(t *testing.T) {
	for name, msg := range map[string]midi.Message{
		"zero velocity": midi.NoteOn(0, 60, 0),
		"note off":      midi.NoteOff(0, 60),
		"program":       midi.ProgramChange(0, 5),
		"short cc":      {0xB0, 10},
		"short note":    {0x90, 60},
		"status only":   {0x90},
		"empty":         {},
		"long cc":       {0xB0, 10, 20, 30},
	} {
		if m, ok := Decode(msg); ok {
			t.Errorf("%s decoded as %v", name, m)
		}
	}
}
