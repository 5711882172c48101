package clientmqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"artnetctl/internal/colour"
	"artnetctl/internal/fixture"
	"artnetctl/internal/midiin"
	"artnetctl/internal/remote"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/gomidi/midi/v2"
)

var (
	// ErrUnknownPlug is returned for a payload on an unrouted plug.
	ErrUnknownPlug = errors.New("unknown plug")
	// ErrIgnored is returned for valid payloads that carry no command.
	ErrIgnored = errors.New("message ignored")

	errNotFinite = errors.New("number is not finite")
)

// Decoder turns plug payloads into remote messages.
type Decoder struct {
	unmarshal func([]byte, interface{}) error
}

// NewDecoder selects the payload codec: msgpack or json.
func NewDecoder(codec string) (*Decoder, error) {
	switch codec {
	case "", "msgpack":
		return &Decoder{unmarshal: msgpack.Unmarshal}, nil
	case "json":
		return &Decoder{unmarshal: json.Unmarshal}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", codec)
}

// Decode parses payload as the message type of plug.
func (d *Decoder) Decode(plug Plug, payload []byte) (remote.Message, error) {
	switch plug {
	case PlugNotesOn:
		var p notePayload
		if err := d.unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return remote.NoteOn{Channel: p.Channel, Note: p.Note, Velocity: p.Velocity}, nil

	case PlugControlChange:
		var p controlChangePayload
		if err := d.unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return remote.ControlChange{Channel: p.Channel, Controller: p.Controller, Value: p.Value}, nil

	case PlugKnobs:
		var p knobPayload
		if err := d.unmarshal(payload, &p); err != nil {
			return nil, err
		}
		if !finite(p.Position) {
			return nil, fmt.Errorf("knob %d: %w", p.Index, errNotFinite)
		}
		return remote.Knob{Index: p.Index, Position: p.Position}, nil

	case PlugMacros, PlugAnimations:
		var p macroPayload
		if err := d.unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return macroSet(p)

	case PlugScenes:
		var p scenePayload
		if err := d.unmarshal(payload, &p); err != nil {
			return nil, err
		}
		if p.SceneLabel == "" {
			return nil, errors.New("scene message without sceneLabel")
		}
		d, err := millis(p.Duration)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", p.SceneLabel, err)
		}
		return remote.SceneTrigger{
			Label:    p.SceneLabel,
			Fixtures: labels(p.FixtureLabel, p.FixtureLabels),
			Duration: d,
		}, nil

	case PlugChannels:
		var p channelsPayload
		if err := d.unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return remote.Channels{Values: p}, nil

	case PlugMidiRaw:
		m, ok := midiin.Decode(midi.Message(payload))
		if !ok {
			return nil, ErrIgnored
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownPlug, plug)
}

func macroSet(p macroPayload) (remote.Message, error) {
	if p.MacroLabel == "" {
		return nil, errors.New("macro message without macroLabel")
	}
	raw := p.Value
	if p.TargetValue != nil {
		raw = p.TargetValue
	}
	if raw == nil {
		return nil, errors.New("macro message without value")
	}
	v, err := value(raw)
	if err != nil {
		return nil, fmt.Errorf("macro %q: %w", p.MacroLabel, err)
	}
	d, err := millis(p.Duration)
	if err != nil {
		return nil, fmt.Errorf("macro %q: %w", p.MacroLabel, err)
	}
	return remote.MacroSet{
		Fixtures: labels(p.FixtureLabel, p.FixtureLabels),
		Macro:    p.MacroLabel,
		Value:    v,
		Duration: d,
	}, nil
}

// value reads a number as an 8-bit level and anything else as a colour.
func value(raw interface{}) (fixture.Value, error) {
	if n, ok := number(raw); ok {
		if !finite(n) {
			return fixture.Value{}, errNotFinite
		}
		return fixture.LevelValue(uint8(math.Max(0, math.Min(255, math.Round(n))))), nil
	}
	c, err := colour.FromValue(raw)
	if err != nil {
		return fixture.Value{}, err
	}
	return fixture.ColourValue(c), nil
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func labels(one *string, many []string) []string {
	if one != nil && *one != "" {
		return append([]string{*one}, many...)
	}
	return many
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func millis(ms *float64) (*time.Duration, error) {
	if ms == nil {
		return nil, nil
	}
	if !finite(*ms) {
		return nil, fmt.Errorf("duration: %w", errNotFinite)
	}
	d := time.Duration(*ms * float64(time.Millisecond))
	return &d, nil
}
