// Package remote defines the control messages that reach the engine from
// MIDI and MQTT, and the queue that carries them.
package remote

import (
	"fmt"
	"time"

	"artnetctl/internal/fixture"
)

// Message is one of NoteOn, ControlChange, Knob, MacroSet, SceneTrigger or
// Channels.
type Message interface {
	fmt.Stringer
	message()
}

// NoteOn selects a fixture group.
type NoteOn struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// ControlChange sets one macro of the selected group.
type ControlChange struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// Knob sets a control macro by its project-wide knob number. Position is
// normalised to [0, 1].
type Knob struct {
	Index    int
	Position float64
}

// MacroSet sets one macro on matching fixtures. No Fixtures means all of
// them; a nil Duration means instantly.
type MacroSet struct {
	Fixtures []string
	Macro    string
	Value    fixture.Value
	Duration *time.Duration
}

// SceneTrigger recalls a scene by label.
type SceneTrigger struct {
	Label    string
	Duration *time.Duration
	Fixtures []string
}

// ChannelValue is a one-indexed channel and its level.
type ChannelValue struct {
	Channel uint16 `json:"channel" msgpack:"channel"`
	Value   uint8  `json:"value" msgpack:"value"`
}

// Channels writes raw channel levels and leaves macro mode.
type Channels struct {
	Values []ChannelValue
}

func (NoteOn) message()        {}
func (ControlChange) message() {}
func (Knob) message()          {}
func (MacroSet) message()      {}
func (SceneTrigger) message()  {}
func (Channels) message()      {}

func (m NoteOn) String() string {
	return fmt.Sprintf("note on ch=%d note=%d vel=%d", m.Channel, m.Note, m.Velocity)
}

func (m ControlChange) String() string {
	return fmt.Sprintf("cc ch=%d controller=%d value=%d", m.Channel, m.Controller, m.Value)
}

func (m Knob) String() string {
	return fmt.Sprintf("knob %d=%.3f", m.Index, m.Position)
}

func (m MacroSet) String() string {
	return fmt.Sprintf("macro %q=%s fixtures=%v duration=%s", m.Macro, m.Value, m.Fixtures, durationString(m.Duration))
}

func (m SceneTrigger) String() string {
	return fmt.Sprintf("scene %q fixtures=%v duration=%s", m.Label, m.Fixtures, durationString(m.Duration))
}

func (m Channels) String() string {
	return fmt.Sprintf("%d channel values", len(m.Values))
}

func durationString(d *time.Duration) string {
	if d == nil {
		return "none"
	}
	return d.String()
}

// Queue carries messages from input goroutines to the engine loop.
type Queue struct {
	ch chan Message
}

// NewQueue makes a queue holding up to size pending messages.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Message, size)}
}

// Push enqueues m without blocking and reports false when the queue is full.
func (q *Queue) Push(m Message) bool {
	select {
	case q.ch <- m:
		return true
	default:
		return false
	}
}

// Poll dequeues one message without blocking.
func (q *Queue) Poll() (Message, bool) {
	select {
	case m := <-q.ch:
		return m, true
	default:
		return nil, false
	}
}

// Len is the number of pending messages.
func (q *Queue) Len() int {
	return len(q.ch)
}
