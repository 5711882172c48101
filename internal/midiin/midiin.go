// Package midiin turns a local MIDI input port into remote messages.
package midiin

import (
	"fmt"
	"strings"

	"artnetctl/internal/logger"
	"artnetctl/internal/remote"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Decode converts note-on and control change messages. A note-on with zero
// velocity is a release and is dropped, as is everything else, including
// truncated messages.
func Decode(msg midi.Message) (remote.Message, bool) {
	if len(msg) != 3 {
		return nil, false
	}
	switch {
	case msg.Is(midi.NoteOnMsg):
		var channel, key, velocity uint8
		msg.GetNoteOn(&channel, &key, &velocity)
		if velocity == 0 {
			return nil, false
		}
		return remote.NoteOn{Channel: channel, Note: key, Velocity: velocity}, true

	case msg.Is(midi.ControlChangeMsg):
		var channel, controller, value uint8
		msg.GetControlChange(&channel, &controller, &value)
		return remote.ControlChange{Channel: channel, Controller: controller, Value: value}, true
	}
	return nil, false
}

// FindInPort returns the first input port whose name contains substr,
// ignoring case.
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

// Listen forwards decoded messages from the matching port to q until the
// returned stop function is called.
func Listen(substr string, q *remote.Queue, log logger.Logger) (func(), error) {
	l := log.With(logger.Fields{"module": "midi"})
	port, err := FindInPort(substr)
	if err != nil {
		for _, p := range midi.GetInPorts() {
			l.Infof("available input port: %s", p)
		}
		return nil, err
	}

	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		m, ok := Decode(msg)
		if !ok {
			return
		}
		l.Debugf("received %s", m)
		if !q.Push(m) {
			l.Warnf("queue full, dropped %s", m)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", port, err)
	}
	l.Infof("listening on %s", port)
	return stop, nil
}
