package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"artnetctl/internal/fixture"
	"artnetctl/internal/logger"
	"artnetctl/internal/remote"
	"artnetctl/internal/scene"
)

// route applies one message. Errors are logged and the message dropped.
func (e *Engine) route(m remote.Message, now time.Time) {
	var err error
	switch msg := m.(type) {
	case remote.NoteOn:
		e.noteOn(msg)
	case remote.ControlChange:
		err = e.controlChange(msg)
	case remote.Knob:
		err = e.knob(msg)
	case remote.MacroSet:
		err = e.macroSet(msg, now)
	case remote.SceneTrigger:
		err = e.sceneTrigger(msg, now)
	case remote.Channels:
		err = e.SetChannels(msg.Values)
	default:
		e.log.Warnf("unhandled message %T", m)
		return
	}
	if err != nil {
		e.log.With(logger.Fields{"message": m.String()}).Warn(err)
	}
}

func (e *Engine) noteOn(msg remote.NoteOn) {
	if msg.Note < e.midi.NoteStart {
		e.log.Debugf("note %d below note start %d, ignored", msg.Note, e.midi.NoteStart)
		return
	}
	e.selectedGroup = int(msg.Note - e.midi.NoteStart)
	e.log.Debugf("note %d selects macro group %d", msg.Note, e.selectedGroup)
}

// usable lists fixtures with an active mode; macro groups index into it.
func (e *Engine) usable() []*fixture.Instance {
	out := make([]*fixture.Instance, 0, len(e.fixtures))
	for _, f := range e.fixtures {
		if f.Usable() {
			out = append(out, f)
		}
	}
	return out
}

// doubled widens a 7-bit MIDI value to 8 bits.
func doubled(v uint8) uint8 {
	if v > 127 {
		return 255
	}
	return v * 2
}

func (e *Engine) controlChange(msg remote.ControlChange) error {
	if msg.Controller < e.midi.ControllerStart {
		return nil
	}
	groups := e.usable()
	if e.selectedGroup >= len(groups) {
		return fmtErr(ErrUnknownFixture, "no fixture in macro group %d", e.selectedGroup)
	}
	f := groups[e.selectedGroup]
	index := int(msg.Controller - e.midi.ControllerStart)
	macros := f.Macros()
	if index >= len(macros) {
		return fmtErr(ErrUnknownMacro, "fixture %q has no macro %d", f.Label, index)
	}
	v := doubled(msg.Value)
	switch m := macros[index].(type) {
	case *fixture.ControlMacro:
		m.SetLevel(v)
	case *fixture.ColourMacro:
		m.Set(m.Value.WithAlpha(v))
	}
	e.log.Debugf("%s %s set to %d", f.Label, macros[index].Label(), v)
	e.applyMacros = true
	return nil
}

func (e *Engine) knob(msg remote.Knob) error {
	if math.IsNaN(msg.Position) {
		return fmt.Errorf("knob %d: position is NaN", msg.Index)
	}
	pos := math.Max(0, math.Min(1, msg.Position))
	for _, f := range e.fixtures {
		for _, m := range f.Macros() {
			if cm, ok := m.(*fixture.ControlMacro); ok && cm.KnobIndex == msg.Index {
				cm.SetLevel(uint8(math.Round(255 * pos)))
				e.applyMacros = true
				return nil
			}
		}
	}
	return fmtErr(ErrUnknownMacro, "no control macro on knob %d", msg.Index)
}

func matches(f *fixture.Instance, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, l := range filter {
		if f.Matches(l) {
			return true
		}
	}
	return false
}

func (e *Engine) macroSet(msg remote.MacroSet, now time.Time) error {
	var d time.Duration
	if msg.Duration != nil {
		d = *msg.Duration
	}
	applied := 0
	var errs []error
	for _, f := range e.fixtures {
		if !matches(f, msg.Fixtures) {
			continue
		}
		m, ok := f.Macro(msg.Macro)
		if !ok {
			if len(msg.Fixtures) > 0 {
				errs = append(errs, fmtErr(ErrUnknownMacro, "fixture %q has no macro %q", f.Label, msg.Macro))
			}
			continue
		}
		if err := fixture.Apply(m, msg.Value, now, d, e.curve); err != nil {
			errs = append(errs, fmt.Errorf("fixture %q: %w", f.Label, err))
			continue
		}
		applied++
	}
	if applied > 0 {
		e.applyMacros = true
	} else if len(errs) == 0 {
		errs = append(errs, fmtErr(ErrUnknownMacro, "no fixture matching %v has macro %q", msg.Fixtures, msg.Macro))
	}
	return errors.Join(errs...)
}

func (e *Engine) sceneTrigger(msg remote.SceneTrigger, now time.Time) error {
	sc, ok := e.scenes.Find(msg.Label)
	if !ok {
		return fmtErr(ErrUnknownScene, "%q", msg.Label)
	}
	e.RecallScene(sc, msg.Duration, msg.Fixtures, now)
	return nil
}

// RecallScene applies sc, marks it last active and enters macro mode.
func (e *Engine) RecallScene(sc *scene.Scene, d *time.Duration, filter []string, now time.Time) {
	opt := scene.Options{Fixtures: filter, Curve: e.curve, Now: now}
	if d != nil {
		opt.Duration = *d
	}
	e.scenes.MarkActive(sc)
	applied, skipped := scene.Recall(sc, e.fixtures, opt)
	for _, err := range skipped {
		e.log.Warn(err)
	}
	e.log.Infof("scene %q recalled: %d macros applied, %d skipped", sc.Label, applied, len(skipped))
	e.applyMacros = true
}
