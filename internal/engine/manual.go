package engine

import (
	"fmt"

	"artnetctl/internal/remote"
	"artnetctl/internal/scene"
)

func fmtErr(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}

// SetChannel writes a one-indexed channel directly and leaves macro mode.
func (e *Engine) SetChannel(channel uint16, v uint8) error {
	if channel == 0 || int(channel) > len(e.buffer) {
		return fmtErr(ErrChannel, "%d", channel)
	}
	e.buffer[channel-1] = v
	e.applyMacros = false
	return nil
}

// SetChannels writes every valid value and reports the invalid ones. Macro
// mode is left even if some channels were rejected.
func (e *Engine) SetChannels(values []remote.ChannelValue) error {
	var bad []uint16
	for _, cv := range values {
		if err := e.SetChannel(cv.Channel, cv.Value); err != nil {
			bad = append(bad, cv.Channel)
		}
	}
	e.applyMacros = false
	if len(bad) > 0 {
		return fmtErr(ErrChannel, "%v", bad)
	}
	return nil
}

// Home resets the buffer to zero plus every mapping's home value.
func (e *Engine) Home() {
	e.writeHome()
	e.applyMacros = false
}

// Zero clears the buffer.
func (e *Engine) Zero() {
	e.fill(0)
	e.applyMacros = false
}

// Randomize fills the buffer with random bytes once.
func (e *Engine) Randomize() {
	e.rng.Read(e.buffer)
	e.applyMacros = false
}

// Assigned reports, per buffer index, whether any usable fixture claims it.
func (e *Engine) Assigned() []bool {
	out := make([]bool, len(e.buffer))
	for _, f := range e.fixtures {
		for _, i := range f.Claimed() {
			if i >= 0 && i < len(out) {
				out[i] = true
			}
		}
	}
	return out
}

// AddScene captures the current macro state. An empty label picks the next
// free "New Scene N" label; an existing label is overwritten.
func (e *Engine) AddScene(label string) *scene.Scene {
	if label == "" {
		label = e.scenes.NextLabel()
	}
	sc := scene.Capture(label, e.fixtures)
	e.scenes.Add(sc)
	e.log.Infof("scene %q captured", label)
	return sc
}

// UpdateScene re-captures an existing scene.
func (e *Engine) UpdateScene(label string) error {
	sc, ok := e.scenes.Find(label)
	if !ok {
		return fmtErr(ErrUnknownScene, "%q", label)
	}
	sc.Recapture(e.fixtures)
	return nil
}

// DeleteScene removes a scene.
func (e *Engine) DeleteScene(label string) error {
	if !e.scenes.Delete(label) {
		return fmtErr(ErrUnknownScene, "%q", label)
	}
	return nil
}
