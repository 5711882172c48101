// Package engine owns the channel buffer and all macro and scene state, and
// runs the update loop that turns remote messages into DMX frames.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"artnetctl/internal/animation"
	"artnetctl/internal/artnet"
	"artnetctl/internal/fixture"
	"artnetctl/internal/logger"
	"artnetctl/internal/project"
	"artnetctl/internal/remote"
	"artnetctl/internal/scene"
)

var (
	ErrUnknownScene   = errors.New("unknown scene")
	ErrUnknownMacro   = errors.New("unknown macro")
	ErrUnknownFixture = errors.New("unknown fixture")
	ErrChannel        = errors.New("channel out of range")
)

// ExitBehaviour is the final frame written on shutdown.
type ExitBehaviour int

const (
	DoNothing ExitBehaviour = iota
	GoHome
	GoZero
)

// ParseExitBehaviour reads nothing, home or zero.
func ParseExitBehaviour(s string) (ExitBehaviour, error) {
	switch strings.ToLower(s) {
	case "", "nothing", "none":
		return DoNothing, nil
	case "home":
		return GoHome, nil
	case "zero":
		return GoZero, nil
	}
	return DoNothing, fmt.Errorf("unknown exit behaviour %q", s)
}

func (b ExitBehaviour) String() string {
	switch b {
	case GoHome:
		return "home"
	case GoZero:
		return "zero"
	}
	return "nothing"
}

// Options tunes an Engine. Zero values pick the defaults.
type Options struct {
	Curve      animation.Curve
	AutoRandom bool
	AutoZero   bool
	IdleSleep  time.Duration
	Now        func() time.Time
	Rand       *rand.Rand
}

// Engine is the single owner of lighting state. Only the goroutine running
// Tick or Run may touch it; inputs reach it through the queue.
type Engine struct {
	log      *logger.Log
	project  *project.Project
	fixtures []*fixture.Instance
	scenes   *scene.Store
	midi     project.MidiConfig
	output   artnet.Output
	queue    *remote.Queue

	buffer []byte
	// applyMacros is set by macro and scene events and cleared by manual edits.
	applyMacros   bool
	selectedGroup int

	curve      animation.Curve
	autoRandom bool
	autoZero   bool
	idle       time.Duration
	now        func() time.Time
	rng        *rand.Rand
}

// New builds an engine over a prepared project. The buffer starts at the
// fixtures' home values and macro mode starts off.
func New(log logger.Logger, p *project.Project, out artnet.Output, q *remote.Queue, opt Options) *Engine {
	e := &Engine{
		log:        log.With(logger.Fields{"module": "engine"}),
		project:    p,
		fixtures:   p.Fixtures,
		scenes:     scene.NewStore(p.Scenes),
		midi:       p.MidiConfig,
		output:     out,
		queue:      q,
		buffer:     make([]byte, artnet.Channels),
		curve:      opt.Curve,
		autoRandom: opt.AutoRandom,
		autoZero:   opt.AutoZero,
		idle:       opt.IdleSleep,
		now:        opt.Now,
		rng:        opt.Rand,
	}
	if e.curve == nil {
		e.curve = animation.SineInOut
	}
	if e.idle <= 0 {
		e.idle = time.Millisecond
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.writeHome()
	return e
}

// Channels returns the current buffer. Callers must not keep it across ticks.
func (e *Engine) Channels() []byte {
	return e.buffer
}

// Fixtures lists the project's fixtures in label order.
func (e *Engine) Fixtures() []*fixture.Instance {
	return e.fixtures
}

// Scenes is the scene store.
func (e *Engine) Scenes() *scene.Store {
	return e.scenes
}

// MacroMode reports whether macros are rewritten into the buffer each tick.
func (e *Engine) MacroMode() bool {
	return e.applyMacros
}

// SelectedGroup is the fixture index chosen by the last note-on.
func (e *Engine) SelectedGroup() int {
	return e.selectedGroup
}

// Tick drains pending messages, advances animations, rebuilds the buffer and
// offers it to the output. It reports whether a frame was sent.
func (e *Engine) Tick() bool {
	now := e.now()
	for {
		m, ok := e.queue.Poll()
		if !ok {
			break
		}
		e.route(m, now)
	}
	for _, f := range e.fixtures {
		f.Animate(now)
	}
	e.rebuild()
	return e.output.Update(e.buffer)
}

func (e *Engine) rebuild() {
	switch {
	case e.autoZero:
		e.fill(0)
	case e.autoRandom:
		e.rng.Read(e.buffer)
	case e.applyMacros:
		// Fixtures write in label order, so on a shared channel the last
		// fixture wins.
		for _, f := range e.fixtures {
			f.WriteMacros(e.buffer)
		}
	}
}

func (e *Engine) fill(v byte) {
	for i := range e.buffer {
		e.buffer[i] = v
	}
}

func (e *Engine) writeHome() {
	e.fill(0)
	for _, f := range e.fixtures {
		f.WriteHome(e.buffer)
	}
}

// Run ticks until ctx is done, sleeping between ticks while the queue is
// empty.
func (e *Engine) Run(ctx context.Context) {
	t := time.NewTimer(e.idle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.Tick()
		if e.queue.Len() > 0 {
			continue
		}
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(e.idle)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Exit writes the final frame for b, bypassing the rate limit.
func (e *Engine) Exit(b ExitBehaviour) error {
	switch b {
	case DoNothing:
		e.log.Info("exit: leaving channels as they are")
		return nil
	case GoHome:
		e.writeHome()
	case GoZero:
		e.fill(0)
	}
	e.applyMacros = false
	e.log.Infof("exit: sending %s frame", b)
	return e.output.Flush(e.buffer)
}

// Save writes the project, including the current scenes, to path.
func (e *Engine) Save(path string) error {
	e.project.Scenes = e.scenes.All()
	return e.project.Save(path)
}
