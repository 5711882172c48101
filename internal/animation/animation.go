// Package animation tweens a value between two points over wall-clock time.
package animation

import (
	"time"
)

// Animation is anchored at its creation time. Sampling it never changes its
// state, so it can be sampled any number of times per tick.
type Animation struct {
	start    time.Time
	duration time.Duration
	from     float64
	to       float64
	curve    Curve
}

// New creates an animation from start to end starting now.
func New(duration time.Duration, start, end float64, curve Curve) *Animation {
	return NewAt(time.Now(), duration, start, end, curve)
}

// NewAt creates an animation anchored at now.
func NewAt(now time.Time, duration time.Duration, start, end float64, curve Curve) *Animation {
	if curve == nil {
		curve = SineInOut
	}
	return &Animation{
		start:    now,
		duration: duration,
		from:     start,
		to:       end,
		curve:    curve,
	}
}

// Sample returns the current value and whether the animation has finished.
func (a *Animation) Sample() (float64, bool) {
	return a.SampleAt(time.Now())
}

// SampleAt is Sample evaluated at now.
func (a *Animation) SampleAt(now time.Time) (float64, bool) {
	p := a.ProgressAt(now)
	if p >= 1 {
		return a.to, true
	}
	eased := clamp01(a.curve(p))
	return a.from + (a.to-a.from)*eased, false
}

// EasedProgressAt returns the eased progress in [0,1] at now. Colour
// animations interpolate with this value.
func (a *Animation) EasedProgressAt(now time.Time) (float64, bool) {
	p := a.ProgressAt(now)
	if p >= 1 {
		return 1, true
	}
	return clamp01(a.curve(p)), false
}

// ProgressAt returns the linear elapsed fraction in [0,1].
func (a *Animation) ProgressAt(now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	elapsed := now.Sub(a.start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= a.duration {
		return 1
	}
	return float64(elapsed) / float64(a.duration)
}

// Duration is the requested length of the animation.
func (a *Animation) Duration() time.Duration { return a.duration }

// End is the value reported once finished.
func (a *Animation) End() float64 { return a.to }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
