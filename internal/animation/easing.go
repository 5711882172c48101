package animation

import (
	"fmt"
	"math"
	"strings"
)

// Curve maps linear progress in [0,1] to eased progress. Implementations
// must satisfy curve(0)=0, curve(1)=1 and be non-decreasing.
type Curve func(t float64) float64

// EasingType names a Curve in configuration and remote messages.
type EasingType string

const (
	EasingLinear     EasingType = "LINEAR"
	EasingInOutSine  EasingType = "EASE_IN_OUT_SINE"
	EasingInOutCubic EasingType = "EASE_IN_OUT_CUBIC"
)

// Linear is the identity curve.
func Linear(t float64) float64 {
	return t
}

// SineInOut is the symmetric sine ease-in/ease-out used by default.
func SineInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// CubicInOut accelerates and decelerates with a cubic.
func CubicInOut(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	}
	v := -2*t + 2
	return 1 - v*v*v/2
}

// ParseEasing resolves a case-insensitive easing name. An empty name
// resolves to SineInOut.
func ParseEasing(name string) (Curve, error) {
	switch EasingType(strings.ToUpper(strings.TrimSpace(name))) {
	case "", EasingInOutSine:
		return SineInOut, nil
	case EasingLinear:
		return Linear, nil
	case EasingInOutCubic:
		return CubicInOut, nil
	}
	return nil, fmt.Errorf("unknown easing %q", name)
}
