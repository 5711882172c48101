// Package colour holds the RGBA colour used by colour macros and its
// projections onto additive and subtractive fixture channels.
package colour

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// RGBA is an unpremultiplied 8-bit colour. Alpha drives the white/lime mix
// of additive fixtures.
type RGBA struct {
	R, G, B, A uint8
}

// Default is the starting value of a colour macro.
var Default = RGBA{R: 255, G: 255, B: 224, A: 255}

// Lerp interpolates a and b component-wise at progress t.
func Lerp(a, b RGBA, t float64) RGBA {
	return RGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: lerp8(a.A, b.A, t),
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + t*(float64(b)-float64(a)))
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Opaque returns the RGB components ignoring alpha.
func (c RGBA) Opaque() (r, g, b uint8) {
	return c.R, c.G, c.B
}

// Mix is the white or lime channel level: full alpha means no mix.
func (c RGBA) Mix() uint8 {
	return 255 - c.A
}

// CMY inverts the opaque components for subtractive fixtures.
func (c RGBA) CMY() (cyan, magenta, yellow uint8) {
	r, g, b := c.Opaque()
	return 255 - r, 255 - g, 255 - b
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a uint8) RGBA {
	c.A = a
	return c
}

// Hex formats c as #rrggbbaa.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c RGBA) String() string { return c.Hex() }

// ParseHex accepts #rgb, #rrggbb and #rrggbbaa. Alpha defaults to 255.
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("colour %q: bad alpha: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	if len(s) != 4 && len(s) != 7 {
		return RGBA{}, fmt.Errorf("colour %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// FromComponents builds a colour from 3 or 4 integer components.
func FromComponents(v []int) (RGBA, error) {
	if len(v) != 3 && len(v) != 4 {
		return RGBA{}, fmt.Errorf("colour needs 3 or 4 components, got %d", len(v))
	}
	out := [4]uint8{0, 0, 0, 255}
	for i, x := range v {
		if x < 0 || x > 255 {
			return RGBA{}, fmt.Errorf("colour component %d out of range: %d", i, x)
		}
		out[i] = uint8(x)
	}
	return RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

var errNotColour = errors.New("value is not a colour")

// FromValue converts a decoded JSON or MessagePack value into a colour. It
// accepts a hex string, a 3/4 element array or a map with r, g, b and a keys.
func FromValue(v interface{}) (RGBA, error) {
	switch t := v.(type) {
	case string:
		return ParseHex(t)
	case []interface{}:
		comps := make([]int, len(t))
		for i, x := range t {
			n, ok := toInt(x)
			if !ok {
				return RGBA{}, fmt.Errorf("colour component %d: %w", i, errNotColour)
			}
			comps[i] = n
		}
		return FromComponents(comps)
	case map[string]interface{}:
		comps := []int{0, 0, 0, 255}
		for i, k := range []string{"r", "g", "b", "a"} {
			x, ok := t[k]
			if !ok {
				if k == "a" {
					continue
				}
				return RGBA{}, fmt.Errorf("colour missing %q: %w", k, errNotColour)
			}
			n, ok := toInt(x)
			if !ok {
				return RGBA{}, fmt.Errorf("colour %q: %w", k, errNotColour)
			}
			comps[i] = n
		}
		return FromComponents(comps)
	}
	return RGBA{}, fmt.Errorf("%T: %w", v, errNotColour)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), float32(int(n)) == n
	case float64:
		return int(n), float64(int(n)) == n
	}
	return 0, false
}

// MarshalJSON writes [r, g, b, a].
func (c RGBA) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]uint8{c.R, c.G, c.B, c.A})
}

func (c *RGBA) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := FromValue(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c RGBA) MarshalYAML() (interface{}, error) {
	return []int{int(c.R), int(c.G), int(c.B), int(c.A)}, nil
}

func (c *RGBA) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	parsed, err := FromValue(v)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
