// Package core provides shared presentation types for the renderer
// subsystem. It sits below the view projector and the terminal backend
// so neither has to import the other.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a terminal color: true color RGB, a palette index, or the
// terminal default.
type Color struct {
	R, G, B uint8

	// Indexed selects palette mode; R holds the index.
	Indexed bool

	// Default marks the terminal's default color.
	Default bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates a palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#rgb" or "#rrggbb".
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Color{}, fmt.Errorf("invalid hex color length: %s", hex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// IsDefault reports whether this is the terminal default color.
func (c Color) IsDefault() bool {
	return c.Default
}

// String returns a human-readable representation of the color.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Blend mixes two true colors in Lab space, which keeps midpoints
// perceptually sane. Indexed and default colors snap to the nearer
// operand.
func (c Color) Blend(other Color, amount float64) Color {
	if c.Default || c.Indexed || other.Default || other.Indexed {
		if amount < 0.5 {
			return c
		}
		return other
	}

	a := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	b := colorful.Color{R: float64(other.R) / 255, G: float64(other.G) / 255, B: float64(other.B) / 255}
	m := a.BlendLab(b, amount).Clamped()

	return Color{R: uint8(m.R * 255), G: uint8(m.G * 255), B: uint8(m.B * 255)}
}

// Attribute is a bitset of text attributes.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrReverse
)

// Has reports whether the set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Style is the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the terminal's default style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// Reverse returns the style with reverse video applied.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Bold returns the style with bold applied.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}
