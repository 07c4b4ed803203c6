package domain

import (
	"image/color"
	"strconv"
	"strings"
)

// Color is a "#rrggbb" hex string.
type Color string

const (
	DefaultColor          Color = "#000000"
	DefaultHighlightColor Color = "#FFFF00"
)

// Valid reports whether c is a well formed #rrggbb value.
func (c Color) Valid() bool {
	_, ok := c.parse()
	return ok
}

// RGBA returns the color, or fallback when c is empty or malformed.
func (c Color) RGBA(fallback Color) color.RGBA {
	if rgba, ok := c.parse(); ok {
		return rgba
	}
	rgba, _ := fallback.parse()
	return rgba
}

// Components returns r, g, b in [0, 1].
func (c Color) Components(fallback Color) (r, g, b float64) {
	rgba := c.RGBA(fallback)
	return float64(rgba.R) / 255, float64(rgba.G) / 255, float64(rgba.B) / 255
}

func (c Color) parse() (color.RGBA, bool) {
	s := string(c)
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
