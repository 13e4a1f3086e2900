package model

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// DefaultColor is used for shapes that carry no color of their own.
const DefaultColor = "#ef4444"

// DefaultPalette is the fixed color picker offered by the editors.
var DefaultPalette = []string{
	"#ef4444", // red
	"#f97316", // orange
	"#eab308", // yellow
	"#22c55e", // green
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#a855f7", // purple
	"#ec4899", // pink
}

// IsHexColor reports whether s is #rgb or #rrggbb.
func IsHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// ParseColor resolves hex colors and CSS color names. Older annotation sets
// carry arbitrary CSS strings, so names are accepted too.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if IsHexColor(s) {
		v, _ := strconv.ParseUint(s[1:], 16, 32)
		if len(s) == 4 {
			r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
			return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 0xff}, nil
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unrecognized color %q", s)
}

// ResolveColor is ParseColor with a fallback for unparseable values.
func ResolveColor(s, fallback string) color.RGBA {
	if c, err := ParseColor(s); err == nil {
		return c
	}
	c, _ := ParseColor(fallback)
	return c
}

// HexString formats c as #rrggbb, ignoring alpha.
func HexString(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
