// Package colors assigns display colors to hosts and owners and converts the
// "#rrggbb" strings carried on the wire into image colors.
package colors

import (
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Palette holds the fixed colors for "Host 1" .. "Host 20".
var Palette = []string{
	"#e53935", "#1e88e5", "#43a047", "#8e24aa", "#fb8c00",
	"#00897b", "#f4511e", "#3949ab", "#c0ca33", "#6d4c41",
	"#00acc1", "#d81b60", "#7cb342", "#5e35b1", "#039be5",
	"#ef6c00", "#7e57c2", "#26a69a", "#c2185b", "#9e9d24",
}

var hostPattern = regexp.MustCompile(`(?i)host\s*(\d{1,2})`)

// HostIndex extracts N from labels such as "Host 3". It returns 0 when the
// label carries no usable index.
func HostIndex(label string) int {
	m := hostPattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 99 {
		return 0
	}
	return n
}

// HostColor returns a stable color for a label. Numbered hosts use the
// palette (then golden-angle hues past its end); anything else is hashed.
func HostColor(label string) string {
	if n := HostIndex(label); n > 0 {
		if n <= len(Palette) {
			return Palette[n-1]
		}
		hue := math.Mod(float64(n)*137.508, 360)
		return toHex(hslToRGB(hue, 70, 50))
	}
	if label == "" {
		label = "unknown"
	}
	hue := float64(hashString(label) % 360)
	return toHex(hslToRGB(hue, 65, 50))
}

func hashString(s string) int64 {
	var h int32
	for _, r := range s {
		h = int32(r) + ((h << 5) - h)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func hslToRGB(h, s, l float64) color.NRGBA {
	sat := clamp(s, 0, 100) / 100
	light := clamp(l, 0, 100) / 100
	c := (1 - math.Abs(2*light-1)) * sat
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := light - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g = c, x
	case h < 120:
		r, g = x, c
	case h < 180:
		g, b = c, x
	case h < 240:
		g, b = x, c
	case h < 300:
		r, b = x, c
	default:
		r, b = c, x
	}
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}

func toHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var named = map[string]color.NRGBA{
	"black": {A: 0xff},
	"white": {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":   {R: 0xff, A: 0xff},
	"green": {G: 0x80, A: 0xff},
	"blue":  {B: 0xff, A: 0xff},
}

// Parse converts "#rgb", "#rrggbb" or a handful of CSS names. Unknown values
// fall back to the given default.
func Parse(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := named[s]; ok {
		return c
	}
	if !strings.HasPrefix(s, "#") {
		return fallback
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
