package tui

import (
	"math"

	ui "github.com/gizak/termui/v3"
	"github.com/lucasb-eyer/go-colorful"
)

var cubeLevels = [6]float64{0, 95, 135, 175, 215, 255}

// palette256 holds the colour cube and grey ramp of the xterm palette.
// The first 16 entries are left out since terminals remap them.
var palette256 = buildPalette()

func buildPalette() [256]colorful.Color {
	var p [256]colorful.Color
	for i := 16; i < 232; i++ {
		n := i - 16
		p[i] = rgb(cubeLevels[n/36], cubeLevels[(n/6)%6], cubeLevels[n%6])
	}
	for i := 232; i < 256; i++ {
		v := float64(8 + 10*(i-232))
		p[i] = rgb(v, v, v)
	}
	return p
}

func rgb(r, g, b float64) colorful.Color {
	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}
}

// Color256 maps a hex colour to the closest xterm-256 index. Unparseable
// input falls back to white.
func Color256(hex string) ui.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ui.ColorWhite
	}
	best, bestDist := 16, math.MaxFloat64
	for i := 16; i < 256; i++ {
		if d := c.DistanceLab(palette256[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return ui.Color(best)
}

// hueNames splits the colour wheel, in degrees, into the six chromatic
// names termui's style markup understands.
var hueNames = []struct {
	upTo float64
	name string
}{
	{30, "red"},
	{90, "yellow"},
	{165, "green"},
	{200, "cyan"},
	{270, "blue"},
	{330, "magenta"},
	{360, "red"},
}

// ColorName maps a hex colour to a colour name usable in termui style
// markup such as "[text](fg:red)".
func ColorName(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "white"
	}
	h, sat, v := c.Hsv()
	switch {
	case v < 0.2:
		return "black"
	case sat < 0.15:
		return "white"
	}
	for _, n := range hueNames {
		if h < n.upTo {
			return n.name
		}
	}
	return "red"
}

func colors256(hexes []string) []ui.Color {
	out := make([]ui.Color, len(hexes))
	for i, h := range hexes {
		out[i] = Color256(h)
	}
	return out
}
