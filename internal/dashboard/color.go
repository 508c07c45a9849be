package dashboard

import (
	"hash/fnv"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultAccent is the theme colour used for single-series charts
const DefaultAccent = "#2563eb"

var statusColors = map[string]string{
	"active":         "#10b981",
	"maintenance":    "#f59e0b",
	"decommissioned": "#ef4444",
	"unknown":        "#94a3b8",
}

// Widget colours
const (
	ColorRed   = "#ef4444"
	ColorAmber = "#f59e0b"
	ColorGreen = "#10b981"
	ColorBlue  = "#3b82f6"
)

const (
	spreadSaturation = 0.70
	spreadLightness  = 0.55
)

// StatusColors returns one colour per status label. Known statuses have
// fixed colours; any other label gets a hue derived from an FNV hash of
// the label, so the same label is always painted the same way.
func StatusColors(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		key := strings.ToLower(strings.TrimSpace(l))
		if c, ok := statusColors[key]; ok {
			out[i] = c
			continue
		}
		out[i] = hashColor(key)
	}
	return out
}

// SpreadColors returns n colours evenly spaced over the hue circle (0-340
// degrees, so the last never wraps back onto the first).
func SpreadColors(n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	step := 340.0 / float64(n)
	for i := range out {
		hue := math.Round(step * float64(i))
		out[i] = colorful.Hsl(hue, spreadSaturation, spreadLightness).Clamped().Hex()
	}
	return out
}

// AccentColors repeats accent n times. An unparsable accent falls back to
// DefaultAccent.
func AccentColors(n int, accent string) []string {
	if n <= 0 {
		return []string{}
	}
	c, err := colorful.Hex(strings.TrimSpace(accent))
	if err != nil {
		c, _ = colorful.Hex(DefaultAccent)
	}
	hex := c.Hex()
	out := make([]string, n)
	for i := range out {
		out[i] = hex
	}
	return out
}

func hashColor(label string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	hue := float64(h.Sum32() % 360)
	return colorful.Hsl(hue, spreadSaturation, spreadLightness).Clamped().Hex()
}
