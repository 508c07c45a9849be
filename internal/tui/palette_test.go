package tui

import (
	"testing"

	ui "github.com/gizak/termui/v3"
	"github.com/stretchr/testify/assert"

	"netinv.sh/internal/dashboard"
)

func TestColor256(t *testing.T) {
	tests := []struct {
		hex  string
		want ui.Color
	}{
		{"#ff0000", 196},
		{"#000000", 16},
		{"#808080", 244},
		{"#ffffff", 231},
		{"not a colour", ui.ColorWhite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Color256(tt.hex), tt.hex)
	}
}

func TestColorName(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{dashboard.ColorRed, "red"},
		{dashboard.ColorAmber, "yellow"},
		{dashboard.ColorGreen, "green"},
		{dashboard.ColorBlue, "blue"},
		{"#d946ef", "magenta"},
		{"#06b6d4", "cyan"},
		{"#0a0a0a", "black"},
		{"#e5e7eb", "white"},
		{"", "white"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorName(tt.hex), tt.hex)
	}
}
