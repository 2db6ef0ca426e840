package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName formats a MIDI note number, middle C (60) as C4.
func NoteName(n int) string {
	if n < 0 || n > 127 {
		return "--"
	}
	return fmt.Sprintf("%s%d", noteNames[n%12], n/12-1)
}

// RenderDot renders a single colored glyph
func RenderDot(color lipgloss.Color, glyph rune) string {
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(string(glyph))
}

// RenderMeter renders value (0-1) as a bar of width cells
func RenderMeter(value float64, width int, full, empty rune, color, dim lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	value = math.Max(0, math.Min(1, value))
	n := int(math.Round(value * float64(width)))
	on := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(full), n))
	off := lipgloss.NewStyle().Foreground(dim).Render(strings.Repeat(string(empty), width-n))
	return on + off
}

// RenderPitch shows a pitch factor (1.0 centered) as a signed percentage
func RenderPitch(p float64) string {
	if p == 1 {
		return "  0%"
	}
	return fmt.Sprintf("%+3.0f%%", (p-1)*100)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
