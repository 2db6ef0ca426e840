package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestNoteName(t *testing.T) {
	tests := map[int]string{60: "C4", 69: "A4", 0: "C-1", 127: "G9", -1: "--", 128: "--"}
	for n, want := range tests {
		if got := NoteName(n); got != want {
			t.Fatalf("NoteName(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestRenderMeter(t *testing.T) {
	got := RenderMeter(0.5, 8, '#', '.', "#fff", "#000")
	if got != "####...." {
		t.Fatalf("meter = %q", got)
	}
	if got := RenderMeter(3, 4, '#', '.', "#fff", "#000"); got != "####" {
		t.Fatalf("meter not clamped: %q", got)
	}
	if RenderMeter(1, 0, '#', '.', "#fff", "#000") != "" {
		t.Fatalf("zero width meter not empty")
	}
}

func TestRenderPitch(t *testing.T) {
	if RenderPitch(1) != "  0%" || RenderPitch(1.5) != "+50%" || RenderPitch(0.75) != "-25%" {
		t.Fatalf("pitch formatting: %q %q %q", RenderPitch(1), RenderPitch(1.5), RenderPitch(0.75))
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Playback", Keys: []KeyBinding{{"space", "pause"}}}})
	if !strings.Contains(out, "Playback") || !strings.Contains(out, "space") {
		t.Fatalf("help = %q", out)
	}
}
