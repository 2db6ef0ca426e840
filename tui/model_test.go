package tui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"midimodel/midi"
	"midimodel/output"
	"midimodel/sequencer"
	"midimodel/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// song plays C4 from tick 0 to 96 at 96 ticks per beat.
func song(t *testing.T) *sequencer.Music {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(96, gomidi.NoteOff(0, 60))
	tr.Close(10)
	if err := s.Add(tr); err != nil {
		t.Fatalf("add track: %v", err)
	}
	tl, err := midi.FromSMF(s)
	if err != nil {
		t.Fatalf("from smf: %v", err)
	}
	m := sequencer.New(tl)
	m.SetOutputChannelsCount(2)
	m.Reanalyze()
	return m
}

type recorder struct {
	msgs []gomidi.Message
}

func (r *recorder) send(msg gomidi.Message) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) noteOns() []uint8 {
	var keys []uint8
	for _, msg := range r.msgs {
		var ch, key, vel uint8
		if msg.GetNoteStart(&ch, &key, &vel) {
			keys = append(keys, key)
		}
	}
	return keys
}

func newTestModel(t *testing.T) (Model, *recorder) {
	rec := &recorder{}
	m := NewModel(song(t), theme.New(theme.DefaultPalette()), output.NewFollower(rec.send, nil), nil)
	return m, rec
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFirstStepShowsImmediately(t *testing.T) {
	m, rec := newTestModel(t)

	m, cmd := update(t, m, StepMsg{})
	if cmd == nil {
		t.Fatalf("step returned no command")
	}
	msg := cmd()
	if _, ok := msg.(FrameMsg); !ok {
		t.Fatalf("first step should show at once, got %T", msg)
	}

	m, cmd = update(t, m, msg)
	if m.frame.Tick != 0 || !m.frame.Channels[0].Sounding || m.frame.Channels[0].Note.Number != 60 {
		t.Fatalf("frame = %+v", m.frame)
	}
	if _, ok := cmd().(StepMsg); !ok {
		t.Fatalf("frame should schedule the next step")
	}
	if got := rec.noteOns(); len(got) != 1 || got[0] != 60 {
		t.Fatalf("note ons = %v", got)
	}
	if view := m.View(); !strings.Contains(view, "C4") || !strings.Contains(view, "PLAY") {
		t.Fatalf("view missing note or state:\n%s", view)
	}
}

func TestLaterStepWaitsBeforeShowing(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, StepMsg{})
	m, _ = update(t, m, FrameMsg{})

	m, cmd := update(t, m, StepMsg{})
	if cmd == nil {
		t.Fatalf("no wait scheduled")
	}
	if m.Music.CurrentTick() != 96 {
		t.Fatalf("engine at %d, want 96", m.Music.CurrentTick())
	}
	if m.frame.Tick != 0 {
		t.Fatalf("frame shown before the wait: %d", m.frame.Tick)
	}

	m, _ = update(t, m, FrameMsg{})
	if m.frame.Tick != 96 || m.frame.Channels[0].Sounding {
		t.Fatalf("frame after wait = %+v", m.frame)
	}
}

func TestPauseStopsTheChain(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, StepMsg{})
	m, _ = update(t, m, press("p"))
	if !strings.Contains(m.View(), "PAUSE") {
		t.Fatalf("view does not show pause")
	}

	m, cmd := update(t, m, FrameMsg{})
	if cmd != nil {
		t.Fatalf("paused frame scheduled another step")
	}

	m, cmd = update(t, m, press("p"))
	if cmd == nil {
		t.Fatalf("resume did not restart stepping")
	}
	if _, ok := cmd().(StepMsg); !ok {
		t.Fatalf("resume should step")
	}
}

func TestResumeWhileInflightDoesNotDoubleStep(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, StepMsg{})
	m, _ = update(t, m, press("p"))
	m, cmd := update(t, m, press("p"))
	if cmd != nil {
		t.Fatalf("resume started a second chain")
	}
}

func TestPlaysToTheEnd(t *testing.T) {
	m, rec := newTestModel(t)
	for i := 0; i < 10 && !m.done; i++ {
		m, _ = update(t, m, StepMsg{})
		m, _ = update(t, m, FrameMsg{})
	}
	if !m.done {
		t.Fatalf("playback never finished")
	}
	if !strings.Contains(m.View(), "END") {
		t.Fatalf("view does not show the end")
	}
	var offs int
	for _, msg := range rec.msgs {
		var ch, note uint8
		if msg.GetNoteEnd(&ch, &note) && note == 60 {
			offs++
		}
	}
	if offs == 0 {
		t.Fatalf("note 60 never released")
	}

	m, cmd := update(t, m, press("r"))
	if m.done || m.Music.CurrentTick() != -1 || cmd == nil {
		t.Fatalf("restart did not rewind: done=%v tick=%d", m.done, m.Music.CurrentTick())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, press("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
	if m.View() != "" {
		t.Fatalf("view after quit should be empty")
	}
}

func TestToneAndPolicyKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, press("]"))
	if math.Abs(m.Music.ToneMultiplier()-semitone) > 1e-9 {
		t.Fatalf("tone = %v", m.Music.ToneMultiplier())
	}
	m, _ = update(t, m, press("b"))
	if m.Music.NotePolicy() != sequencer.PolicyBlend {
		t.Fatalf("policy = %v", m.Music.NotePolicy())
	}
	m, _ = update(t, m, StepMsg{})
	m, _ = update(t, m, FrameMsg{})
	view := m.View()
	if !strings.Contains(view, "tone:+1") || !strings.Contains(view, "blend") {
		t.Fatalf("header missing tone or policy:\n%s", view)
	}
}

func TestTickDuration(t *testing.T) {
	got := TickDuration(song(t))
	want := 500000.0 / 96 * float64(time.Microsecond)
	if math.Abs(float64(got)-want) > 1 {
		t.Fatalf("tick duration = %v, want %v", got, time.Duration(want))
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "pause") {
		t.Fatalf("short help missing")
	}
	m, _ = update(t, m, press("?"))
	view := m.View()
	if !strings.Contains(view, "Playback") || !strings.Contains(view, "space") {
		t.Fatalf("full help missing:\n%s", view)
	}
}

func TestSpaceBarPauses(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.paused {
		t.Fatalf("space did not pause")
	}
}
