package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"midimodel/debug"
	"midimodel/output"
	"midimodel/sequencer"
	"midimodel/theme"
	"midimodel/widgets"
)

const meterWidth = 12

// semitone is the tone multiplier step for one half step.
var semitone = math.Pow(2, 1.0/12)

// Model plays a sequencer.Music in real time and draws its channels.
type Model struct {
	Music    *sequencer.Music
	Theme    *theme.Theme
	Follower *output.Follower // may be nil
	Log      *debug.Logger
	Title    string

	frame    sequencer.Frame
	paused   bool
	inflight bool // a step is advancing or waiting to be shown
	done     bool
	quitting bool
	showHelp bool
	err      error
	width    int
	help     help.Model
}

// StepMsg asks the model to advance to the next tick.
type StepMsg struct{}

// FrameMsg arrives once the time between two ticks has elapsed.
type FrameMsg struct{}

// NewModel expects music to be analyzed already.
func NewModel(music *sequencer.Music, th *theme.Theme, follower *output.Follower, log *debug.Logger) Model {
	return Model{
		Music:    music,
		Theme:    th,
		Follower: follower,
		Log:      log,
		Title:    "midimodel",
		frame:    music.Snapshot(),
		inflight: true, // Init issues the first step
		help:     help.New(),
	}
}

func step() tea.Msg {
	return StepMsg{}
}

// TickDuration is the wall time of one tick at the tempo in effect.
func TickDuration(m *sequencer.Music) time.Duration {
	if m.Division() <= 0 {
		return 0
	}
	return time.Duration(m.MicrosPerBeat() / m.Division() * float64(time.Microsecond))
}

func (m Model) Init() tea.Cmd {
	return step
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case StepMsg:
		return m.advance()

	case FrameMsg:
		m.show()
		if m.done || m.paused || m.err != nil {
			m.inflight = false
			return m, nil
		}
		return m, step
	}
	return m, nil
}

// advance moves the engine and waits out the ticks it covered before
// the new state is shown.
func (m Model) advance() (tea.Model, tea.Cmd) {
	m.inflight = true
	if !m.Music.HasNext() {
		m.done = true
		m.silence()
		return m, func() tea.Msg { return FrameMsg{} }
	}
	from := m.Music.CurrentTick()
	if err := m.Music.Advance(); err != nil {
		m.err = err
		m.inflight = false
		return m, nil
	}
	ticks := m.Music.CurrentTick() - max(from, 0)
	wait := time.Duration(ticks) * TickDuration(m.Music)
	if wait <= 0 {
		return m, func() tea.Msg { return FrameMsg{} }
	}
	return m, tea.Tick(wait, func(time.Time) tea.Msg { return FrameMsg{} })
}

func (m *Model) show() {
	m.frame = m.Music.Snapshot()
	if m.Follower == nil || m.done || m.paused {
		return
	}
	if err := m.Follower.Render(m.frame); err != nil {
		m.Log.Log("output", "render tick %d: %v", m.frame.Tick, err)
	}
}

func (m *Model) silence() {
	if m.Follower == nil {
		return
	}
	if err := m.Follower.Silence(); err != nil {
		m.Log.Log("output", "silence: %v", err)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.silence()
		return m, tea.Quit

	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused
		if m.paused {
			m.silence()
			return m, nil
		}
		if !m.inflight && !m.done {
			m.inflight = true
			return m, step
		}

	case key.Matches(msg, keys.Restart):
		m.silence()
		m.Music.Reanalyze()
		m.done = false
		m.err = nil
		m.frame = m.Music.Snapshot()
		if !m.inflight && !m.paused {
			m.inflight = true
			return m, step
		}

	case key.Matches(msg, keys.ToneUp):
		m.Music.SetToneMultiplier(m.Music.ToneMultiplier() * semitone)
	case key.Matches(msg, keys.ToneDn):
		m.Music.SetToneMultiplier(m.Music.ToneMultiplier() / semitone)

	case key.Matches(msg, keys.Policy):
		if m.Music.NotePolicy() == sequencer.PolicyBlend {
			m.Music.SetNotePolicy(sequencer.PolicyHighest)
		} else {
			m.Music.SetNotePolicy(sequencer.PolicyBlend)
		}
		m.frame = m.Music.Snapshot()

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) state() string {
	switch {
	case m.err != nil:
		return "ERR"
	case m.done:
		return "END"
	case m.paused:
		return "PAUSE"
	}
	return "PLAY"
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	tick := max(m.frame.Tick, 0)
	header := headerStyle.Render(fmt.Sprintf("%s  %-5s  %3.0fbpm  tick:%d/%d  tone:%+d  %s",
		m.Title, m.state(), m.frame.Tempo, tick, m.Music.Length(),
		int(math.Round(12*math.Log2(m.frame.Tone))), m.Music.NotePolicy()))

	progress := 0.0
	if m.Music.Length() > 0 {
		progress = float64(tick) / float64(m.Music.Length())
	}
	width := 40
	if m.width > 8 {
		width = m.width - 4
	}
	bar := widgets.RenderMeter(progress, width, m.Theme.Symbols.MeterFull, m.Theme.Symbols.MeterTick,
		m.Theme.Active(), m.Theme.Muted())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(bar)
	out.WriteString("\n\n")
	for i, c := range m.frame.Channels {
		out.WriteString(m.lane(i, c))
		out.WriteString("\n")
	}

	if m.err != nil {
		out.WriteString("\n")
		out.WriteString(errStyle.Render(m.err.Error()))
	}

	out.WriteString("\n")
	if m.showHelp {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keys.sections())))
	} else {
		out.WriteString(m.help.ShortHelpView(keys.ShortHelp()))
	}
	return out.String()
}

// lane renders one output channel on a single line.
func (m Model) lane(i int, c sequencer.ChannelFrame) string {
	th := m.Theme
	dim := lipgloss.NewStyle().Foreground(th.Muted())

	glyph := widgets.RenderDot(th.Muted(), th.Symbols.NoteOff)
	note := dim.Render(fmt.Sprintf("%-4s", "--"))
	velocity := widgets.RenderMeter(0, meterWidth/2, th.Symbols.MeterFull, th.Symbols.MeterTick, th.FG(), th.Muted())
	if c.Sounding {
		color := th.NoteColor(c.Note.Number)
		glyph = widgets.RenderDot(color, th.Symbols.NoteOn)
		note = lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-4s", widgets.NoteName(c.Note.Number)))
		velocity = widgets.RenderMeter(float64(c.Note.Velocity)/127, meterWidth/2,
			th.Symbols.MeterFull, th.Symbols.MeterTick, color, th.Muted())
	}
	volume := widgets.RenderMeter(c.Volume, meterWidth, th.Symbols.MeterFull, th.Symbols.MeterTick, th.FG(), th.Muted())

	alias := ""
	if c.Alias >= 0 {
		alias = dim.Render(fmt.Sprintf(" %c%d", th.Symbols.Aliased, c.Alias+1))
	}
	return fmt.Sprintf(" %2d %s %s %s vol %s pb %s prg %3d x%d%s",
		i+1, glyph, note, velocity, volume, widgets.RenderPitch(c.Pitch), c.Program, c.Active, alias)
}
