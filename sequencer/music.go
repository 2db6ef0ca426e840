package sequencer

import (
	"errors"

	"midimodel/debug"
	"midimodel/midi"
)

// Source channels in a MIDI stream
const SourceChannels = 16

// DefaultTempo is 120 BPM, in microseconds per beat.
const DefaultTempo = 500000.0

var (
	// ErrNotAnalyzed is returned (or panicked with, for queries) when the
	// engine is used before Reanalyze.
	ErrNotAnalyzed = errors.New("sequencer: Reanalyze has not been called")
	// ErrExhausted is returned by Advance once HasNext is false.
	ErrExhausted = errors.New("sequencer: no ticks left")
)

// InstrumentLister enumerates instruments for diagnostic output.
type InstrumentLister interface {
	Instruments() ([]string, error)
}

// Option configures a Music.
type Option func(*Music)

// WithLogger routes diagnostics to l. A nil logger discards them.
func WithLogger(l *debug.Logger) Option {
	return func(m *Music) {
		m.log = l
	}
}

// WithNotePolicy selects how overlapping notes reduce to one.
func WithNotePolicy(p NotePolicy) Option {
	return func(m *Music) {
		m.policy = p
	}
}

// WithPrograms replaces the program sustain table.
func WithPrograms(t ProgramTable) Option {
	return func(m *Music) {
		m.programs = t
	}
}

// WithInstruments lists the given instruments on every Reanalyze.
func WithInstruments(l InstrumentLister) Option {
	return func(m *Music) {
		m.instruments = l
	}
}

// Music is the tick-addressable playback model of one timeline.
// It is not safe for concurrent use.
type Music struct {
	timeline *midi.Timeline

	channels []*Channel
	system   *Channel

	currentTick  int64
	currentTempo float64
	nextTempo    float64

	speedMultiplier float64
	toneMultiplier  float64
	blacklisted     [SourceChannels]bool
	channelsCount   int

	policy      NotePolicy
	programs    ProgramTable
	instruments InstrumentLister
	log         *debug.Logger

	analyzed bool
}

// New creates a model over tl. Call Reanalyze before anything else.
func New(tl *midi.Timeline, opts ...Option) *Music {
	m := &Music{
		timeline:        tl,
		currentTick:     -1,
		currentTempo:    DefaultTempo,
		nextTempo:       DefaultTempo,
		speedMultiplier: 1.0,
		toneMultiplier:  1.0,
		channelsCount:   SourceChannels,
		policy:          PolicyHighest,
		programs:        DefaultPrograms(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Music) mustAnalyzed() {
	if !m.analyzed {
		panic(ErrNotAnalyzed)
	}
}

func (m *Music) channel(ch int) *Channel {
	m.mustAnalyzed()
	n := len(m.channels)
	return m.channels[((ch%n)+n)%n]
}

// HasNext reports whether ticks remain to be visited.
func (m *Music) HasNext() bool {
	m.mustAnalyzed()
	return m.currentTick < m.timeline.Length
}

// CurrentTick returns the tick cursor; -1 before the first Advance.
func (m *Music) CurrentTick() int64 {
	m.mustAnalyzed()
	return m.currentTick
}

// Length returns the total tick length of the timeline.
func (m *Music) Length() int64 {
	return m.timeline.Length
}

// Division returns the resolution in ticks per beat.
func (m *Music) Division() float64 {
	m.mustAnalyzed()
	return float64(m.timeline.Resolution)
}

// CurrentTempo returns the tempo in effect, in beats per minute.
func (m *Music) CurrentTempo() float64 {
	m.mustAnalyzed()
	return 60000000 / m.currentTempo
}

// MicrosPerBeat returns the tempo in effect, in microseconds per beat.
func (m *Music) MicrosPerBeat() float64 {
	m.mustAnalyzed()
	return m.currentTempo
}

// ChannelVolume returns the volume (0-1) of an output channel.
func (m *Music) ChannelVolume(ch int) float64 {
	return m.channel(ch).Volume
}

// ChannelPitch returns the pitch bend (1.0 = neutral) of an output channel.
func (m *Music) ChannelPitch(ch int) float64 {
	return m.channel(ch).Pitch
}

// ChannelProgram returns the selected program of an output channel.
func (m *Music) ChannelProgram(ch int) int {
	return m.channel(ch).Program
}

// Channel exposes the state of an output channel.
func (m *Music) Channel(ch int) *Channel {
	return m.channel(ch)
}

// ChannelsCount returns the number of output channels queries wrap by.
// Before Reanalyze it is the configured count.
func (m *Music) ChannelsCount() int {
	if m.analyzed {
		return len(m.channels)
	}
	return m.channelsCount
}

// SetOutputChannelsCount sets the number of output channels for the next Reanalyze.
func (m *Music) SetOutputChannelsCount(n int) {
	if n < 1 {
		m.log.Log("config", "ignoring output channel count %d", n)
		return
	}
	m.channelsCount = n
}

// SetBlacklistedChannels excludes source channels from the next Reanalyze.
// Indices outside 0-15 are ignored.
func (m *Music) SetBlacklistedChannels(blacklist []int) {
	var b [SourceChannels]bool
	for _, ch := range blacklist {
		if ch < 0 || ch >= SourceChannels {
			m.log.Log("config", "ignoring blacklisted channel %d", ch)
			continue
		}
		b[ch] = true
	}
	m.blacklisted = b
}

// Blacklisted reports whether a source channel is excluded.
func (m *Music) Blacklisted(ch int) bool {
	return ch >= 0 && ch < SourceChannels && m.blacklisted[ch]
}

// SetSpeedMultiplier scales playback speed; tempo events are divided by it
// when they are ingested, so it takes effect on the next Reanalyze.
func (m *Music) SetSpeedMultiplier(v float64) {
	if v <= 0 {
		m.log.Log("config", "ignoring speed multiplier %v", v)
		return
	}
	m.speedMultiplier = v
}

// SpeedMultiplier returns the playback speed factor.
func (m *Music) SpeedMultiplier() float64 {
	return m.speedMultiplier
}

// SetToneMultiplier stores a pitch factor for the renderer. The model
// itself never applies it.
func (m *Music) SetToneMultiplier(v float64) {
	m.toneMultiplier = v
}

// ToneMultiplier returns the renderer pitch factor.
func (m *Music) ToneMultiplier() float64 {
	return m.toneMultiplier
}

// SetNotePolicy changes how CurrentNote resolves overlapping notes.
func (m *Music) SetNotePolicy(p NotePolicy) {
	m.policy = p
}

// NotePolicy returns the current duplicate resolution policy.
func (m *Music) NotePolicy() NotePolicy {
	return m.policy
}
