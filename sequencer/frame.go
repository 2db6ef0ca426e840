package sequencer

// ChannelFrame is what one output channel renders at the current tick.
type ChannelFrame struct {
	Note     Note
	Sounding bool
	Active   int // number of sounding notes
	Volume   float64
	Pitch    float64
	Program  int
	Alias    int
}

// Frame is a snapshot of every output channel at one tick.
type Frame struct {
	Tick     int64
	Tempo    float64 // BPM
	Tone     float64
	Channels []ChannelFrame
}

// Snapshot captures the renderable state of all output channels.
func (m *Music) Snapshot() Frame {
	m.mustAnalyzed()
	f := Frame{
		Tick:     m.currentTick,
		Tempo:    m.CurrentTempo(),
		Tone:     m.toneMultiplier,
		Channels: make([]ChannelFrame, len(m.channels)),
	}
	for i, c := range m.channels {
		note, ok := m.policy.Select(c.notes.Notes())
		f.Channels[i] = ChannelFrame{
			Note:     note,
			Sounding: ok,
			Active:   c.notes.Len(),
			Volume:   c.Volume,
			Pitch:    c.Pitch,
			Program:  c.Program,
			Alias:    c.alias,
		}
	}
	return f
}
