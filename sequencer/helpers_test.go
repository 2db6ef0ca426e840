package sequencer

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"midimodel/midi"
)

// at places a message on an absolute tick within a test track.
type at struct {
	tick uint32
	msg  []byte
}

// timeline builds an in-memory SMF from absolute-tick tracks (each sorted)
// and decodes it. tail extends every track past its last event.
func timeline(t *testing.T, resolution uint16, tail uint32, tracks ...[]at) *midi.Timeline {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)
	for _, evs := range tracks {
		var tr smf.Track
		var last uint32
		for _, e := range evs {
			tr.Add(e.tick-last, e.msg)
			last = e.tick
		}
		tr.Close(tail)
		if err := s.Add(tr); err != nil {
			t.Fatalf("add track: %v", err)
		}
	}
	tl, err := midi.FromSMF(s)
	if err != nil {
		t.Fatalf("from smf: %v", err)
	}
	return tl
}

func noteOn(tick uint32, ch, key, vel uint8) at {
	return at{tick, gomidi.NoteOn(ch, key, vel)}
}

func noteOff(tick uint32, ch, key uint8) at {
	return at{tick, gomidi.NoteOff(ch, key)}
}

func tempo(tick uint32, bpm float64) at {
	return at{tick, smf.MetaTempo(bpm)}
}

func analyzed(tl *midi.Timeline, opts ...Option) *Music {
	m := New(tl, opts...)
	m.Reanalyze()
	return m
}

func advance(t *testing.T, m *Music) {
	t.Helper()
	if err := m.Advance(); err != nil {
		t.Fatalf("advance at tick %d: %v", m.CurrentTick(), err)
	}
}

// advanceTo steps until the cursor reaches tick, failing if it overshoots.
func advanceTo(t *testing.T, m *Music, tick int64) {
	t.Helper()
	for m.CurrentTick() < tick {
		advance(t, m)
	}
	if m.CurrentTick() != tick {
		t.Fatalf("cursor skipped from below %d to %d", tick, m.CurrentTick())
	}
}
