package output

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"midimodel/midi"
)

// delta is a message placed relative to the one before it.
type delta struct {
	ticks uint32
	msg   []byte
}

func buildTimeline(t *testing.T, evs ...delta) *midi.Timeline {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	var tr smf.Track
	for _, e := range evs {
		tr.Add(e.ticks, e.msg)
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatalf("add track: %v", err)
	}
	tl, err := midi.FromSMF(s)
	if err != nil {
		t.Fatalf("from smf: %v", err)
	}
	return tl
}

// testTimeline plays 60 over ticks 0-10, then 62 over 15-25.
func testTimeline(t *testing.T) *midi.Timeline {
	return buildTimeline(t,
		delta{0, gomidi.NoteOn(0, 60, 100)},
		delta{10, gomidi.NoteOff(0, 60)},
		delta{5, gomidi.NoteOn(0, 62, 100)},
		delta{10, gomidi.NoteOff(0, 62)},
	)
}
