package midi

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrSMPTE is returned for files timed in SMPTE frames instead of ticks per beat.
var ErrSMPTE = errors.New("midi: SMPTE time format not supported")

// Timeline is a decoded MIDI sequence: every event of every track placed
// on an absolute tick, plus the global sequence properties.
type Timeline struct {
	Tracks     [][]Message
	Resolution uint16 // ticks per beat
	Length     int64  // last tick of the longest track
}

// ReadFile decodes the Standard MIDI File at path.
func ReadFile(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open midi file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a Standard MIDI File from r.
func Read(r io.Reader) (*Timeline, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("decode smf: %w", err)
	}
	return FromSMF(s)
}

// FromSMF converts an already decoded SMF into a Timeline.
func FromSMF(s *smf.SMF) (*Timeline, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrSMPTE
	}

	tl := &Timeline{
		Tracks:     make([][]Message, 0, len(s.Tracks)),
		Resolution: uint16(ticks),
	}

	for i, track := range s.Tracks {
		var abs int64
		msgs := make([]Message, 0, len(track))
		for _, ev := range track {
			abs += int64(ev.Delta)
			msgs = append(msgs, Message{Tick: abs, Track: i, Msg: ev.Message})
		}
		if abs > tl.Length {
			tl.Length = abs
		}
		tl.Tracks = append(tl.Tracks, msgs)
	}

	return tl, nil
}

// Count returns the total number of messages across all tracks.
func (tl *Timeline) Count() int {
	n := 0
	for _, t := range tl.Tracks {
		n += len(t)
	}
	return n
}

// Channels returns which source channels carry channel messages.
func (tl *Timeline) Channels() [16]bool {
	var used [16]bool
	for _, t := range tl.Tracks {
		for _, m := range t {
			if ch, ok := m.Channel(); ok {
				used[ch] = true
			}
		}
	}
	return used
}
