// Package output mirrors the playback model onto a live MIDI port.
package output

import (
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"

	"midimodel/debug"
	"midimodel/sequencer"
)

// Follower turns successive frames into the MIDI messages that move a
// synth from the previous frame to the next one. Output channels beyond
// 16 fold onto the 16 MIDI channels.
type Follower struct {
	send func(gomidi.Message) error
	log  *debug.Logger
	last []voice
}

// voice is what was last sent on one MIDI channel.
type voice struct {
	key      int // -1 when nothing sounds
	velocity int
	start    int64
	volume   int
	bend     int16
	program  int
}

func silent() voice {
	return voice{key: -1, volume: -1, bend: math.MinInt16, program: -1}
}

// NewFollower sends through send, typically (*midi.Output).Send.
func NewFollower(send func(gomidi.Message) error, log *debug.Logger) *Follower {
	return &Follower{send: send, log: log}
}

// Render emits the differences between the previous frame and f.
func (fl *Follower) Render(f sequencer.Frame) error {
	shift := transpose(f.Tone)
	for ch, c := range f.Channels {
		if ch >= 16 {
			break
		}
		for len(fl.last) <= ch {
			fl.last = append(fl.last, silent())
		}
		prev := fl.last[ch]
		next := voice{
			key:      -1,
			velocity: c.Note.Velocity,
			volume:   int(math.Round(c.Volume * 127)),
			bend:     bend(c.Pitch),
			program:  c.Program,
		}
		if c.Sounding {
			next.key = clamp(c.Note.Number+shift, 0, 127)
			next.start = c.Note.StartTick
		}

		mc := uint8(ch)
		if next.program != prev.program {
			if err := fl.emit(gomidi.ProgramChange(mc, uint8(clamp(next.program, 0, 127)))); err != nil {
				return err
			}
		}
		if next.volume != prev.volume {
			if err := fl.emit(gomidi.ControlChange(mc, 7, uint8(clamp(next.volume, 0, 127)))); err != nil {
				return err
			}
		}
		if next.bend != prev.bend {
			if err := fl.emit(gomidi.Pitchbend(mc, next.bend)); err != nil {
				return err
			}
		}
		retrigger := next.key != prev.key || next.velocity != prev.velocity || next.start != prev.start
		if prev.key >= 0 && retrigger {
			if err := fl.emit(gomidi.NoteOff(mc, uint8(prev.key))); err != nil {
				return err
			}
			prev.key = -1
		}
		if next.key >= 0 && next.key != prev.key {
			if err := fl.emit(gomidi.NoteOn(mc, uint8(next.key), uint8(clamp(next.velocity, 1, 127)))); err != nil {
				return err
			}
		}
		fl.last[ch] = next
	}
	return nil
}

// Silence releases every note still sounding.
func (fl *Follower) Silence() error {
	for ch, v := range fl.last {
		if v.key < 0 {
			continue
		}
		if err := fl.emit(gomidi.NoteOff(uint8(ch), uint8(v.key))); err != nil {
			return err
		}
		fl.last[ch].key = -1
	}
	return nil
}

func (fl *Follower) emit(msg gomidi.Message) error {
	fl.log.Log("follow", "%s", msg)
	return fl.send(msg)
}

// transpose converts a frequency factor into whole semitones.
func transpose(tone float64) int {
	if tone <= 0 {
		return 0
	}
	return int(math.Round(12 * math.Log2(tone)))
}

// bend maps the model's pitch factor (1.0 centered) to a signed wheel value.
func bend(p float64) int16 {
	v := math.Round((p - 1) * 8192)
	return int16(max(-8192, min(8191, v)))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
