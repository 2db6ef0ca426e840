package sequencer

import "fmt"

// Event is one immutable musical event bucketed on a channel at a tick.
// The set of implementations is closed: NoteEvent, VolumeEvent,
// PitchEvent, ProgramEvent and TempoEvent.
type Event interface {
	event()
	String() string
}

// NoteEvent starts (On) or releases a note.
type NoteEvent struct {
	On       bool
	Note     uint8
	Velocity uint8
}

// VolumeEvent sets the channel volume, 0.0 to 1.0.
type VolumeEvent struct {
	Level float64
}

// PitchEvent sets the channel pitch bend; 1.0 is no bend.
type PitchEvent struct {
	Bend float64
}

// ProgramEvent selects the channel instrument.
type ProgramEvent struct {
	Program int
}

// TempoEvent changes the tempo, in microseconds per beat.
type TempoEvent struct {
	MicrosPerBeat float64
}

func (NoteEvent) event()    {}
func (VolumeEvent) event()  {}
func (PitchEvent) event()   {}
func (ProgramEvent) event() {}
func (TempoEvent) event()   {}

func (e NoteEvent) String() string {
	if e.On {
		return fmt.Sprintf("note-on %d vel %d", e.Note, e.Velocity)
	}
	return fmt.Sprintf("note-off %d", e.Note)
}

func (e VolumeEvent) String() string  { return fmt.Sprintf("volume %.3f", e.Level) }
func (e PitchEvent) String() string   { return fmt.Sprintf("pitch %.4f", e.Bend) }
func (e ProgramEvent) String() string { return fmt.Sprintf("program %d", e.Program) }
func (e TempoEvent) String() string   { return fmt.Sprintf("tempo %.0fus/beat", e.MicrosPerBeat) }
