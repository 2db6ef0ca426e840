package sequencer

// Indefinite marks a program whose notes sound until an explicit note-off.
const Indefinite int64 = -1

// General MIDI programs with special sustain handling
const (
	ProgramPiano       = 0
	ProgramPickedBass  = 34
	ProgramTimpani     = 47
	timpaniSustainTick = 20
)

// ProgramPolicy says how long notes of a program sustain.
type ProgramPolicy struct {
	Program int
	Sustain int64 // ticks; negative means indefinite
}

// Indefinite reports whether notes live until their note-off.
func (p ProgramPolicy) Indefinite() bool {
	return p.Sustain < 0
}

// Expired reports whether a note started at start has outlived its sustain at tick.
func (p ProgramPolicy) Expired(start, tick int64) bool {
	return !p.Indefinite() && start+p.Sustain < tick
}

// ProgramTable maps program ids to sustain durations in ticks.
// Programs not in the table sustain indefinitely.
type ProgramTable map[int]int64

// DefaultPrograms returns the built-in table: decaying mallet and
// percussion programs auto-release, everything else is held.
func DefaultPrograms() ProgramTable {
	return ProgramTable{
		ProgramPiano:      Indefinite,
		ProgramPickedBass: Indefinite,
		ProgramTimpani:    timpaniSustainTick,
	}
}

// Lookup returns the policy for a program id.
func (t ProgramTable) Lookup(program int) ProgramPolicy {
	if d, ok := t[program]; ok {
		return ProgramPolicy{Program: program, Sustain: d}
	}
	return ProgramPolicy{Program: program, Sustain: Indefinite}
}

// Merge returns a copy of t with overrides applied on top.
func (t ProgramTable) Merge(overrides map[int]int64) ProgramTable {
	out := make(ProgramTable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
