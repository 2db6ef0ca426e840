package sequencer

import "fmt"

// NotePolicy decides which single note represents a channel when several
// notes sound at once.
type NotePolicy int

const (
	// PolicyHighest picks the latest started note, then the louder one,
	// then the higher one.
	PolicyHighest NotePolicy = iota
	// PolicyBlend averages note number and velocity of all sounding notes.
	PolicyBlend
)

func (p NotePolicy) String() string {
	switch p {
	case PolicyHighest:
		return "highest"
	case PolicyBlend:
		return "blend"
	}
	return fmt.Sprintf("NotePolicy(%d)", int(p))
}

// ParseNotePolicy reads a policy name as written in config files and flags.
func ParseNotePolicy(s string) (NotePolicy, error) {
	switch s {
	case "", "highest":
		return PolicyHighest, nil
	case "blend":
		return PolicyBlend, nil
	}
	return PolicyHighest, fmt.Errorf("unknown note policy %q", s)
}

// Select reduces notes to one. It reports false for an empty set.
func (p NotePolicy) Select(notes []Note) (Note, bool) {
	if len(notes) == 0 {
		return Note{}, false
	}

	if p == PolicyBlend {
		sum := Note{StartTick: notes[0].StartTick}
		for _, n := range notes {
			sum.Number += n.Number
			sum.Velocity += n.Velocity
			if n.StartTick > sum.StartTick {
				sum.StartTick = n.StartTick
			}
		}
		return Note{
			Number:    sum.Number / len(notes),
			Velocity:  sum.Velocity / len(notes),
			StartTick: sum.StartTick,
		}, true
	}

	best := notes[0]
	for _, n := range notes[1:] {
		if outranks(n, best) {
			best = n
		}
	}
	return best, true
}

func outranks(a, b Note) bool {
	if a.StartTick != b.StartTick {
		return a.StartTick > b.StartTick
	}
	if a.Velocity != b.Velocity {
		return a.Velocity > b.Velocity
	}
	return a.Number > b.Number
}

// CurrentNote returns the note to render on an output channel. The index
// wraps modulo the channel count.
func (m *Music) CurrentNote(ch int) (Note, bool) {
	return m.policy.Select(m.channel(ch).notes.Notes())
}
