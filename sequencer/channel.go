package sequencer

// Note is a sounding note: the active-note record and the value
// returned by the current-note selector.
type Note struct {
	Number    int
	Velocity  int
	StartTick int64
}

// NoteTable holds the active notes of a channel, at most one per note number.
// Silent channels share their donor's table by pointer.
type NoteTable struct {
	notes map[uint8]Note
}

func newNoteTable() *NoteTable {
	return &NoteTable{notes: make(map[uint8]Note)}
}

// Has reports whether the note number is sounding.
func (t *NoteTable) Has(n uint8) bool {
	_, ok := t.notes[n]
	return ok
}

// Put starts (or restarts) a note.
func (t *NoteTable) Put(n uint8, velocity uint8, tick int64) {
	t.notes[n] = Note{Number: int(n), Velocity: int(velocity), StartTick: tick}
}

// Remove releases a note and reports whether it was sounding.
func (t *NoteTable) Remove(n uint8) bool {
	if _, ok := t.notes[n]; !ok {
		return false
	}
	delete(t.notes, n)
	return true
}

// Len returns the number of sounding notes.
func (t *NoteTable) Len() int {
	return len(t.notes)
}

// Notes returns a copy of the sounding notes in no particular order.
func (t *NoteTable) Notes() []Note {
	out := make([]Note, 0, len(t.notes))
	for _, n := range t.notes {
		out = append(out, n)
	}
	return out
}

// Channel is the replay state of one output channel (or the system channel).
type Channel struct {
	events   map[int64][]Event
	notes    *NoteTable
	alias    int  // donor channel whose notes are shared, -1 if own
	hasNotes bool // any NoteEvent bucketed during ingestion

	Volume  float64
	Pitch   float64
	Program int
}

func newChannel() *Channel {
	return &Channel{
		events: make(map[int64][]Event),
		notes:  newNoteTable(),
		alias:  -1,
		Volume: 1.0,
		Pitch:  1.0,
	}
}

func (c *Channel) add(tick int64, e Event) {
	c.events[tick] = append(c.events[tick], e)
	if _, ok := e.(NoteEvent); ok {
		c.hasNotes = true
	}
}

// Silent reports whether no note was ever bucketed on the channel.
func (c *Channel) Silent() bool {
	return !c.hasNotes
}

// Alias returns the donor channel index, or -1 if the channel owns its notes.
func (c *Channel) Alias() int {
	return c.alias
}

// EventsAt returns the events bucketed at tick, in source order.
func (c *Channel) EventsAt(tick int64) []Event {
	return c.events[tick]
}
