package sequencer

// Advance moves the tick cursor forward by the smallest step that keeps
// channel state consistent. Ticks without any effect are skipped in bulk;
// the step ends on the first tick that changes state. A tick whose events
// would contradict the current state when skipped to (a tempo change, a
// note-on for a sounding note, a note-off for a silent one, a pending
// sustain expiry) is left for the next call, where it is visited alone.
// Every successful call advances the cursor by at least one tick.
func (m *Music) Advance() error {
	if !m.analyzed {
		return ErrNotAnalyzed
	}
	if !m.HasNext() {
		return ErrExhausted
	}

	m.currentTempo = m.nextTempo

	var delta int64
	for m.currentTick+delta < m.timeline.Length {
		delta++
		tick := m.currentTick + delta
		if delta > 1 && m.deferred(tick) {
			delta--
			break
		}
		if changes := m.apply(tick); changes > 0 {
			m.log.LogEvery(256, "advance", "tick %d (+%d): %d changes", tick, delta, changes)
			break
		}
	}

	m.currentTick += delta
	return nil
}

// deferred reports whether tick must not be reached by skipping over
// the ticks before it.
func (m *Music) deferred(tick int64) bool {
	for _, e := range m.system.events[tick] {
		if _, ok := e.(TempoEvent); ok {
			return true
		}
	}

	// Simulated note presence per table, so that events earlier in the
	// tick are taken into account by later ones (off then on, shared tables).
	var sim map[*NoteTable]map[uint8]bool
	present := func(t *NoteTable, n uint8) bool {
		if v, ok := sim[t][n]; ok {
			return v
		}
		return t.Has(n)
	}

	var programs map[*Channel]int
	for _, c := range m.channels {
		for _, e := range c.events[tick] {
			switch e := e.(type) {
			case NoteEvent:
				if e.On == present(c.notes, e.Note) {
					return true
				}
				if sim == nil {
					sim = make(map[*NoteTable]map[uint8]bool)
				}
				if sim[c.notes] == nil {
					sim[c.notes] = make(map[uint8]bool)
				}
				sim[c.notes][e.Note] = e.On
			case ProgramEvent:
				if programs == nil {
					programs = make(map[*Channel]int)
				}
				programs[c] = e.Program
			}
		}
	}

	for _, c := range m.channels {
		if c.alias >= 0 {
			continue
		}
		program, ok := programs[c]
		if !ok {
			program = c.Program
		}
		policy := m.programs.Lookup(program)
		if policy.Indefinite() {
			continue
		}
		for n, note := range c.notes.notes {
			if !present(c.notes, n) {
				continue
			}
			if policy.Expired(note.StartTick, tick) {
				return true
			}
		}
	}
	return false
}

// apply commits every event at tick, system channel first, then evicts
// expired notes. It returns how many state changes happened.
func (m *Music) apply(tick int64) int {
	changes := 0
	for _, e := range m.system.events[tick] {
		if m.applyEvent(m.system, tick, e) {
			changes++
		}
	}
	for _, c := range m.channels {
		for _, e := range c.events[tick] {
			if m.applyEvent(c, tick, e) {
				changes++
			}
		}
	}
	for _, c := range m.channels {
		if c.alias < 0 {
			changes += m.evict(c, tick)
		}
	}
	return changes
}

func (m *Music) applyEvent(c *Channel, tick int64, e Event) bool {
	switch e := e.(type) {
	case NoteEvent:
		if e.On {
			c.notes.Put(e.Note, e.Velocity, tick)
			return true
		}
		return c.notes.Remove(e.Note)
	case VolumeEvent:
		changed := c.Volume != e.Level
		c.Volume = e.Level
		return changed
	case PitchEvent:
		changed := c.Pitch != e.Bend
		c.Pitch = e.Bend
		return changed
	case ProgramEvent:
		changed := c.Program != e.Program
		c.Program = e.Program
		return changed
	case TempoEvent:
		// Takes effect at the start of the next step.
		changed := m.nextTempo != e.MicrosPerBeat
		m.nextTempo = e.MicrosPerBeat
		return changed
	}
	return false
}

// evict releases notes whose program sustain ran out before tick.
func (m *Music) evict(c *Channel, tick int64) int {
	policy := m.programs.Lookup(c.Program)
	if policy.Indefinite() {
		return 0
	}
	n := 0
	for key, note := range c.notes.notes {
		if policy.Expired(note.StartTick, tick) {
			delete(c.notes.notes, key)
			n++
		}
	}
	return n
}
