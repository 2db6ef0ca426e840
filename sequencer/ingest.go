package sequencer

import (
	"math"

	"gitlab.com/gomidi/midi/v2/smf"

	"midimodel/midi"
)

// Reanalyze ingests the timeline into per-channel buckets using the
// current channel count, blacklist and speed multiplier, then rewinds
// the tick cursor. It must complete before Advance or any query.
func (m *Music) Reanalyze() {
	m.system = newChannel()
	m.channels = make([]*Channel, m.channelsCount)
	for ch := range m.channels {
		m.channels[ch] = newChannel()
	}

	m.listInstruments()

	for _, track := range m.timeline.Tracks {
		for _, msg := range track {
			if src, ok := msg.Channel(); ok {
				m.ingestVoice(int(src), msg)
			} else if msg.Msg.IsMeta() {
				m.ingestMeta(msg)
			} else {
				m.log.Log("ingest", "tick %d: unknown message %s", msg.Tick, msg.Msg)
			}
		}
	}

	m.backfillSilent()

	m.currentTick = -1
	m.currentTempo = DefaultTempo / m.speedMultiplier
	m.nextTempo = m.currentTempo
	m.analyzed = true
}

// compact maps a source channel onto an output bucket: blacklisted
// channels below it are squeezed out, then the result wraps.
func (m *Music) compact(src int) int {
	shifted := src
	for j := 0; j < src; j++ {
		if m.blacklisted[j] {
			shifted--
		}
	}
	return shifted % len(m.channels)
}

func (m *Music) ingestVoice(src int, msg midi.Message) {
	if m.blacklisted[src] {
		return
	}
	buf := m.compact(src)
	target := m.channels[buf]

	var ch, key, vel, cc, val, prog uint8
	var wheel uint16
	raw := msg.Msg
	switch {
	case raw.GetNoteStart(&ch, &key, &vel):
		target.add(msg.Tick, NoteEvent{On: true, Note: key, Velocity: vel})

	case raw.GetNoteEnd(&ch, &key):
		target.add(msg.Tick, NoteEvent{Note: key})

	case raw.GetControlChange(&ch, &cc, &val):
		switch cc {
		case midi.CCMainVolume, midi.CCExpression:
			target.add(msg.Tick, VolumeEvent{Level: float64(val) / 127})
			m.log.Log("ingest", "[channel %d buf.%d] (CC%02d) volume %.3f", src, buf, cc, float64(val)/127)
		case midi.CCBankSelect, midi.CCBankSelectLSB:
			m.log.Log("ingest", "[channel %d buf.%d] (CC%02d) bank select not implemented", src, buf, cc)
		default:
			m.log.Log("ingest", "[channel %d buf.%d] control change %d", src, buf, cc)
		}

	case raw.GetProgramChange(&ch, &prog):
		target.add(msg.Tick, ProgramEvent{Program: int(prog)})
		m.log.Log("ingest", "[channel %d buf.%d] program %d", src, buf, prog)

	case raw.GetPitchBend(&ch, nil, &wheel):
		bend := pitchBend(wheel)
		target.add(msg.Tick, PitchEvent{Bend: bend})
		m.log.Log("ingest", "[channel %d buf.%d] pitch wheel %.4f", src, buf, bend)

	default:
		m.log.Log("ingest", "[channel %d buf.%d] unhandled %s", src, buf, raw.Type())
	}
}

// pitchBend converts the absolute 14-bit wheel position to a factor,
// 1.0 centered.
func pitchBend(abs uint16) float64 {
	return 1 + (float64(abs)-8192)/8192
}

func (m *Music) ingestMeta(msg midi.Message) {
	var (
		bpm                 float64
		text                string
		num, denom, cpt, dq uint8
		key                 smf.Key
	)
	raw := msg.Msg
	switch {
	case raw.GetMetaTempo(&bpm):
		if bpm <= 0 || math.IsInf(bpm, 0) {
			m.log.Log("ingest", "tick %d: malformed tempo %v", msg.Tick, bpm)
			return
		}
		us := math.Round(60000000 / bpm)
		m.log.Log("ingest", "tick %d: tempo change %.0f", msg.Tick, us)
		m.system.add(msg.Tick, TempoEvent{MicrosPerBeat: us / m.speedMultiplier})
	case raw.Is(smf.MetaTempoMsg):
		m.log.Log("ingest", "tick %d: malformed tempo %s", msg.Tick, raw)
	case raw.GetMetaText(&text):
		m.log.Log("ingest", "title: %s", text)
	case raw.GetMetaTrackName(&text):
		m.log.Log("ingest", "track name: %s", text)
	case raw.Is(smf.MetaEndOfTrackMsg):
		m.log.Log("ingest", "end of track %d at tick %d", msg.Track, msg.Tick)
	case raw.GetMetaTimeSig(&num, &denom, &cpt, &dq):
		m.log.Log("ingest", "time signature: %d/%d", num, denom)
	case raw.GetMetaKey(&key):
		m.log.Log("ingest", "key signature: %s", key)
	default:
		m.log.Log("ingest", "unhandled meta %s", raw.Type())
	}
}

// backfillSilent points every channel without notes at the note table of
// a populated one, round-robin, so every output channel has something to
// render.
func (m *Music) backfillSilent() {
	n := len(m.channels)
	last := -1
	for ch, c := range m.channels {
		if !c.Silent() {
			continue
		}
		for i := 1; i <= n; i++ {
			donor := (last + i) % n
			if m.channels[donor].Silent() {
				continue
			}
			c.notes = m.channels[donor].notes
			c.alias = donor
			last = donor
			m.log.Log("remap", "using notes of channel %d on channel %d", donor, ch)
			break
		}
	}
}

func (m *Music) listInstruments() {
	if m.instruments == nil || !m.log.Enabled() {
		return
	}
	names, err := m.instruments.Instruments()
	if err != nil {
		m.log.Log("programs", "instrument listing failed: %v", err)
		return
	}
	m.log.Log("programs", "there are %d instruments", len(names))
	for _, name := range names {
		m.log.Log("programs", "%s", name)
	}
}
