package config

import (
	"os"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"midimodel/midi"
	"midimodel/sequencer"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputChannels != 16 || cfg.SpeedMultiplier != 1 || cfg.NotePolicy != "highest" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.OutputChannels = 4
	cfg.Blacklist = []int{9}
	cfg.NotePolicy = "blend"
	cfg.Programs = map[string]int64{"12": 30}
	cfg.OutputPort = "IAC Driver"
	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.OutputChannels != 4 || len(got.Blacklist) != 1 || got.NotePolicy != "blend" || got.OutputPort != "IAC Driver" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	table, err := got.ProgramTable()
	if err != nil {
		t.Fatalf("program table: %v", err)
	}
	if table.Lookup(12).Sustain != 30 || table.Lookup(sequencer.ProgramTimpani).Sustain != 20 {
		t.Fatalf("program table = %v", table)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"outputChannels": 8}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OutputChannels != 8 || cfg.SpeedMultiplier != 1 || cfg.ToneMultiplier != 1 {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	tests := map[string]string{
		"bad json":     `{"outputChannels": `,
		"bad policy":   `{"notePolicy": "loudest"}`,
		"bad program":  `{"programs": {"piano": 3}}`,
		"out of range": `{"programs": {"200": 3}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Fatalf("expected error for %s", body)
			}
		})
	}
}

func TestApplyConfiguresModel(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(5, 60, 100))
	tr.Add(0, gomidi.NoteOn(6, 61, 100))
	tr.Add(0, gomidi.NoteOn(7, 62, 100))
	tr.Close(10)
	if err := s.Add(tr); err != nil {
		t.Fatalf("add: %v", err)
	}
	tl, err := midi.FromSMF(s)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}

	cfg := DefaultConfig()
	cfg.OutputChannels = 2
	cfg.Blacklist = []int{6}
	cfg.NotePolicy = "blend"
	opts, err := cfg.Options(nil)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	m := sequencer.New(tl, opts...)
	cfg.Apply(m)
	m.Reanalyze()
	if err := m.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// source 5 -> 5%2 = 1, source 7 -> (7-1)%2 = 0
	if n, _ := m.CurrentNote(1); n.Number != 60 {
		t.Fatalf("channel 1 = %+v, want 60", n)
	}
	if n, _ := m.CurrentNote(0); n.Number != 62 {
		t.Fatalf("channel 0 = %+v, want 62", n)
	}
	if m.NotePolicy() != sequencer.PolicyBlend || m.ChannelsCount() != 2 {
		t.Fatalf("policy %v count %d", m.NotePolicy(), m.ChannelsCount())
	}
}
