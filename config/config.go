package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"midimodel/debug"
	"midimodel/sequencer"
)

// Config is the main configuration structure
type Config struct {
	OutputChannels  int              `json:"outputChannels"`
	Blacklist       []int            `json:"blacklist,omitempty"`
	SpeedMultiplier float64          `json:"speedMultiplier"`
	ToneMultiplier  float64          `json:"toneMultiplier"`
	NotePolicy      string           `json:"notePolicy,omitempty"`
	Programs        map[string]int64 `json:"programs,omitempty"` // program id -> sustain ticks, negative = hold

	Palette    string `json:"palette,omitempty"`    // GIMP .gpl file, built-in palette if empty
	OutputPort string `json:"outputPort,omitempty"` // MIDI out to mirror playback to
	SoundFont  string `json:"soundFont,omitempty"`  // .sf2 used for the instrument listing
	DebugLog   string `json:"debugLog,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OutputChannels:  sequencer.SourceChannels,
		SpeedMultiplier: 1,
		ToneMultiplier:  1,
		NotePolicy:      sequencer.PolicyHighest.String(),
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midimodel"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, or returns defaults if it does not exist
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks fields that cannot be silently ignored later
func (c *Config) Validate() error {
	if _, err := sequencer.ParseNotePolicy(c.NotePolicy); err != nil {
		return err
	}
	if _, err := c.ProgramTable(); err != nil {
		return err
	}
	return nil
}

// ProgramTable returns the default program table with overrides applied
func (c *Config) ProgramTable() (sequencer.ProgramTable, error) {
	overrides := make(map[int]int64, len(c.Programs))
	for k, v := range c.Programs {
		id, err := strconv.Atoi(k)
		if err != nil || id < 0 || id > 127 {
			return nil, fmt.Errorf("invalid program id %q", k)
		}
		overrides[id] = v
	}
	return sequencer.DefaultPrograms().Merge(overrides), nil
}

// Options returns the model options described by the config
func (c *Config) Options(log *debug.Logger) ([]sequencer.Option, error) {
	policy, err := sequencer.ParseNotePolicy(c.NotePolicy)
	if err != nil {
		return nil, err
	}
	programs, err := c.ProgramTable()
	if err != nil {
		return nil, err
	}
	return []sequencer.Option{
		sequencer.WithLogger(log),
		sequencer.WithNotePolicy(policy),
		sequencer.WithPrograms(programs),
	}, nil
}

// Apply sets the pre-Reanalyze parameters on m. Invalid values are
// ignored by the model itself.
func (c *Config) Apply(m *sequencer.Music) {
	m.SetOutputChannelsCount(c.OutputChannels)
	m.SetBlacklistedChannels(c.Blacklist)
	m.SetSpeedMultiplier(c.SpeedMultiplier)
	m.SetToneMultiplier(c.ToneMultiplier)
}
