package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"midimodel/config"
	"midimodel/debug"
	"midimodel/midi"
	"midimodel/output"
	"midimodel/sequencer"
	"midimodel/soundbank"
	"midimodel/theme"
	"midimodel/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("midimodel", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default ~/.config/midimodel/config.json)")
	channels := fs.Int("channels", 0, "number of output channels")
	blacklist := fs.String("blacklist", "", "comma separated source channels to drop (0-15)")
	speed := fs.Float64("speed", 0, "speed multiplier")
	tone := fs.Float64("tone", 0, "tone multiplier")
	policy := fs.String("policy", "", "note policy: highest or blend")
	port := fs.String("port", "", "MIDI output port to mirror playback to")
	sf2 := fs.String("sf2", "", "SoundFont whose presets are listed in the debug log")
	palette := fs.String("palette", "", "GIMP .gpl palette")
	debugPath := fs.String("debug", "", "write a debug log to this file")
	noColor := fs.Bool("no-color", false, "disable colors")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: midimodel [flags] file.mid")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one MIDI file")
	}

	// Load config, then let explicit flags win
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "channels":
			cfg.OutputChannels = *channels
		case "blacklist":
			cfg.Blacklist, flagErr = parseChannels(*blacklist)
		case "speed":
			cfg.SpeedMultiplier = *speed
		case "tone":
			cfg.ToneMultiplier = *tone
		case "policy":
			cfg.NotePolicy = *policy
		case "port":
			cfg.OutputPort = *port
		case "sf2":
			cfg.SoundFont = *sf2
		case "palette":
			cfg.Palette = *palette
		case "debug":
			cfg.DebugLog = *debugPath
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var log *debug.Logger
	if cfg.DebugLog != "" {
		if log, err = debug.Open(cfg.DebugLog); err != nil {
			return err
		}
		defer log.Close()
	}

	tl, err := midi.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	opts, err := cfg.Options(log)
	if err != nil {
		return err
	}
	if cfg.SoundFont != "" {
		opts = append(opts, sequencer.WithInstruments(soundbank.File(cfg.SoundFont)))
	}
	music := sequencer.New(tl, opts...)
	cfg.Apply(music)
	music.Reanalyze()

	var follower *output.Follower
	if cfg.OutputPort != "" {
		out, err := midi.OpenOutput(cfg.OutputPort)
		if err != nil {
			return err
		}
		defer midi.CloseDriver()
		defer out.Close()
		follower = output.NewFollower(out.Send, log)
		log.Log("output", "mirroring to %s", out.Name())
	}

	theme.UsePlainColors(*noColor)
	pal, err := theme.LoadOrDefault(cfg.Palette)
	if err != nil {
		return err
	}

	m := tui.NewModel(music, theme.New(pal), follower, log)
	m.Title = fs.Arg(0)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// parseChannels reads "1,9, 10" into channel numbers
func parseChannels(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid channel %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
