package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"midimodel/midi"
	"midimodel/sequencer"
	"midimodel/soundbank"
	"midimodel/widgets"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "ports":
		err = listPorts(os.Stdout)
	case "info":
		err = withFile(func(path string) error { return info(os.Stdout, path) })
	case "dump":
		err = withFile(func(path string) error { return dump(os.Stdout, path, channelsArg()) })
	case "programs":
		err = withFile(func(path string) error { return programs(os.Stdout, path) })
	case "note":
		err = withFile(func(port string) error { return testNote(os.Stdout, port) })
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI model tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ports                   - List MIDI output ports")
	fmt.Println("  info FILE.mid           - Show resolution, length and channels")
	fmt.Println("  dump FILE.mid [N]       - Step through the file on N channels, one JSON frame per line")
	fmt.Println("  programs FILE.sf2       - List SoundFont presets")
	fmt.Println("  note PORT               - Play middle C on a port")
}

func withFile(fn func(string) error) error {
	if len(os.Args) < 3 {
		usage()
		return fmt.Errorf("missing argument")
	}
	return fn(os.Args[2])
}

func channelsArg() int {
	if len(os.Args) < 4 {
		return sequencer.SourceChannels
	}
	n, err := strconv.Atoi(os.Args[3])
	if err != nil {
		return sequencer.SourceChannels
	}
	return n
}

func listPorts(w io.Writer) error {
	fmt.Fprintln(w, "=== MIDI Output Ports ===")
	fmt.Fprintln(w, "(waiting up to 3 seconds...)")
	defer midi.CloseDriver()

	ports, err := midi.OutPorts(3 * time.Second)
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for i, p := range ports {
		fmt.Fprintf(w, "  %d: %s\n", i, p)
	}
	return nil
}

func info(w io.Writer, path string) error {
	tl, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "file:       %s\n", path)
	fmt.Fprintf(w, "resolution: %d ticks/beat\n", tl.Resolution)
	fmt.Fprintf(w, "length:     %d ticks\n", tl.Length)
	fmt.Fprintf(w, "tracks:     %d\n", len(tl.Tracks))
	fmt.Fprintf(w, "messages:   %d\n", tl.Count())
	fmt.Fprint(w, "channels:  ")
	for ch, used := range tl.Channels() {
		if used {
			fmt.Fprintf(w, " %d", ch)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// dumpFrame is one JSON line of dump output.
type dumpFrame struct {
	Tick     int64         `json:"tick"`
	Tempo    float64       `json:"bpm"`
	Channels []dumpChannel `json:"channels"`
}

type dumpChannel struct {
	Note     string  `json:"note,omitempty"`
	Velocity int     `json:"velocity,omitempty"`
	Volume   float64 `json:"volume"`
	Pitch    float64 `json:"pitch"`
	Program  int     `json:"program"`
}

func dump(w io.Writer, path string, channels int) error {
	tl, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	music := sequencer.New(tl)
	music.SetOutputChannelsCount(channels)
	music.Reanalyze()

	enc := json.NewEncoder(w)
	for music.HasNext() {
		if err := music.Advance(); err != nil {
			return err
		}
		f := music.Snapshot()
		out := dumpFrame{Tick: f.Tick, Tempo: f.Tempo, Channels: make([]dumpChannel, len(f.Channels))}
		for i, c := range f.Channels {
			out.Channels[i] = dumpChannel{Volume: c.Volume, Pitch: c.Pitch, Program: c.Program}
			if c.Sounding {
				out.Channels[i].Note = widgets.NoteName(c.Note.Number)
				out.Channels[i].Velocity = c.Note.Velocity
			}
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func programs(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	presets, err := soundbank.Read(f)
	if err != nil {
		return err
	}
	for _, p := range presets {
		fmt.Fprintln(w, p)
	}
	return nil
}

func testNote(w io.Writer, port string) error {
	defer midi.CloseDriver()
	out, err := midi.OpenOutput(port)
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Fprintf(w, "Playing C4 on %s\n", out.Name())
	if err := out.Send(gomidi.NoteOn(0, 60, 100)); err != nil {
		return err
	}
	time.Sleep(500 * time.Millisecond)
	return out.Send(gomidi.NoteOff(0, 60))
}
