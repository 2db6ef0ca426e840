// Package soundbank lists the instruments of a SoundFont for diagnostics.
package soundbank

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// Preset is one instrument of a sound bank.
type Preset struct {
	Name    string
	Program int
	Bank    int
}

func (p Preset) String() string {
	return fmt.Sprintf("%s >> %d::%d", p.Name, p.Program, p.Bank)
}

// Read loads the presets of a SoundFont, ordered by bank then program.
func Read(r io.Reader) ([]Preset, error) {
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("read soundfont: %w", err)
	}

	presets := make([]Preset, 0, len(sf.Presets))
	for _, p := range sf.Presets {
		presets = append(presets, Preset{
			Name:    p.Name,
			Program: int(p.PatchNumber),
			Bank:    int(p.BankNumber),
		})
	}
	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Bank != presets[j].Bank {
			return presets[i].Bank < presets[j].Bank
		}
		return presets[i].Program < presets[j].Program
	})
	return presets, nil
}

// File lists a SoundFont on disk lazily; it satisfies
// sequencer.InstrumentLister.
type File string

// Instruments reads the file and formats each preset.
func (f File) Instruments() ([]string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("open soundfont: %w", err)
	}
	presets, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.String()
	}
	return names, nil
}
