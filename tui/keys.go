package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"midimodel/widgets"
)

type keyMap struct {
	Quit    key.Binding
	Pause   key.Binding
	Restart key.Binding
	ToneUp  key.Binding
	ToneDn  key.Binding
	Policy  key.Binding
	Help    key.Binding
}

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

var keys = keyMap{
	Quit:    binding("quit", "q", "ctrl+c"),
	Pause:   binding("pause", " ", "p"),
	Restart: binding("restart", "r"),
	ToneUp:  binding("tone up", "]"),
	ToneDn:  binding("tone down", "["),
	Policy:  binding("note policy", "b"),
	Help:    binding("help", "?", "h"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Restart, k.ToneDn, k.ToneUp, k.Policy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Restart, k.Quit},
		{k.ToneDn, k.ToneUp, k.Policy, k.Help},
	}
}

// sections lays FullHelp out for widgets.RenderKeyHelp.
func (k keyMap) sections() []widgets.KeySection {
	titles := []string{"Playback", "Output"}
	var out []widgets.KeySection
	for i, group := range k.FullHelp() {
		sec := widgets.KeySection{Title: titles[i]}
		for _, b := range group {
			h := b.Help()
			if h.Key == " " {
				h.Key = "space"
			}
			sec.Keys = append(sec.Keys, widgets.KeyBinding{Key: h.Key, Desc: h.Desc})
		}
		out = append(out, sec)
	}
	return out
}
