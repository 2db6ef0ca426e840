package midi

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// Controllers the engine cares about
const (
	CCBankSelect    uint8 = 0
	CCMainVolume    uint8 = 7
	CCExpression    uint8 = 11
	CCBankSelectLSB uint8 = 32
)

// Message is one decoded SMF event placed on the absolute tick timeline.
// Use the smf.Message getters on Msg to read its contents.
type Message struct {
	Tick  int64
	Track int
	Msg   smf.Message
}

// Channel returns the source channel (0-15) of a channel message.
func (m Message) Channel() (uint8, bool) {
	var ch uint8
	ok := m.Msg.GetChannel(&ch)
	return ch, ok
}
