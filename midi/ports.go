package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrNoPort is returned when no output port matches the requested name.
var ErrNoPort = errors.New("midi: output port not found")

// ErrPortTimeout is returned when the MIDI backend does not answer.
var ErrPortTimeout = errors.New("midi: timed out listing ports")

// OutPorts lists output port names. CoreMIDI can hang, so the query runs
// in a goroutine and gives up after timeout.
func OutPorts(timeout time.Duration) ([]string, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		names := make([]string, 0, len(outs))
		for _, p := range outs {
			names = append(names, p.String())
		}
		return names, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, ErrPortTimeout
	}
}

// Output is an open MIDI output port.
type Output struct {
	port drivers.Out
	send func(gomidi.Message) error
}

// OpenOutput opens the first output port whose name contains name
// (case-insensitive).
func OpenOutput(name string) (*Output, error) {
	want := strings.ToLower(name)
	for _, port := range gomidi.GetOutPorts() {
		if !strings.Contains(strings.ToLower(port.String()), want) {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open output %q: %w", port.String(), err)
		}
		return &Output{port: port, send: send}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
}

// Name returns the port name.
func (o *Output) Name() string {
	return o.port.String()
}

// Send writes one message to the port.
func (o *Output) Send(msg gomidi.Message) error {
	return o.send(msg)
}

// Close closes the port.
func (o *Output) Close() error {
	return o.port.Close()
}

// CloseDriver releases the MIDI backend. Call once at exit.
func CloseDriver() {
	gomidi.CloseDriver()
}
