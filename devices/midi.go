// Package devices enumerates and opens the platform audio and MIDI
// devices the engine's sink and MIDI-input nodes talk to, backed by
// portmidi and portaudio.
package devices

import (
	"fmt"
	"time"

	"github.com/rakyll/portmidi"

	"github.com/shaban/siggraph/nodes"
)

// MIDIDevice describes one portmidi device slot.
type MIDIDevice struct {
	ID       int
	Name     string
	IsInput  bool
	IsOutput bool
}

func (d MIDIDevice) CanInput() bool  { return d.IsInput }
func (d MIDIDevice) CanOutput() bool { return d.IsOutput }

// MIDIDevices lists every device portmidi knows about.
func MIDIDevices() []MIDIDevice {
	n := portmidi.CountDevices()
	out := make([]MIDIDevice, 0, n)
	for i := 0; i < n; i++ {
		info := portmidi.Info(portmidi.DeviceID(i))
		if info == nil {
			continue
		}
		out = append(out, MIDIDevice{
			ID: i, Name: info.Name,
			IsInput:  info.IsInputAvailable,
			IsOutput: info.IsOutputAvailable,
		})
	}
	return out
}

// Inputs filters a device list down to those that accept MIDI input.
func Inputs(all []MIDIDevice) []MIDIDevice {
	var out []MIDIDevice
	for _, d := range all {
		if d.CanInput() {
			out = append(out, d)
		}
	}
	return out
}

// Outputs filters a device list down to those that accept MIDI output.
func Outputs(all []MIDIDevice) []MIDIDevice {
	var out []MIDIDevice
	for _, d := range all {
		if d.CanOutput() {
			out = append(out, d)
		}
	}
	return out
}

// PortMidiSource implements nodes.MidiSource over portmidi input
// devices, letting MidiInputNode stay free of any device library
// import.
type PortMidiSource struct {
	initialized bool
}

// NewPortMidiSource initializes the portmidi session. Call Close when
// no MidiInputNode needs it anymore.
func NewPortMidiSource() (*PortMidiSource, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portmidi: %w", err)
	}
	return &PortMidiSource{initialized: true}, nil
}

func (s *PortMidiSource) Ports() []string {
	ins := Inputs(MIDIDevices())
	names := make([]string, len(ins))
	for i, d := range ins {
		names[i] = d.Name
	}
	return names
}

func (s *PortMidiSource) Open(index int) (nodes.MidiPort, error) {
	ins := Inputs(MIDIDevices())
	if index < 0 || index >= len(ins) {
		return nil, fmt.Errorf("midi input index %d out of range", index)
	}
	dev := ins[index]
	stream, err := portmidi.NewInputStream(portmidi.DeviceID(dev.ID), 1024)
	if err != nil {
		return nil, fmt.Errorf("open midi input %s: %w", dev.Name, err)
	}
	return &portMidiPort{name: dev.Name, stream: stream, last: time.Now()}, nil
}

// Close terminates the portmidi session. Safe to call once all opened
// ports have been closed.
func (s *PortMidiSource) Close() {
	if !s.initialized {
		return
	}
	portmidi.Terminate()
	s.initialized = false
}

type portMidiPort struct {
	name   string
	stream *portmidi.Stream
	last   time.Time
}

func (p *portMidiPort) Name() string { return p.name }

func (p *portMidiPort) Poll() ([]nodes.MidiEvent, error) {
	events, err := p.stream.Read(1024)
	if err != nil {
		return nil, err
	}
	out := make([]nodes.MidiEvent, 0, len(events))
	now := time.Now()
	for _, e := range events {
		dt := now.Sub(p.last).Seconds()
		p.last = now
		out = append(out, nodes.MidiEvent{
			Bytes: []byte{byte(e.Status), byte(e.Data1), byte(e.Data2)},
			DT:    dt,
		})
	}
	return out, nil
}

func (p *portMidiPort) Close() error { return p.stream.Close() }
