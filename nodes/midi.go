package nodes

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

// MidiPort abstracts a platform MIDI-in handle so MidiInputNode does not
// depend on a concrete backend; the default implementation is backed by
// portmidi (see devices.PortMidiSource).
type MidiPort interface {
	Name() string
	// Poll returns pending events accumulated since the last call, each
	// as raw bytes plus the time in seconds since the previous event.
	Poll() ([]MidiEvent, error)
	Close() error
}

// MidiEvent is one raw message pulled off a MidiPort.
type MidiEvent struct {
	Bytes []byte
	DT    float64
}

// MidiSource opens a MidiPort by device index; devices.PortMidiSource
// implements this.
type MidiSource interface {
	Ports() []string
	Open(index int) (MidiPort, error)
}

// MidiInputNode polls a platform MIDI-in port and deposits its messages
// into a MIDI output buffer at sample offset floor(accumulated arrival
// time × sample rate) modulo the block size.
type MidiInputNode struct {
	*node.BaseNode
	portIdx *port.DataInput
	out     *port.MidiOutput

	source MidiSource
	handle MidiPort
	opened int

	accumulated float64
}

// NewMidiInputNode constructs a MidiInputNode against the given device
// source. source may be nil in tests that never render.
func NewMidiInputNode(name string, source MidiSource) *MidiInputNode {
	bn := node.NewBaseNode(name, "MidiInputNode", []node.PortDescriptor{
		{Name: "port", Kind: port.KindData, Dir: port.DirInput},
		{Name: "out", Kind: port.KindMidi, Dir: port.DirOutput},
	})
	n := &MidiInputNode{
		BaseNode: bn,
		portIdx:  node.MustDataInput(bn, "port"),
		out:      node.MustMidiOutput(bn, "out"),
		source:   source,
		opened:   -1,
	}
	if source != nil {
		n.SetExport("Available Ports", source.Ports())
	}
	return n
}

func (n *MidiInputNode) Render(ctx port.Context) error {
	requested := int(n.portIdx.Read(port.Int(0)).Float())
	if requested != n.opened {
		if n.handle != nil {
			_ = n.handle.Close()
			n.handle = nil
		}
		if n.source != nil {
			h, err := n.source.Open(requested)
			if err != nil {
				return fmt.Errorf("open midi port %d: %w", requested, err)
			}
			n.handle = h
			n.opened = requested
			n.SetExport("Selected Port", h.Name())
		}
	}

	buf := port.NewMidiBuffer(ctx.BlockSize)
	if n.handle != nil {
		events, err := n.handle.Poll()
		if err != nil {
			return fmt.Errorf("poll midi port %d: %w", n.opened, err)
		}
		for _, ev := range events {
			n.accumulated += ev.DT
			offset := int(n.accumulated*float64(ctx.SampleRate)) % ctx.BlockSize
			if offset < 0 {
				offset += ctx.BlockSize
			}
			_ = buf.Add(offset, port.Message(ev.Bytes))
		}
	}
	n.out.Write(buf)
	return nil
}

func (n *MidiInputNode) Teardown() {
	if n.handle != nil {
		_ = n.handle.Close()
		n.handle = nil
	}
}

// MonophonicRenderNode tracks the single most recently held note and
// converts it to a 1V/oct-style frequency stream. Opcode decoding uses
// the standard MIDI numbering (NOTE_ON=0x90, NOTE_OFF=0x80); the system
// this was distilled from used an inverted pairing that was tracked down
// to a transcription bug and is not reproduced here.
type MonophonicRenderNode struct {
	*node.BaseNode
	midi        *port.MidiInput
	frequency   *port.StreamOutput
	currentNote uint8
	hasNote     bool
}

func NewMonophonicRenderNode(name string) *MonophonicRenderNode {
	bn := node.NewBaseNode(name, "MonophonicRenderNode", []node.PortDescriptor{
		{Name: "midi", Kind: port.KindMidi, Dir: port.DirInput},
		{Name: "frequency", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &MonophonicRenderNode{
		BaseNode:  bn,
		midi:      node.MustMidiInput(bn, "midi"),
		frequency: node.MustStreamOutput(bn, "frequency"),
	}
}

func (n *MonophonicRenderNode) Render(ctx port.Context) error {
	buf := n.midi.Read()
	out := make(port.Buffer, ctx.BlockSize)
	for i := 0; i < ctx.BlockSize; i++ {
		for _, raw := range buf.At(i) {
			msg := midi.Message(raw)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteOn(&ch, &key, &vel):
				n.currentNote = key
				n.hasNote = true
			case msg.GetNoteOff(&ch, &key, &vel):
				if n.hasNote && key == n.currentNote {
					n.hasNote = false
				}
			}
		}
		if n.hasNote {
			out[i] = float32(440 * math.Pow(2, (float64(n.currentNote)-69)/12))
		}
	}
	n.frequency.Write(out)
	return nil
}

// MidiTriggerNode emits a 1-sample trigger pulse on every NOTE_ON.
type MidiTriggerNode struct {
	*node.BaseNode
	midi    *port.MidiInput
	trigger *port.StreamOutput
}

func NewMidiTriggerNode(name string) *MidiTriggerNode {
	bn := node.NewBaseNode(name, "MidiTriggerNode", []node.PortDescriptor{
		{Name: "midi", Kind: port.KindMidi, Dir: port.DirInput},
		{Name: "trigger", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &MidiTriggerNode{
		BaseNode: bn,
		midi:     node.MustMidiInput(bn, "midi"),
		trigger:  node.MustStreamOutput(bn, "trigger"),
	}
}

func (n *MidiTriggerNode) Render(ctx port.Context) error {
	buf := n.midi.Read()
	out := make(port.Buffer, ctx.BlockSize)
	for i := 0; i < ctx.BlockSize; i++ {
		for _, raw := range buf.At(i) {
			var ch, key, vel uint8
			if midi.Message(raw).GetNoteOn(&ch, &key, &vel) {
				out[i] = 1
				break
			}
		}
	}
	n.trigger.Write(out)
	return nil
}

// MidiTranspositionNode shifts the key byte of every NOTE_ON/NOTE_OFF
// message by transposition (latched at the message's own offset),
// passing every other message through unchanged.
type MidiTranspositionNode struct {
	*node.BaseNode
	midi          *port.MidiInput
	transposition *port.StreamInput
	out           *port.MidiOutput
}

func NewMidiTranspositionNode(name string) *MidiTranspositionNode {
	bn := node.NewBaseNode(name, "MidiTranspositionNode", []node.PortDescriptor{
		{Name: "midi", Kind: port.KindMidi, Dir: port.DirInput},
		{Name: "transposition", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindMidi, Dir: port.DirOutput},
	})
	return &MidiTranspositionNode{
		BaseNode:      bn,
		midi:          node.MustMidiInput(bn, "midi"),
		transposition: node.MustStreamInput(bn, "transposition"),
		out:           node.MustMidiOutput(bn, "out"),
	}
}

func (n *MidiTranspositionNode) Render(ctx port.Context) error {
	in := n.midi.Read()
	semis := n.transposition.Read(ctx, 0)
	out := port.NewMidiBuffer(ctx.BlockSize)
	for i := 0; i < ctx.BlockSize; i++ {
		for _, raw := range in.At(i) {
			_ = out.Add(i, transpose(raw, semis[i]))
		}
	}
	n.out.Write(out)
	return nil
}

func transpose(raw port.Message, semitones float32) port.Message {
	msg := midi.Message(raw)
	var ch, key, vel uint8
	shift := func(k uint8) uint8 {
		shifted := int(k) + int(semitones)
		switch {
		case shifted < 0:
			return 0
		case shifted > 127:
			return 127
		default:
			return uint8(shifted)
		}
	}
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return port.Message(midi.NoteOn(ch, shift(key), vel))
	case msg.GetNoteOff(&ch, &key, &vel):
		return port.Message(midi.NoteOff(ch, shift(key)))
	default:
		return raw
	}
}
