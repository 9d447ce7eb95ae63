// Package nodes implements the concrete node library (C4): audio
// sources, sinks, data/utility nodes, and MIDI nodes built on the
// node.BaseNode contract.
package nodes

import (
	"math"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

const twoPi = 2 * math.Pi

// SilenceNode writes a block of zeros every tick.
type SilenceNode struct {
	*node.BaseNode
	out *port.StreamOutput
}

func NewSilenceNode(name string) *SilenceNode {
	bn := node.NewBaseNode(name, "SilenceNode", []node.PortDescriptor{
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &SilenceNode{BaseNode: bn, out: node.MustStreamOutput(bn, "out")}
}

func (n *SilenceNode) Render(ctx port.Context) error {
	n.out.Write(make(port.Buffer, ctx.BlockSize))
	return nil
}

// SineNode writes a sine wave at frequency.in, tracking phase across
// blocks so there is no discontinuity at a block boundary.
type SineNode struct {
	*node.BaseNode
	frequency *port.StreamInput
	out       *port.StreamOutput
	phase     float64
}

func NewSineNode(name string) *SineNode {
	bn := node.NewBaseNode(name, "SineNode", []node.PortDescriptor{
		{Name: "frequency", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &SineNode{
		BaseNode:  bn,
		frequency: node.MustStreamInput(bn, "frequency"),
		out:       node.MustStreamOutput(bn, "out"),
	}
}

func (n *SineNode) Render(ctx port.Context) error {
	freq := n.frequency.Read(ctx, 0)
	buf := make(port.Buffer, ctx.BlockSize)
	for i := range buf {
		buf[i] = float32(math.Sin(n.phase))
		n.phase += twoPi * float64(freq[i]) / float64(ctx.SampleRate)
		n.phase = math.Mod(n.phase, twoPi)
	}
	n.out.Write(buf)
	return nil
}

// SquareNode writes a pulse wave whose duty cycle follows pwm.
type SquareNode struct {
	*node.BaseNode
	frequency *port.StreamInput
	pwm       *port.StreamInput
	out       *port.StreamOutput
	phase     float64
}

func NewSquareNode(name string) *SquareNode {
	bn := node.NewBaseNode(name, "SquareNode", []node.PortDescriptor{
		{Name: "frequency", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "pwm", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &SquareNode{
		BaseNode:  bn,
		frequency: node.MustStreamInput(bn, "frequency"),
		pwm:       node.MustStreamInput(bn, "pwm"),
		out:       node.MustStreamOutput(bn, "out"),
	}
}

func (n *SquareNode) Render(ctx port.Context) error {
	freq := n.frequency.Read(ctx, 0)
	pwm := n.pwm.Read(ctx, 0.5)
	buf := make(port.Buffer, ctx.BlockSize)
	for i := range buf {
		if n.phase > float64(pwm[i]) {
			buf[i] = 1
		} else {
			buf[i] = -1
		}
		n.phase += float64(freq[i]) / float64(ctx.SampleRate)
		n.phase = math.Mod(n.phase, 1)
	}
	n.out.Write(buf)
	return nil
}

// SawtoothNode writes a rising ramp in [0,1) at frequency.
type SawtoothNode struct {
	*node.BaseNode
	frequency *port.StreamInput
	out       *port.StreamOutput
	phase     float64
}

func NewSawtoothNode(name string) *SawtoothNode {
	bn := node.NewBaseNode(name, "SawtoothNode", []node.PortDescriptor{
		{Name: "frequency", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &SawtoothNode{
		BaseNode:  bn,
		frequency: node.MustStreamInput(bn, "frequency"),
		out:       node.MustStreamOutput(bn, "out"),
	}
}

func (n *SawtoothNode) Render(ctx port.Context) error {
	freq := n.frequency.Read(ctx, 0)
	buf := make(port.Buffer, ctx.BlockSize)
	for i := range buf {
		buf[i] = float32(n.phase)
		n.phase += float64(freq[i]) / float64(ctx.SampleRate)
		n.phase = math.Mod(n.phase, 1)
	}
	n.out.Write(buf)
	return nil
}
