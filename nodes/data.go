package nodes

import (
	"log"
	"math/rand"
	"time"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

// ConstantNode holds a scalar value and writes it to out every render.
// It is also known as DataNode in the node library.
type ConstantNode struct {
	*node.BaseNode
	out   *port.DataOutput
	value port.Value
}

func NewConstantNode(name string, value port.Value) *ConstantNode {
	bn := node.NewBaseNode(name, "ConstantNode", []node.PortDescriptor{
		{Name: "out", Kind: port.KindData, Dir: port.DirOutput},
	})
	n := &ConstantNode{BaseNode: bn, out: node.MustDataOutput(bn, "out"), value: value}
	n.SetExport("Value", value)
	return n
}

// SetValue updates the held scalar, e.g. in response to a command API call.
func (n *ConstantNode) SetValue(v port.Value) {
	n.value = v
	n.SetExport("Value", v)
}

func (n *ConstantNode) Render(port.Context) error {
	n.out.Write(n.value)
	return nil
}

// StreamNode coerces a Data input to a Stream output by broadcasting its
// scalar value across the block.
type StreamNode struct {
	*node.BaseNode
	in  *port.DataInput
	out *port.StreamOutput
}

func NewStreamNode(name string) *StreamNode {
	bn := node.NewBaseNode(name, "StreamNode", []node.PortDescriptor{
		{Name: "in", Kind: port.KindData, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &StreamNode{BaseNode: bn, in: node.MustDataInput(bn, "in"), out: node.MustStreamOutput(bn, "out")}
}

func (n *StreamNode) Render(ctx port.Context) error {
	v := float32(n.in.Read(port.Null()).Float())
	buf := make(port.Buffer, ctx.BlockSize)
	for i := range buf {
		buf[i] = v
	}
	n.out.Write(buf)
	return nil
}

// UniformRandomNode draws i.i.d. uniform samples in [low, high) per
// block, where low and high are taken from sample 0 of min and max
// (per-block controls latch at the start of the block).
type UniformRandomNode struct {
	*node.BaseNode
	min *port.StreamInput
	max *port.StreamInput
	out *port.StreamOutput
	rng *rand.Rand
}

func NewUniformRandomNode(name string) *UniformRandomNode {
	bn := node.NewBaseNode(name, "UniformRandomNode", []node.PortDescriptor{
		{Name: "min", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "max", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &UniformRandomNode{
		BaseNode: bn,
		min:      node.MustStreamInput(bn, "min"),
		max:      node.MustStreamInput(bn, "max"),
		out:      node.MustStreamOutput(bn, "out"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (n *UniformRandomNode) Render(ctx port.Context) error {
	low := n.min.Read(ctx, 0)[0]
	high := n.max.Read(ctx, 1)[0]
	buf := make(port.Buffer, ctx.BlockSize)
	span := high - low
	for i := range buf {
		buf[i] = low + float32(n.rng.Float64())*span
	}
	n.out.Write(buf)
	return nil
}

// AddNode writes a[i]+b[i] pointwise.
type AddNode struct {
	*node.BaseNode
	a, b *port.StreamInput
	out  *port.StreamOutput
}

func NewAddNode(name string) *AddNode {
	bn := node.NewBaseNode(name, "AddNode", []node.PortDescriptor{
		{Name: "a", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "b", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &AddNode{BaseNode: bn, a: node.MustStreamInput(bn, "a"), b: node.MustStreamInput(bn, "b"), out: node.MustStreamOutput(bn, "out")}
}

func (n *AddNode) Render(ctx port.Context) error {
	a := n.a.Read(ctx, 0)
	b := n.b.Read(ctx, 0)
	buf := make(port.Buffer, ctx.BlockSize)
	for i := range buf {
		buf[i] = a[i] + b[i]
	}
	n.out.Write(buf)
	return nil
}

// MultiplyNode writes a[i]*b[i] pointwise.
type MultiplyNode struct {
	*node.BaseNode
	a, b *port.StreamInput
	out  *port.StreamOutput
}

func NewMultiplyNode(name string) *MultiplyNode {
	bn := node.NewBaseNode(name, "MultiplyNode", []node.PortDescriptor{
		{Name: "a", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "b", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &MultiplyNode{BaseNode: bn, a: node.MustStreamInput(bn, "a"), b: node.MustStreamInput(bn, "b"), out: node.MustStreamOutput(bn, "out")}
}

func (n *MultiplyNode) Render(ctx port.Context) error {
	a := n.a.Read(ctx, 0)
	b := n.b.Read(ctx, 0)
	buf := make(port.Buffer, ctx.BlockSize)
	for i := range buf {
		buf[i] = a[i] * b[i]
	}
	n.out.Write(buf)
	return nil
}

// DebugNode logs its input buffer once per tick, skipping entirely when
// unconnected.
type DebugNode struct {
	*node.BaseNode
	in *port.StreamInput
}

func NewDebugNode(name string) *DebugNode {
	bn := node.NewBaseNode(name, "DebugNode", []node.PortDescriptor{
		{Name: "input", Kind: port.KindStream, Dir: port.DirInput},
	})
	return &DebugNode{BaseNode: bn, in: node.MustStreamInput(bn, "input")}
}

func (n *DebugNode) Render(ctx port.Context) error {
	if !n.in.IsConnected() {
		return nil
	}
	log.Printf("siggraph debug %s: %v", n.Name(), n.in.Read(ctx, 0))
	return nil
}

// SequenceNode steps through sequence one element at a time, advancing
// whenever step is truthy.
type SequenceNode struct {
	*node.BaseNode
	sequence *port.DataInput
	step     *port.StreamInput
	out      *port.StreamOutput
	position int
}

func NewSequenceNode(name string) *SequenceNode {
	bn := node.NewBaseNode(name, "SequenceNode", []node.PortDescriptor{
		{Name: "sequence", Kind: port.KindData, Dir: port.DirInput},
		{Name: "step", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	return &SequenceNode{
		BaseNode: bn,
		sequence: node.MustDataInput(bn, "sequence"),
		step:     node.MustStreamInput(bn, "step"),
		out:      node.MustStreamOutput(bn, "out"),
	}
}

func (n *SequenceNode) Render(ctx port.Context) error {
	seq := n.sequence.Read(port.Null()).List()
	step := n.step.Read(ctx, 0)
	buf := make(port.Buffer, ctx.BlockSize)
	if len(seq) == 0 {
		n.out.Write(buf)
		return nil
	}
	for i := range buf {
		if step[i] != 0 {
			n.position = (n.position + 1) % len(seq)
		}
		buf[i] = float32(seq[n.position].Float())
	}
	n.out.Write(buf)
	return nil
}
