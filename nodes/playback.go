package nodes

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/shaban/siggraph"
	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/playback"
	"github.com/shaban/siggraph/port"
)

// PlaybackNode interleaves left and right into stereo blocks and pushes
// them onto a bounded queue the device's pull callback drains. It
// registers that queue with the graph so RenderGraph's barrier waits
// for the device to consume each tick's block before advancing.
type PlaybackNode struct {
	*node.BaseNode
	left, right *port.StreamInput

	queue  *playback.Queue
	device playback.Device

	underruns int64
	overruns  int64
}

// NewPlaybackNode opens device at the graph's sample rate and block
// size and registers its block-sync queue with g.
func NewPlaybackNode(name string, g *siggraph.Graph, device playback.Device) (*PlaybackNode, error) {
	bn := node.NewBaseNode(name, "PlaybackNode", []node.PortDescriptor{
		{Name: "left", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "right", Kind: port.KindStream, Dir: port.DirInput},
	})
	n := &PlaybackNode{
		BaseNode: bn,
		left:     node.MustStreamInput(bn, "left"),
		right:    node.MustStreamInput(bn, "right"),
		queue:    playback.NewQueue(4),
		device:   device,
	}

	blockSize := g.BlockSize()
	pull := func() []float32 {
		block, ok := n.queue.Pop()
		if !ok {
			atomic.AddInt64(&n.underruns, 1)
			log.Printf("siggraph: %v (node %s)", siggraph.ErrUnderrun, n.Name())
			return make([]float32, 2*blockSize)
		}
		n.queue.Done()
		return block
	}

	if err := device.Open(g.SampleRate(), blockSize, pull); err != nil {
		return nil, &siggraph.DeviceError{Msg: "open playback device", Err: err}
	}
	g.RegisterQueue(n.queue)
	n.SetExport("Device", fmt.Sprintf("%T", device))
	return n, nil
}

// Underruns reports how many times the device callback found the queue
// empty.
func (n *PlaybackNode) Underruns() int64 { return atomic.LoadInt64(&n.underruns) }

// Overruns reports how many times Render's push found the queue full,
// i.e. the device callback has fallen behind the render loop.
func (n *PlaybackNode) Overruns() int64 { return atomic.LoadInt64(&n.overruns) }

func (n *PlaybackNode) Render(ctx port.Context) error {
	left := n.left.Read(ctx, 0)
	right := n.right.Read(ctx, 0)
	stereo := make([]float32, 2*ctx.BlockSize)
	for i := 0; i < ctx.BlockSize; i++ {
		stereo[2*i] = left[i]
		stereo[2*i+1] = right[i]
	}
	// Push never blocks: Render runs under graph.go's per-tick lock, so
	// a blocked push here would freeze every graph mutation along with
	// playback. A full queue is backpressure, surfaced as a counter and
	// a warning (per spec.md §7's Underrun precedent), not a panic.
	if ok := n.queue.Push(stereo); !ok {
		atomic.AddInt64(&n.overruns, 1)
		log.Printf("siggraph: %v (node %s)", siggraph.ErrOverrun, n.Name())
	}
	return nil
}

func (n *PlaybackNode) Teardown() {
	_ = n.device.Close()
}
