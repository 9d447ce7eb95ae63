package nodes

// End-to-end renders through a real Graph: nodes wired with
// AddConnection, evaluated by RenderGraph, blocks drained from the
// playback queue the way a device callback would.

import (
	"math"
	"testing"

	"github.com/shaban/siggraph"
	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

// renderTick runs one RenderGraph tick while draining one block from the
// playback queue, so the block-sync barrier can complete.
func renderTick(t *testing.T, g *siggraph.Graph, n *PlaybackNode) []float32 {
	t.Helper()
	done := make(chan struct{})
	go func() {
		g.RenderGraph()
		close(done)
	}()
	var block []float32
	for {
		if b, ok := n.queue.Pop(); ok {
			block = b
			n.queue.Done()
			break
		}
	}
	<-done
	return block
}

func connect(t *testing.T, g *siggraph.Graph, srcNode, srcPort, dstNode, dstPort string) {
	t.Helper()
	src := siggraph.Port{NodeName: srcNode, PortName: srcPort}
	dst := siggraph.Port{NodeName: dstNode, PortName: dstPort}
	if _, err := g.AddConnection(src, dst); err != nil {
		t.Fatalf("connect %s.%s -> %s.%s: %v", srcNode, srcPort, dstNode, dstPort, err)
	}
}

func TestScenario_SilenceToPlayback(t *testing.T) {
	g := siggraph.NewGraph(44100, 256)
	sil := NewSilenceNode("sil")
	if err := g.AddNode(sil); err != nil {
		t.Fatalf("add silence: %v", err)
	}
	out, err := NewPlaybackNode("out", g, &fakeDevice{})
	if err != nil {
		t.Fatalf("add playback: %v", err)
	}
	if err := g.AddNode(out); err != nil {
		t.Fatalf("add playback node: %v", err)
	}
	connect(t, g, "sil", "out", "out", "left")
	connect(t, g, "sil", "out", "out", "right")

	block := renderTick(t, g, out)
	if len(block) != 512 {
		t.Fatalf("len(block) = %d, want 512", len(block))
	}
	for i, v := range block {
		if v != 0 {
			t.Fatalf("block[%d] = %v, want 0", i, v)
		}
	}
	if g.GlobalClock() != 1 {
		t.Fatalf("GlobalClock() = %d, want 1", g.GlobalClock())
	}
}

func TestScenario_ConstantFrequencySine(t *testing.T) {
	const (
		rate  = 44100
		block = 256
	)
	g := siggraph.NewGraph(rate, block)
	for _, err := range []error{
		g.AddNode(NewConstantNode("freq", port.Float(440))),
		g.AddNode(NewStreamNode("bcast")),
		g.AddNode(NewSineNode("sine")),
	} {
		if err != nil {
			t.Fatalf("add node: %v", err)
		}
	}
	out, err := NewPlaybackNode("out", g, &fakeDevice{})
	if err != nil {
		t.Fatalf("playback: %v", err)
	}
	if err := g.AddNode(out); err != nil {
		t.Fatalf("add playback node: %v", err)
	}
	connect(t, g, "freq", "out", "bcast", "in")
	connect(t, g, "bcast", "out", "sine", "frequency")
	connect(t, g, "sine", "out", "out", "left")
	connect(t, g, "sine", "out", "out", "right")

	var left []float32
	for tick := 0; tick < 2; tick++ {
		stereo := renderTick(t, g, out)
		for i := 0; i < block; i++ {
			left = append(left, stereo[2*i])
		}
	}

	for i := range left {
		want := math.Sin(2 * math.Pi * 440 * float64(i) / rate)
		if math.Abs(float64(left[i])-want) > 1e-6 {
			t.Fatalf("sample %d: got %v, want %v", i, left[i], want)
		}
	}
}

func TestScenario_AddTwoConstants(t *testing.T) {
	g := siggraph.NewGraph(44100, 256)
	for _, err := range []error{
		g.AddNode(NewConstantNode("one", port.Float(1))),
		g.AddNode(NewConstantNode("two", port.Float(2))),
		g.AddNode(NewStreamNode("b1")),
		g.AddNode(NewStreamNode("b2")),
		g.AddNode(NewAddNode("sum")),
	} {
		if err != nil {
			t.Fatalf("add node: %v", err)
		}
	}
	connect(t, g, "one", "out", "b1", "in")
	connect(t, g, "two", "out", "b2", "in")
	connect(t, g, "b1", "out", "sum", "a")
	connect(t, g, "b2", "out", "sum", "b")

	g.RenderGraph()

	sum, err := g.GetNode("sum")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	buf := node.MustStreamOutput(sum.(*AddNode).BaseNode, "out").Buffer()
	if len(buf) != 256 {
		t.Fatalf("len = %d, want 256", len(buf))
	}
	for i, v := range buf {
		if v != 3 {
			t.Fatalf("buf[%d] = %v, want 3", i, v)
		}
	}
}
