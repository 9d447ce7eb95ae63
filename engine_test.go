package siggraph

import (
	"sync"
	"testing"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

func TestEngine_AddNodeAndConnectionThroughCommandQueue(t *testing.T) {
	g := NewGraph(44100, 256)
	e := NewEngine(g)
	defer e.Shutdown()

	src := constantOutNode("src", 1)
	dst := passthroughNode("dst")

	if err := e.AddNode(src); err != nil {
		t.Fatalf("AddNode(src): %v", err)
	}
	if err := e.AddNode(dst); err != nil {
		t.Fatalf("AddNode(dst): %v", err)
	}

	conn, err := e.AddConnection(Port{NodeName: "src", PortName: "out"}, Port{NodeName: "dst", PortName: "in"})
	if err != nil {
		t.Fatalf("AddConnection: %v", err)
	}
	if !conn.Connected {
		t.Fatalf("want connected connection")
	}

	g.RenderGraph()

	removed, err := e.UnlinkNode("dst")
	if err != nil {
		t.Fatalf("UnlinkNode: %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("want 1 removed connection, got %d", len(removed))
	}
}

func TestEngine_RenderLoopAdvancesClockAndStopsCooperatively(t *testing.T) {
	g := NewGraph(44100, 256)
	e := NewEngine(g)
	defer e.Shutdown()

	_ = e.AddNode(constantOutNode("src", 1))

	e.StartRendering()
	for g.GlobalClock() == 0 {
	}
	e.StopRendering()

	if e.Running() {
		t.Fatal("Running() = true after StopRendering returned")
	}
	stopped := g.GlobalClock()
	if stopped == 0 {
		t.Fatal("clock did not advance while the loop ran")
	}
	if got := g.GlobalClock(); got != stopped {
		t.Fatalf("clock advanced after stop: %d -> %d", stopped, got)
	}
}

func TestEngine_ReadSurface(t *testing.T) {
	g := NewGraph(44100, 256)
	e := NewEngine(g)
	defer e.Shutdown()

	src := constantOutNode("src", 1)
	dst := passthroughNode("dst")
	_ = e.AddNode(src)
	_ = e.AddNode(dst)
	if _, err := e.AddConnection(Port{NodeName: "src", PortName: "out"}, Port{NodeName: "dst", PortName: "in"}); err != nil {
		t.Fatalf("AddConnection: %v", err)
	}

	if _, err := e.GetNode("src"); err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	c, err := e.GetConnection(Port{NodeName: "src", PortName: "out"}, Port{NodeName: "dst", PortName: "in"}, false)
	if err != nil || !c.Connected {
		t.Fatalf("GetConnection: %v, err=%v", c, err)
	}

	st := e.ExportState()
	if len(st.Nodes) != 2 || len(st.Connections) != 1 {
		t.Fatalf("ExportState: want 2 nodes / 1 connection, got %d/%d", len(st.Nodes), len(st.Connections))
	}
	if st.SampleRate != 44100 || st.BlockSize != 256 {
		t.Fatalf("ExportState: spec fields wrong: %+v", st)
	}
}

func TestEngine_ConcurrentMutationsAllApply(t *testing.T) {
	g := NewGraph(44100, 256)
	e := NewEngine(g)
	defer e.Shutdown()

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_ = e.AddNode(newTestNode(
				nameFor(i),
				[]node.PortDescriptor{{Name: "out", Kind: port.KindStream, Dir: port.DirOutput}},
				nil,
			))
		}()
	}
	wg.Wait()

	if got := len(g.NodeNames()); got != n {
		t.Fatalf("want %d nodes registered, got %d", n, got)
	}
}

func nameFor(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "node_" + string(letters[i%len(letters)]) + string(rune('0'+i/len(letters)))
}
