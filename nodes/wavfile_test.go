package nodes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

func TestWavFileNode_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	n := NewWavFileNode("wav")
	pathIn := node.MustDataInput(n.BaseNode, "path")
	pathIn.SetConnected(true)
	pathIn.SetValue(port.String(path))
	signal := node.MustStreamInput(n.BaseNode, "signal")
	signal.SetConnected(true)
	signal.SetBuffer(port.Buffer{0, 0.5, -0.5, 1, -1})

	if err := n.Render(port.Context{SampleRate: 48000, BlockSize: 5}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	n.Teardown()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("wav file is empty")
	}
}

func TestClampSample(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{0, 0}, {0.5, 0.5}, {1.5, 1}, {-1.5, -1}, {-1, -1}, {1, 1},
	}
	for _, c := range cases {
		if got := clampSample(c.in); got != c.want {
			t.Fatalf("clampSample(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
