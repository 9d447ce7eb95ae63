package nodes

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

// WavFileNode appends its signal input to a mono PCM WAV file on disk.
// go-audio/wav's Encoder writes audio.IntBuffer, not raw float32, so
// samples are quantized to signed 16-bit on write; this is a deliberate
// simplification, not a loss of the engine's internal float32 signal
// path (see DESIGN.md).
type WavFileNode struct {
	*node.BaseNode
	path   *port.DataInput
	signal *port.StreamInput

	file    *os.File
	encoder *wav.Encoder
	opened  string
}

func NewWavFileNode(name string) *WavFileNode {
	bn := node.NewBaseNode(name, "WavFileNode", []node.PortDescriptor{
		{Name: "path", Kind: port.KindData, Dir: port.DirInput},
		{Name: "signal", Kind: port.KindStream, Dir: port.DirInput},
	})
	return &WavFileNode{
		BaseNode: bn,
		path:     node.MustDataInput(bn, "path"),
		signal:   node.MustStreamInput(bn, "signal"),
	}
}

func (n *WavFileNode) Render(ctx port.Context) error {
	p := n.path.Read(port.String("output.wav")).String()
	if n.encoder == nil || p != n.opened {
		if err := n.open(p, ctx.SampleRate); err != nil {
			return err
		}
	}

	buf := n.signal.Read(ctx, 0)
	samples := make([]int, len(buf))
	for i, v := range buf {
		samples[i] = int(clampSample(v) * 32767)
	}
	return n.encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: ctx.SampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	})
}

func (n *WavFileNode) open(path string, sampleRate int) error {
	if n.file != nil {
		_ = n.encoder.Close()
		_ = n.file.Close()
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open wav file %s: %w", path, err)
	}
	n.file = f
	n.encoder = wav.NewEncoder(f, sampleRate, 16, 1, 1)
	n.opened = path
	n.SetExport("File Path", path)
	return nil
}

// Teardown closes the WAV encoder and its backing file.
func (n *WavFileNode) Teardown() {
	if n.encoder != nil {
		_ = n.encoder.Close()
	}
	if n.file != nil {
		_ = n.file.Close()
	}
}

func clampSample(v float32) float32 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
