package port

// Buffer is a contiguous block of B single-precision samples.
type Buffer []float32

// StreamInput reads a length-B float32 buffer each block. When
// unconnected it synthesizes a constant buffer. A Data-typed source can
// never land here directly (AddConnection rejects kind mismatches); a
// scalar reaches a Stream input only through an explicit broadcasting
// node (StreamNode) that reads its own Data input and writes a full-length
// buffer, so StreamInput itself only ever stores and returns buffers.
type StreamInput struct {
	Port
	buf       Buffer
	connected bool
}

func NewStreamInput(node NodeRef, name string) *StreamInput {
	return &StreamInput{Port: newPort(node, name, KindStream, DirInput)}
}

// Read returns a buffer of length ctx.BlockSize. If unconnected, returns a
// freshly allocated constant buffer filled with defaultConstant. Otherwise
// the propagated buffer is returned unchanged.
func (in *StreamInput) Read(ctx Context, defaultConstant float32) Buffer {
	if !in.connected {
		return constantBuffer(ctx.BlockSize, defaultConstant)
	}
	return in.buf
}

func constantBuffer(n int, v float32) Buffer {
	b := make(Buffer, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func (in *StreamInput) IsConnected() bool { return in.connected }

func (in *StreamInput) SetConnected(c bool) {
	in.connected = c
	if !c {
		in.buf = nil
	}
}

// SetBuffer is called by the graph engine to propagate a connected
// stream-kind source's buffer by reference.
func (in *StreamInput) SetBuffer(b Buffer) {
	in.buf = b
}

// StreamOutput stores a length-B buffer reference written by the owning
// node's render call.
type StreamOutput struct {
	Port
	buf Buffer
}

func NewStreamOutput(node NodeRef, name string) *StreamOutput {
	return &StreamOutput{Port: newPort(node, name, KindStream, DirOutput)}
}

// Write stores buf. The caller (the owning node) must not mutate buf
// after writing it: connected sinks may share the same backing array.
func (out *StreamOutput) Write(buf Buffer) { out.buf = buf }
func (out *StreamOutput) Buffer() Buffer   { return out.buf }
