package port

import "testing"

func TestMidiBuffer_AddAndAt(t *testing.T) {
	b := NewMidiBuffer(256)
	if err := b.Add(10, Message{0x90, 69, 100}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.Add(10, Message{0x80, 69, 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	msgs := b.At(10)
	if len(msgs) != 2 {
		t.Fatalf("want 2 messages at offset 10, got %d", len(msgs))
	}
	if msgs[0][0] != 0x90 || msgs[1][0] != 0x80 {
		t.Fatalf("want insertion order preserved, got %v", msgs)
	}
	if len(b.At(5)) != 0 {
		t.Fatalf("want no messages at offset 5")
	}
}

func TestMidiBuffer_OffsetOutOfBounds(t *testing.T) {
	b := NewMidiBuffer(16)
	if err := b.Add(16, Message{0x90}); err == nil {
		t.Fatal("want error for offset == length")
	}
	if err := b.Add(-1, Message{0x90}); err == nil {
		t.Fatal("want error for negative offset")
	}
}

func TestMidiInput_DefaultsToEmptyBufferOfBlockLength(t *testing.T) {
	n := fakeNode{"midiin"}
	in := NewMidiInput(n, "midi")
	in.SetBlockLength(64)
	got := in.Read()
	if got.Len() != 64 {
		t.Fatalf("want length 64, got %d", got.Len())
	}
	if got.Count() != 0 {
		t.Fatalf("want empty buffer, got %d messages", got.Count())
	}
}
