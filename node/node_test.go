package node

import (
	"testing"

	"github.com/shaban/siggraph/port"
)

func descriptors() []PortDescriptor {
	return []PortDescriptor{
		{Name: "frequency", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	}
}

func TestBaseNode_PortLookup(t *testing.T) {
	bn := NewBaseNode("sine1", "SineNode", descriptors())

	if _, err := bn.GetInput("frequency"); err != nil {
		t.Fatalf("GetInput: %v", err)
	}
	if _, err := bn.GetOutput("out"); err != nil {
		t.Fatalf("GetOutput: %v", err)
	}
	if _, err := bn.GetPort("frequency"); err != nil {
		t.Fatalf("GetPort(frequency): %v", err)
	}
	if _, err := bn.GetPort("missing"); err == nil {
		t.Fatal("want error for missing port")
	}
	if _, err := bn.GetInput("out"); err == nil {
		t.Fatal("want error: out is not an input")
	}
}

func TestBaseNode_AsJSON_IncludesExportsAlways(t *testing.T) {
	bn := NewBaseNode("sine1", "SineNode", descriptors())
	j := bn.AsJSON()
	if j.Exports == nil {
		t.Fatal("want non-nil exports map even when empty")
	}
	if len(j.Inputs) != 1 || len(j.Outputs) != 1 {
		t.Fatalf("want 1 input and 1 output, got %d/%d", len(j.Inputs), len(j.Outputs))
	}
	if j.Inputs[0].Source != nil {
		t.Fatal("want nil source before any connection recorded")
	}
}

func TestBaseNode_SourceAndSinkBookkeeping(t *testing.T) {
	bn := NewBaseNode("add1", "AddNode", []PortDescriptor{
		{Name: "a", Kind: port.KindStream, Dir: port.DirInput},
		{Name: "out", Kind: port.KindStream, Dir: port.DirOutput},
	})
	src := port.JSONPort{NodeName: "osc", PortName: "out"}
	bn.SetInputSource("a", &src)
	j := bn.AsJSON()
	if j.Inputs[0].Source == nil || j.Inputs[0].Source.NodeName != "osc" {
		t.Fatalf("want source osc, got %+v", j.Inputs[0].Source)
	}

	sink := port.JSONPort{NodeName: "mix", PortName: "b"}
	bn.AddOutputSink("out", sink)
	j = bn.AsJSON()
	if len(j.Outputs[0].Sinks) != 1 || j.Outputs[0].Sinks[0] != sink {
		t.Fatalf("want one sink recorded, got %+v", j.Outputs[0].Sinks)
	}
	bn.RemoveOutputSink("out", sink)
	j = bn.AsJSON()
	if len(j.Outputs[0].Sinks) != 0 {
		t.Fatalf("want sink removed, got %+v", j.Outputs[0].Sinks)
	}
}
