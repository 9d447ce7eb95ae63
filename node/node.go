// Package node implements the base contract (C3) shared by every node
// type: static port declaration, O(1) port lookup, render/teardown hooks,
// and introspection export.
package node

import (
	"fmt"

	"github.com/shaban/siggraph/port"
)

// PortDescriptor declares one port of a node type. The set of descriptors
// for a type is a property of the type, not the instance: BaseNode
// instantiates live ports from this table at construction time rather
// than discovering them via reflection.
type PortDescriptor struct {
	Name string
	Kind port.Kind
	Dir  port.Direction
}

// Node is the contract every node type satisfies. Concrete node types
// embed *BaseNode for GetInput/GetOutput/GetPort/AsJSON/Teardown and
// implement Render themselves.
type Node interface {
	Name() string
	Type() string
	Render(ctx port.Context) error
	AsJSON() JSON
	Teardown()
	Inputs() []PortHandle
	Outputs() []PortHandle
	GetInput(name string) (PortHandle, error)
	GetOutput(name string) (PortHandle, error)
	GetPort(name string) (PortHandle, error)
	Exports() map[string]any
}

// PortHandle is the minimal interface the graph engine needs to propagate
// buffers across a connection without knowing the concrete port kind.
type PortHandle interface {
	Name() string
	Kind() port.Kind
	Direction() port.Direction
	QualifiedName() string
}

// LookupError reports a port or node name that does not exist.
type LookupError struct {
	Kind string // "node", "input", "output", "port"
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s '%s' does not exist", e.Kind, e.Name)
}

// BaseNode provides the default Node implementation composing a
// descriptor table into live, typed ports. Concrete node types embed
// *BaseNode and implement Render.
type BaseNode struct {
	name     string
	typeName string

	inputOrder  []string
	outputOrder []string
	inputs      map[string]PortHandle
	outputs     map[string]PortHandle

	exports map[string]any

	inputPeers  map[string]*port.JSONPort
	outputPeers map[string][]port.JSONPort
}

// NewBaseNode instantiates every descriptor into a live port and stores
// it for O(1) lookup. typeName should be the concrete Go type's name
// (e.g. "SineNode"), matching the introspection JSON's "type" field.
func NewBaseNode(name, typeName string, descriptors []PortDescriptor) *BaseNode {
	bn := &BaseNode{
		name:     name,
		typeName: typeName,
		inputs:   make(map[string]PortHandle),
		outputs:  make(map[string]PortHandle),
		exports:  make(map[string]any),
	}
	for _, d := range descriptors {
		switch d.Dir {
		case port.DirInput:
			var h PortHandle
			switch d.Kind {
			case port.KindData:
				h = port.NewDataInput(bn, d.Name)
			case port.KindStream:
				h = port.NewStreamInput(bn, d.Name)
			case port.KindMidi:
				h = port.NewMidiInput(bn, d.Name)
			}
			bn.inputs[d.Name] = h
			bn.inputOrder = append(bn.inputOrder, d.Name)
		case port.DirOutput:
			var h PortHandle
			switch d.Kind {
			case port.KindData:
				h = port.NewDataOutput(bn, d.Name)
			case port.KindStream:
				h = port.NewStreamOutput(bn, d.Name)
			case port.KindMidi:
				h = port.NewMidiOutput(bn, d.Name)
			}
			bn.outputs[d.Name] = h
			bn.outputOrder = append(bn.outputOrder, d.Name)
		}
	}
	return bn
}

// NodeName implements port.NodeRef.
func (bn *BaseNode) NodeName() string { return bn.name }

func (bn *BaseNode) Name() string { return bn.name }
func (bn *BaseNode) Type() string { return bn.typeName }

func (bn *BaseNode) Inputs() []PortHandle {
	out := make([]PortHandle, 0, len(bn.inputOrder))
	for _, name := range bn.inputOrder {
		out = append(out, bn.inputs[name])
	}
	return out
}

func (bn *BaseNode) Outputs() []PortHandle {
	out := make([]PortHandle, 0, len(bn.outputOrder))
	for _, name := range bn.outputOrder {
		out = append(out, bn.outputs[name])
	}
	return out
}

func (bn *BaseNode) GetInput(name string) (PortHandle, error) {
	if p, ok := bn.inputs[name]; ok {
		return p, nil
	}
	return nil, &LookupError{Kind: "input", Name: bn.typeName + "." + name}
}

func (bn *BaseNode) GetOutput(name string) (PortHandle, error) {
	if p, ok := bn.outputs[name]; ok {
		return p, nil
	}
	return nil, &LookupError{Kind: "output", Name: bn.typeName + "." + name}
}

func (bn *BaseNode) GetPort(name string) (PortHandle, error) {
	if p, ok := bn.inputs[name]; ok {
		return p, nil
	}
	if p, ok := bn.outputs[name]; ok {
		return p, nil
	}
	return nil, &LookupError{Kind: "port", Name: bn.typeName + "." + name}
}

// Exports returns the node's introspection dictionary. Callers wanting to
// publish a value should assign into the returned map directly, e.g.
// bn.Exports()["Device"] = name.
func (bn *BaseNode) Exports() map[string]any { return bn.exports }

// SetExport is a small convenience wrapper over Exports()[key] = value.
func (bn *BaseNode) SetExport(key string, value any) { bn.exports[key] = value }

// Teardown is a no-op by default; node types with resources to release
// (open files, device handles) override it.
func (bn *BaseNode) Teardown() {}

// typed port accessors used by concrete node Render implementations,
// where a plain PortHandle isn't enough (need Read/Write).

func MustDataInput(n *BaseNode, name string) *port.DataInput {
	return n.inputs[name].(*port.DataInput)
}

func MustDataOutput(n *BaseNode, name string) *port.DataOutput {
	return n.outputs[name].(*port.DataOutput)
}

func MustStreamInput(n *BaseNode, name string) *port.StreamInput {
	return n.inputs[name].(*port.StreamInput)
}

func MustStreamOutput(n *BaseNode, name string) *port.StreamOutput {
	return n.outputs[name].(*port.StreamOutput)
}

func MustMidiInput(n *BaseNode, name string) *port.MidiInput {
	return n.inputs[name].(*port.MidiInput)
}

func MustMidiOutput(n *BaseNode, name string) *port.MidiOutput {
	return n.outputs[name].(*port.MidiOutput)
}
