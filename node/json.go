package node

import "github.com/shaban/siggraph/port"

// JSON mirrors the introspection Node shape from the command API contract.
type JSON struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Id      string         `json:"id,omitempty"`
	Inputs  []InputJSON    `json:"inputs"`
	Outputs []OutputJSON   `json:"outputs"`
	Exports map[string]any `json:"exports"`
}

type InputJSON struct {
	NodeName string         `json:"node_name"`
	PortName string         `json:"port_name"`
	Type     string         `json:"type"`
	Source   *port.JSONPort `json:"source"`
}

type OutputJSON struct {
	NodeName string         `json:"node_name"`
	PortName string         `json:"port_name"`
	Type     string         `json:"type"`
	Sinks    []port.JSONPort `json:"sinks"`
}

// ConnectionTracker is implemented by *BaseNode. The graph engine uses it
// to keep a node's introspection view in sync as connections are added
// and removed, without the port layer needing to know about the engine's
// connection registry.
type ConnectionTracker interface {
	SetInputSource(portName string, src *port.JSONPort)
	AddOutputSink(portName string, sink port.JSONPort)
	RemoveOutputSink(portName string, sink port.JSONPort)
}

// inputPeers/outputPeers are maintained by the graph engine as connections
// are added and removed; they hold only the data needed for introspection.
func (bn *BaseNode) ensurePeerMaps() {
	if bn.inputPeers == nil {
		bn.inputPeers = make(map[string]*port.JSONPort)
	}
	if bn.outputPeers == nil {
		bn.outputPeers = make(map[string][]port.JSONPort)
	}
}

// SetInputSource records (or clears, with nil) the connected source port
// for introspection. Called by the graph engine only.
func (bn *BaseNode) SetInputSource(portName string, src *port.JSONPort) {
	bn.ensurePeerMaps()
	if src == nil {
		delete(bn.inputPeers, portName)
		return
	}
	bn.inputPeers[portName] = src
}

// AddOutputSink records a newly connected sink for introspection. Called
// by the graph engine only.
func (bn *BaseNode) AddOutputSink(portName string, sink port.JSONPort) {
	bn.ensurePeerMaps()
	bn.outputPeers[portName] = append(bn.outputPeers[portName], sink)
}

// RemoveOutputSink undoes AddOutputSink. Called by the graph engine only.
func (bn *BaseNode) RemoveOutputSink(portName string, sink port.JSONPort) {
	bn.ensurePeerMaps()
	sinks := bn.outputPeers[portName]
	for i, s := range sinks {
		if s == sink {
			bn.outputPeers[portName] = append(sinks[:i], sinks[i+1:]...)
			return
		}
	}
}

// AsJSON returns the full introspection view of this node.
func (bn *BaseNode) AsJSON() JSON {
	bn.ensurePeerMaps()
	j := JSON{
		Name:    bn.name,
		Type:    bn.typeName,
		Exports: bn.exports,
	}
	for _, name := range bn.inputOrder {
		p := bn.inputs[name]
		j.Inputs = append(j.Inputs, InputJSON{
			NodeName: bn.name,
			PortName: name,
			Type:     p.Kind().String(),
			Source:   bn.inputPeers[name],
		})
	}
	for _, name := range bn.outputOrder {
		p := bn.outputs[name]
		sinks := bn.outputPeers[name]
		out := OutputJSON{
			NodeName: bn.name,
			PortName: name,
			Type:     p.Kind().String(),
			Sinks:    append([]port.JSONPort(nil), sinks...),
		}
		j.Outputs = append(j.Outputs, out)
	}
	return j
}
