package siggraph

import "github.com/shaban/siggraph/port"

// Port identifies an endpoint by its qualified (node name, port name)
// pair. It is the wire shape of the introspection JSON's Port type.
type Port = port.JSONPort

// Connection is a directed edge from an output port (source) to an
// input port (sink). Two connections are equal iff their source and
// sink are equal, regardless of Connected.
type Connection struct {
	Source    Port
	Sink      Port
	Connected bool
}
