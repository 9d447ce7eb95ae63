package siggraph

import "github.com/shaban/siggraph/node"

// ConnectionJSON mirrors the introspection Connection shape.
type ConnectionJSON struct {
	Source Port `json:"source"`
	Sink   Port `json:"sink"`
}

// StateJSON is the serializable view export_state returns: enough to
// reconstruct the graph's topology and every node's exported state.
type StateJSON struct {
	GlobalClock int64            `json:"global_clock"`
	SampleRate  int              `json:"sample_rate"`
	BlockSize   int              `json:"block_size"`
	Nodes       []node.JSON      `json:"nodes"`
	Connections []ConnectionJSON `json:"connections"`
}

// ExportState returns a snapshot of the graph sufficient to reconstruct
// its topology and every node's introspection view.
func (g *Graph) ExportState() StateJSON {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := StateJSON{
		GlobalClock: g.globalClock,
		SampleRate:  g.sampleRate,
		BlockSize:   g.blockSize,
	}
	for _, name := range g.nodeOrder {
		j := g.nodes[name].AsJSON()
		j.Id = g.ids[name].String()
		st.Nodes = append(st.Nodes, j)
	}
	for _, c := range g.connections {
		st.Connections = append(st.Connections, ConnectionJSON{Source: c.Source, Sink: c.Sink})
	}
	return st
}
