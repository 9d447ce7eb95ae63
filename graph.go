// Package siggraph implements the graph engine (C5), its render loop
// (C6), and the connection registry (C2) the rest of the engine is
// built on: a directed graph of typed nodes, evaluated in topological
// order once per block tick.
package siggraph

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/port"
)

// BlockSyncQueue is registered by sink nodes (PlaybackNode) so the
// render loop's barrier can wait for their consumer thread to
// acknowledge every block pushed this tick before the clock advances.
type BlockSyncQueue interface {
	Join()
}

// Graph holds the node registry, the connection list, the dependency
// map derived from it, and the block-sync queues the render barrier
// waits on. All mutation methods serialize on an internal lock that is
// also held for the duration of a render tick, so a tick always sees a
// consistent snapshot and a mutation never lands mid-tick.
type Graph struct {
	mu sync.Mutex

	sampleRate  int
	blockSize   int
	globalClock int64

	nodeOrder []string
	nodes     map[string]node.Node
	identity  map[node.Node]bool
	ids       map[string]uuid.UUID

	connections []*Connection

	deps     map[string]map[string]bool
	depOrder map[string][]string

	queues []BlockSyncQueue
}

// NewGraph creates an empty graph rendering at the given sample rate
// and block size.
func NewGraph(sampleRate, blockSize int) *Graph {
	return &Graph{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		nodes:      make(map[string]node.Node),
		identity:   make(map[node.Node]bool),
		ids:        make(map[string]uuid.UUID),
		deps:       make(map[string]map[string]bool),
		depOrder:   make(map[string][]string),
	}
}

func (g *Graph) SampleRate() int     { return g.sampleRate }
func (g *Graph) BlockSize() int      { return g.blockSize }
func (g *Graph) GlobalClock() int64 { g.mu.Lock(); defer g.mu.Unlock(); return g.globalClock }

// NodeNames returns node names in insertion order.
func (g *Graph) NodeNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.nodeOrder...)
}

// AddNode registers a node under its own name. It rejects a node whose
// name is already taken, and rejects adding the same node value twice
// (duplicate identity), matching the two duplicate checks of the
// original add_node.
func (g *Graph) AddNode(n node.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.identity[n] {
		return &DuplicateError{Kind: "node identity", Name: n.Name()}
	}
	if _, exists := g.nodes[n.Name()]; exists {
		return &DuplicateError{Kind: "node", Name: n.Name()}
	}

	g.nodes[n.Name()] = n
	g.identity[n] = true
	g.ids[n.Name()] = uuid.New()
	g.nodeOrder = append(g.nodeOrder, n.Name())
	g.deps[n.Name()] = make(map[string]bool)
	return nil
}

// GetNode looks up a node by name.
func (g *Graph) GetNode(name string) (node.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	if !ok {
		return nil, newLookupError("node", name)
	}
	return n, nil
}

// RemoveNode detaches every connection touching the node (its inputs
// first, then its outputs), drops it from the node list and dependency
// map, and finally runs its teardown hook.
func (g *Graph) RemoveNode(name string) error {
	g.mu.Lock()
	n, ok := g.nodes[name]
	if !ok {
		g.mu.Unlock()
		return newLookupError("node", name)
	}

	for _, in := range n.Inputs() {
		sink := Port{NodeName: name, PortName: in.Name()}
		if c := g.connectionAtSink(sink); c != nil {
			g.disconnectLocked(c)
		}
	}
	for _, out := range n.Outputs() {
		src := Port{NodeName: name, PortName: out.Name()}
		for _, c := range g.connectionsFromSource(src) {
			g.disconnectLocked(c)
		}
	}

	delete(g.nodes, name)
	delete(g.identity, n)
	delete(g.ids, name)
	delete(g.deps, name)
	delete(g.depOrder, name)
	for i, nm := range g.nodeOrder {
		if nm == name {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
	g.mu.Unlock()

	n.Teardown()
	return nil
}

// AddConnection connects src (an output port) to dst (an input port).
// It is idempotent if the same connected edge already exists, implicitly
// replaces dst's existing connection if any, rejects kind mismatches,
// and rejects a connection that would make the dependency graph
// cyclic, leaving the graph untouched in that case.
func (g *Graph) AddConnection(src, dst Port) (*Connection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing := g.connectionAtSink(dst); existing != nil && existing.Source == src && existing.Connected {
		return existing, nil
	}

	srcNode, ok := g.nodes[src.NodeName]
	if !ok {
		return nil, newLookupError("node", src.NodeName)
	}
	dstNode, ok := g.nodes[dst.NodeName]
	if !ok {
		return nil, newLookupError("node", dst.NodeName)
	}

	srcPort, err := srcNode.GetOutput(src.PortName)
	if err != nil {
		return nil, err
	}
	dstPort, err := dstNode.GetInput(dst.PortName)
	if err != nil {
		return nil, err
	}
	if srcPort.Kind() != dstPort.Kind() {
		return nil, &KindMismatch{
			Source: src.NodeName + "." + src.PortName, Sink: dst.NodeName + "." + dst.PortName,
			SourceKind: srcPort.Kind().String(), SinkKind: dstPort.Kind().String(),
		}
	}

	if g.reachable(src.NodeName, dst.NodeName) {
		return nil, &CycleError{Source: src.NodeName, Sink: dst.NodeName}
	}

	if existing := g.connectionAtSink(dst); existing != nil {
		g.disconnectLocked(existing)
	}

	conn := &Connection{Source: src, Sink: dst, Connected: true}
	g.connections = append(g.connections, conn)
	g.addDependency(dst.NodeName, src.NodeName)
	setPortConnected(dstPort, true)

	if ct, ok := srcNode.(node.ConnectionTracker); ok {
		ct.AddOutputSink(src.PortName, dst)
	}
	if ct, ok := dstNode.(node.ConnectionTracker); ok {
		srcCopy := src
		ct.SetInputSource(dst.PortName, &srcCopy)
	}

	return conn, nil
}

// RemoveConnection removes the edge src->dst if it exists. It is a
// no-op if absent.
func (g *Graph) RemoveConnection(src, dst Port) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.connectionAtSink(dst)
	if c == nil || c.Source != src {
		return nil
	}
	g.disconnectLocked(c)
	return nil
}

// GetConnection returns the connection src->dst. If none exists and
// returnDisconnected is true, a fresh disconnected record is returned
// instead of an error (useful for expression evaluation that wants to
// refer to a prospective edge).
func (g *Graph) GetConnection(src, dst Port, returnDisconnected bool) (*Connection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.connections {
		if c.Source == src && c.Sink == dst {
			return c, nil
		}
	}
	if returnDisconnected {
		return &Connection{Source: src, Sink: dst, Connected: false}, nil
	}
	return nil, newLookupError("connection", src.NodeName+"."+src.PortName+"->"+dst.NodeName+"."+dst.PortName)
}

// UnlinkPort removes every connection touching port p, whether p is a
// source or a sink, and returns the removed connections.
func (g *Graph) UnlinkPort(p Port) []*Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	var removed []*Connection
	if c := g.connectionAtSink(p); c != nil {
		removed = append(removed, c)
		g.disconnectLocked(c)
	}
	for _, c := range g.connectionsFromSource(p) {
		removed = append(removed, c)
		g.disconnectLocked(c)
	}
	return removed
}

// UnlinkNode removes every connection touching any port of the named
// node, without removing the node itself, and returns the removed
// connections.
func (g *Graph) UnlinkNode(name string) ([]*Connection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[name]
	if !ok {
		return nil, newLookupError("node", name)
	}
	var removed []*Connection
	for _, in := range n.Inputs() {
		sink := Port{NodeName: name, PortName: in.Name()}
		if c := g.connectionAtSink(sink); c != nil {
			removed = append(removed, c)
			g.disconnectLocked(c)
		}
	}
	for _, out := range n.Outputs() {
		src := Port{NodeName: name, PortName: out.Name()}
		for _, c := range g.connectionsFromSource(src) {
			removed = append(removed, c)
			g.disconnectLocked(c)
		}
	}
	return removed, nil
}

// RegisterQueue adds a block-sync queue the render barrier must join
// every tick. Sink nodes call this from their constructor.
func (g *Graph) RegisterQueue(q BlockSyncQueue) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queues = append(g.queues, q)
}

// RenderGraph evaluates the graph once: it builds a render context,
// walks nodes in topological order invoking Render, propagates each
// node's output buffers across its connected edges, joins every
// registered block-sync queue, and increments the global clock. The
// graph lock is held for the whole tick, so a mutation from another
// goroutine waits until the tick (including the barrier join) completes.
func (g *Graph) RenderGraph() {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx := port.Context{GlobalClock: g.globalClock, SampleRate: g.sampleRate, BlockSize: g.blockSize}
	order := g.topoOrderLocked()

	for _, name := range order {
		n := g.nodes[name]
		resetUnconnectedMidi(n, ctx.BlockSize)
		if err := n.Render(ctx); err != nil {
			log.Printf("siggraph: node %q render error: %v", name, err)
			continue
		}
		g.propagateOutputsLocked(n, name)
	}

	for _, q := range g.queues {
		q.Join()
	}

	g.globalClock++
}

func (g *Graph) propagateOutputsLocked(n node.Node, name string) {
	for _, out := range n.Outputs() {
		src := Port{NodeName: name, PortName: out.Name()}
		for _, c := range g.connections {
			if c.Source != src || !c.Connected {
				continue
			}
			dstNode, ok := g.nodes[c.Sink.NodeName]
			if !ok {
				continue
			}
			dstPort, err := dstNode.GetInput(c.Sink.PortName)
			if err != nil {
				continue
			}
			copyBuffer(out, dstPort)
		}
	}
}

func resetUnconnectedMidi(n node.Node, blockSize int) {
	for _, in := range n.Inputs() {
		if in.Kind() != port.KindMidi {
			continue
		}
		if mi, ok := in.(*port.MidiInput); ok {
			mi.SetBlockLength(blockSize)
		}
	}
}

func copyBuffer(src, dst node.PortHandle) {
	switch s := src.(type) {
	case *port.DataOutput:
		if d, ok := dst.(*port.DataInput); ok {
			d.SetValue(s.Value())
		}
	case *port.StreamOutput:
		if d, ok := dst.(*port.StreamInput); ok {
			d.SetBuffer(s.Buffer())
		}
	case *port.MidiOutput:
		if d, ok := dst.(*port.MidiInput); ok {
			d.SetBuffer(s.Buffer())
		}
	}
}

func setPortConnected(p node.PortHandle, connected bool) {
	switch h := p.(type) {
	case *port.DataInput:
		h.SetConnected(connected)
	case *port.StreamInput:
		h.SetConnected(connected)
	case *port.MidiInput:
		h.SetConnected(connected)
	}
}

func (g *Graph) connectionAtSink(sink Port) *Connection {
	for _, c := range g.connections {
		if c.Sink == sink {
			return c
		}
	}
	return nil
}

func (g *Graph) connectionsFromSource(src Port) []*Connection {
	var out []*Connection
	for _, c := range g.connections {
		if c.Source == src {
			out = append(out, c)
		}
	}
	return out
}

func (g *Graph) disconnectLocked(c *Connection) {
	c.Connected = false
	for i, cc := range g.connections {
		if cc == c {
			g.connections = append(g.connections[:i], g.connections[i+1:]...)
			break
		}
	}

	if dstNode, ok := g.nodes[c.Sink.NodeName]; ok {
		if in, err := dstNode.GetInput(c.Sink.PortName); err == nil {
			setPortConnected(in, false)
		}
		if ct, ok := dstNode.(node.ConnectionTracker); ok {
			ct.SetInputSource(c.Sink.PortName, nil)
		}
	}
	if srcNode, ok := g.nodes[c.Source.NodeName]; ok {
		if ct, ok := srcNode.(node.ConnectionTracker); ok {
			ct.RemoveOutputSink(c.Source.PortName, c.Sink)
		}
	}

	g.removeDependencyIfUnused(c.Sink.NodeName, c.Source.NodeName)
}

func (g *Graph) addDependency(dstName, srcName string) {
	if g.deps[dstName] == nil {
		g.deps[dstName] = make(map[string]bool)
	}
	if g.deps[dstName][srcName] {
		return
	}
	g.deps[dstName][srcName] = true
	g.depOrder[dstName] = append(g.depOrder[dstName], srcName)
}

func (g *Graph) removeDependencyIfUnused(dstName, srcName string) {
	for _, c := range g.connections {
		if c.Source.NodeName == srcName && c.Sink.NodeName == dstName {
			return
		}
	}
	delete(g.deps[dstName], srcName)
	for i, nm := range g.depOrder[dstName] {
		if nm == srcName {
			g.depOrder[dstName] = append(g.depOrder[dstName][:i], g.depOrder[dstName][i+1:]...)
			break
		}
	}
}

// reachable reports whether to is a (possibly transitive) prerequisite
// of from, i.e. whether from already depends on to. A node is always
// reachable from itself, so a self-connection is a cycle of length one.
func (g *Graph) reachable(from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	var dfs func(n string) bool
	dfs = func(n string) bool {
		if n == to {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, p := range g.depOrder[n] {
			if dfs(p) {
				return true
			}
		}
		return false
	}
	for _, p := range g.depOrder[from] {
		if dfs(p) {
			return true
		}
	}
	return false
}

func (g *Graph) topoOrderLocked() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodeOrder))
	order := make([]string, 0, len(g.nodeOrder))
	var visit func(name string)
	visit = func(name string) {
		if state[name] == done || state[name] == visiting {
			return
		}
		state[name] = visiting
		for _, dep := range g.depOrder[name] {
			visit(dep)
		}
		state[name] = done
		order = append(order, name)
	}
	for _, name := range g.nodeOrder {
		visit(name)
	}
	return order
}
