package siggraph

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shaban/siggraph/node"
	"github.com/shaban/siggraph/opqueue"
)

// Engine owns the render thread (C6): it calls Graph.RenderGraph in a
// tight loop until asked to stop, advancing the block clock once per
// successful tick. Stop is cooperative — the loop finishes whatever
// tick is in progress before checking the stop flag.
//
// It also owns the command API's mutation queue (§5/§6): callers on the
// control thread (the expression layer, HTTP handlers) never touch the
// graph's lock directly. They call Engine's AddNode/AddConnection/...
// wrappers, which go through an opqueue.Queue, so concurrent
// control-thread callers apply their mutations one at a time. The order
// among concurrent callers is not defined.
type Engine struct {
	graph *Graph
	cmds  *opqueue.Queue

	mu      sync.Mutex
	running int32
	stop    int32
	done    chan struct{}
}

// NewEngine creates a render loop over an existing graph.
func NewEngine(g *Graph) *Engine {
	return &Engine{graph: g, cmds: opqueue.New()}
}

// Graph returns the engine's underlying graph.
func (e *Engine) Graph() *Graph { return e.graph }

// AddNode serializes a node addition through the command queue.
func (e *Engine) AddNode(n node.Node) error {
	return e.cmds.Submit(context.Background(), opqueue.Func(func(context.Context) error {
		return e.graph.AddNode(n)
	}))
}

// RemoveNode serializes a node removal through the command queue.
func (e *Engine) RemoveNode(name string) error {
	return e.cmds.Submit(context.Background(), opqueue.Func(func(context.Context) error {
		return e.graph.RemoveNode(name)
	}))
}

// AddConnection serializes a connection addition through the command queue.
func (e *Engine) AddConnection(src, dst Port) (*Connection, error) {
	var conn *Connection
	err := e.cmds.Submit(context.Background(), opqueue.Func(func(context.Context) error {
		c, err := e.graph.AddConnection(src, dst)
		conn = c
		return err
	}))
	return conn, err
}

// RemoveConnection serializes a connection removal through the command queue.
func (e *Engine) RemoveConnection(src, dst Port) error {
	return e.cmds.Submit(context.Background(), opqueue.Func(func(context.Context) error {
		return e.graph.RemoveConnection(src, dst)
	}))
}

// UnlinkPort serializes UnlinkPort through the command queue.
func (e *Engine) UnlinkPort(p Port) []*Connection {
	var removed []*Connection
	_ = e.cmds.Submit(context.Background(), opqueue.Func(func(context.Context) error {
		removed = e.graph.UnlinkPort(p)
		return nil
	}))
	return removed
}

// UnlinkNode serializes UnlinkNode through the command queue.
func (e *Engine) UnlinkNode(name string) ([]*Connection, error) {
	var removed []*Connection
	err := e.cmds.Submit(context.Background(), opqueue.Func(func(context.Context) error {
		r, err := e.graph.UnlinkNode(name)
		removed = r
		return err
	}))
	return removed, err
}

// GetNode looks up a node by name. Reads don't mutate the graph, so
// they bypass the command queue and take only the graph's own lock.
func (e *Engine) GetNode(name string) (node.Node, error) {
	return e.graph.GetNode(name)
}

// GetConnection returns the connection src->dst, or a fresh disconnected
// record when returnDisconnected is set.
func (e *Engine) GetConnection(src, dst Port, returnDisconnected bool) (*Connection, error) {
	return e.graph.GetConnection(src, dst, returnDisconnected)
}

// ExportState returns the graph's serializable introspection view.
func (e *Engine) ExportState() StateJSON {
	return e.graph.ExportState()
}

// StartRendering launches the render loop on a dedicated goroutine. It
// is a no-op if the loop is already running.
func (e *Engine) StartRendering() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if atomic.LoadInt32(&e.running) == 1 {
		return
	}
	atomic.StoreInt32(&e.running, 1)
	atomic.StoreInt32(&e.stop, 0)
	e.done = make(chan struct{})
	go e.loop(e.done)
}

func (e *Engine) loop(done chan struct{}) {
	defer close(done)
	defer atomic.StoreInt32(&e.running, 0)
	for atomic.LoadInt32(&e.stop) == 0 {
		e.graph.RenderGraph()
	}
}

// StopRendering sets the stop flag and waits for the current tick, if
// any, to finish before returning.
func (e *Engine) StopRendering() {
	atomic.StoreInt32(&e.stop, 1)
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether the render loop is active.
func (e *Engine) Running() bool { return atomic.LoadInt32(&e.running) == 1 }

// Shutdown stops the render loop and tears down every node in the
// graph, so no block-sync queue is left blocking a future barrier.
func (e *Engine) Shutdown() {
	e.StopRendering()
	for _, name := range e.graph.NodeNames() {
		_ = e.graph.RemoveNode(name)
	}
	e.cmds.Close()
}
