package siggraph

import (
	"errors"
	"fmt"

	"github.com/shaban/siggraph/node"
)

// LookupError reports a node, port, or connection name that does not
// exist. It is the same type node.BaseNode returns for port lookups, so
// a caller can use a single errors.As(&LookupError{}) regardless of
// which layer raised it.
type LookupError = node.LookupError

func newLookupError(kind, name string) *LookupError {
	return &LookupError{Kind: kind, Name: name}
}

// DuplicateError reports an AddNode call whose name or identity already
// exists in the graph.
type DuplicateError struct {
	Kind string // "node" or "node identity"
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Kind, e.Name)
}

// KindMismatch reports an attempted connection between two ports of
// different kinds (data/stream/midi).
type KindMismatch struct {
	Source, Sink         string
	SourceKind, SinkKind string
}

func (e *KindMismatch) Error() string {
	return fmt.Sprintf("cannot connect %s (%s) to %s (%s): kind mismatch", e.Source, e.SourceKind, e.Sink, e.SinkKind)
}

// CycleError reports a proposed connection that would make the
// dependency graph cyclic. The graph is left unchanged.
type CycleError struct {
	Source, Sink string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("connecting %s to %s would introduce a cycle", e.Source, e.Sink)
}

// ArgumentError reports an invalid argument to a node constructor or to
// a port read.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

// DeviceError reports an audio or MIDI device failing to open or close.
type DeviceError struct {
	Msg string
	Err error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ErrUnderrun is reported (as a counter and a log line, never a panic)
// when a playback queue was empty on a device callback.
var ErrUnderrun = errors.New("playback queue empty on callback")

// ErrOverrun is reported (as a counter and a log line, never a panic or
// a blocked render thread) when a playback queue could not accept a
// block the render loop tried to push because the device callback has
// fallen behind.
var ErrOverrun = errors.New("playback queue full on push")
