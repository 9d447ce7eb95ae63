// Package sigtest collects small test helpers shared across the
// package test suites: environment gating and a quick graph/spec
// factory tuned for fast, deterministic runs.
package sigtest

import (
	"os"
	"testing"

	"github.com/shaban/siggraph"
	"github.com/shaban/siggraph/sigspec"
)

// SkipUnlessEnv skips the test unless the given env var equals want.
// Used to gate tests that need a real audio or MIDI device present.
func SkipUnlessEnv(t *testing.T, key, want string) {
	t.Helper()
	if os.Getenv(key) != want {
		t.Skipf("skipped: set %s=%s to run", key, want)
	}
}

// IsCI reports whether the test is running under a common CI environment.
func IsCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// SmallSpec returns an AudioSpec resolving to a small block size, for
// tests that render many ticks and don't want to wait on real-sized
// buffers.
func SmallSpec() sigspec.AudioSpec {
	return sigspec.AudioSpec{LatencyHint: sigspec.LatencyLow, PreferredSampleRate: 48000}
}

// NewGraphForTest builds a Graph from SmallSpec, for tests that only
// care about graph wiring and rendering, not device I/O.
func NewGraphForTest(t *testing.T) *siggraph.Graph {
	t.Helper()
	r := sigspec.Resolve(SmallSpec())
	return siggraph.NewGraph(r.SampleRate, r.BlockSize)
}
