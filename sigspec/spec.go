// Package sigspec resolves a coarse latency preference into the concrete
// sample rate and block size an Engine renders at, the way the teacher's
// AudioSpec resolver maps a session's latency hint onto device buffer
// sizes.
package sigspec

// LatencyClass is a coarse hint a caller supplies instead of an exact
// block size, left to Resolve to turn into one.
type LatencyClass int

const (
	LatencyDefault LatencyClass = iota
	LatencyLow
	LatencyHigh
)

// AudioSpec is the caller-facing preference: any field left at its zero
// value is filled in by Resolve with a sensible default.
type AudioSpec struct {
	LatencyHint         LatencyClass
	BlockSize           int
	PreferredSampleRate int
}

// Resolved is the concrete engine configuration Resolve produces.
type Resolved struct {
	SampleRate int
	BlockSize  int
}

// Resolve converts a caller's AudioSpec preferences into a concrete
// Resolved configuration. Explicit BlockSize always wins over LatencyHint.
func Resolve(s AudioSpec) Resolved {
	rate := s.PreferredSampleRate
	if rate <= 0 {
		rate = 48000
	}

	block := s.BlockSize
	if block <= 0 {
		switch s.LatencyHint {
		case LatencyLow:
			if rate <= 48000 {
				block = 64
			} else {
				block = 128
			}
		case LatencyHigh:
			block = 1024
		default:
			block = 256
		}
	}

	return Resolved{SampleRate: rate, BlockSize: block}
}
