// Package progress provides hierarchical weighted progress reporting.
//
// A Sink owns a [0,1] interval of the overall progress. Long-running steps
// report their own fractional completion through Report, and composing code
// carves out weighted sub-intervals for child steps with Child. The top-level
// sink forwards every update to a single callback, so a step never needs to
// know how much of the total work it represents.
//
// Example composition for a build with two bootstrap replicates:
//
//	top := progress.NewSink(func(f float64) { fmt.Printf("%.0f%%\n", f*100) })
//	first := top.Child(1.0 / 3.0)  // initial tree
//	// ... build tree, first.Report(...) ...
//	for i := 0; i < 2; i++ {
//	    rep := top.Child(1.0 / 3.0)
//	    // ... build replicate, rep.Report(...) ...
//	}
package progress

import (
	"fmt"
	"sync"
)

// Func receives cumulative progress in [0,1].
type Func func(fraction float64)

// Sink owns a slice of the overall [0,1] progress range.
//
// Report maps a step-local fraction linearly into the owned range; Child
// reserves a weighted sub-range for a nested step. All sinks created from one
// top-level sink forward to the same callback, and the forwarded cumulative
// value is kept monotonically non-decreasing even if a step reports
// out-of-order fractions.
type Sink struct {
	root  *rootState
	start float64 // absolute start of the owned range
	width float64 // absolute width of the owned range

	allocated float64 // fraction of the owned range already handed to children
}

// rootState is shared by a sink tree: the outward callback plus the
// monotonicity clamp. The mutex serializes callback invocations from the
// parallel distance-fill workers.
type rootState struct {
	mu   sync.Mutex
	fn   Func
	high float64
}

// NewSink creates a top-level sink owning the whole [0,1] range.
// A nil callback is allowed and discards all reports.
func NewSink(fn Func) *Sink {
	if fn == nil {
		fn = func(float64) {}
	}

	return &Sink{
		root:  &rootState{fn: fn},
		start: 0,
		width: 1,
	}
}

// Report maps fraction in [0,1] into the sink's owned range and forwards it
// to the top-level callback. Fractions outside [0,1] are clamped. The value
// delivered outward never decreases across the life of the sink tree.
func (s *Sink) Report(fraction float64) {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	abs := s.start + fraction*s.width

	s.root.mu.Lock()
	if abs > s.root.high {
		s.root.high = abs
	}
	high := s.root.high
	fn := s.root.fn
	s.root.mu.Unlock()

	fn(high)
}

// Done reports completion of the sink's entire range.
func (s *Sink) Done() {
	s.Report(1)
}

// Child reserves a weight-sized slice of the remaining unallocated portion of
// the sink's range and returns a new sink owning it. The parent's allocation
// cursor advances by weight.
//
// The cumulative weights requested from one parent must not exceed 1; that is
// a programming error in the composing logic, and Child panics on it rather
// than attempting to recover.
func (s *Sink) Child(weight float64) *Sink {
	if weight < 0 {
		panic(fmt.Sprintf("progress: negative child weight %v", weight))
	}
	// Tolerate float drift from repeated 1/(R+1) slices.
	const eps = 1e-9
	if s.allocated+weight > 1+eps {
		panic(fmt.Sprintf("progress: child weights exceed parent range (%v + %v > 1)", s.allocated, weight))
	}

	child := &Sink{
		root:  s.root,
		start: s.start + s.allocated*s.width,
		width: weight * s.width,
	}
	s.allocated += weight

	return child
}
