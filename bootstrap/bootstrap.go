// Package bootstrap estimates branch support by resampling alignment columns
// and folding replicate topologies into a reference tree.
package bootstrap

import (
	"fmt"
	"math/rand"

	"github.com/phylotools/arbornj/progress"
	"github.com/phylotools/arbornj/seq"
	"github.com/phylotools/arbornj/tree"
)

// BuildFunc rebuilds a tree from the current (resampled) alignment state,
// reporting through the given sink. The session supplies a fresh sink slice
// per replicate.
type BuildFunc func(sink *progress.Sink) (*tree.Tree, error)

// Session runs R bootstrap replicates against one reference tree.
//
// Replicates run sequentially: every replicate mutates the same reference
// tree's support counters through the bipartition comparison, so there is
// nothing to parallelize without also serializing that step.
type Session struct {
	replicates int
	rng        *rand.Rand
}

// NewSession creates a session for the given replicate count, or nil when
// replicates <= 0 (bootstrap disabled).
func NewSession(replicates int, seed int64) *Session {
	if replicates <= 0 {
		return nil
	}

	return &Session{
		replicates: replicates,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Replicates returns R.
func (s *Session) Replicates() int {
	return s.replicates
}

// Run executes the replicates. For each one the alignment's columns are
// redrawn with replacement, a replicate tree is built, and every reference
// branch whose bipartition occurs in the replicate has its support counter
// incremented.
//
// The caller composes progress as R+1 equal slices of the parent sink: one
// already consumed by the initial tree build, the remaining R carved off
// here. Any replicate build failure aborts the whole session; partial
// support counts must not be reported as final.
func (s *Session) Run(ref *tree.Tree, aln *seq.Alignment, build BuildFunc, sink *progress.Sink) error {
	if sink == nil {
		sink = progress.NewSink(nil)
	}
	share := 1.0 / float64(s.replicates+1)

	for r := 0; r < s.replicates; r++ {
		aln.Resample(s.rng)

		replicate, err := build(sink.Child(share))
		if err != nil {
			return fmt.Errorf("bootstrap replicate %d: %w", r+1, err)
		}

		tree.CompareBootstrap(ref, replicate)
	}

	return nil
}
