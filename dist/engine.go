// Package dist computes evolutionary distances between packed sequences and
// fills distance matrices in parallel.
//
// The two shipped engines implement the classical corrections: Jukes-Cantor
// and Kimura (two-parameter for DNA, Kimura's protein correction otherwise).
// Both operate on the word-packed buffers produced by the seq package, so a
// pairwise comparison is a handful of XOR/popcount loops rather than a
// per-character branch.
package dist

import (
	"fmt"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/seq"
)

// MaxDistance caps corrected distances whose logarithm argument degenerates
// (saturated divergence). Matches the behavior of capping rather than
// returning infinity so downstream clustering stays finite.
const MaxDistance = 10.0

// Engine computes the evolutionary distance between two encoded sequences.
//
// Implementations must be pure functions of their inputs: Distance(a, b) and
// Distance(b, a) return the identical value, and repeated calls always agree.
// The parallel fill relies on this to keep the matrix symmetric without
// cross-worker coordination.
type Engine interface {
	Distance(a, b *seq.Encoded) float64
}

// NewEngine returns the engine for the given model, or a ConfigurationError
// for a model outside the closed set.
func NewEngine(model format.Model) (Engine, error) {
	switch model {
	case format.ModelJukesCantor:
		return JukesCantor{}, nil
	case format.ModelKimura:
		return Kimura{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownModel, model)
	}
}
