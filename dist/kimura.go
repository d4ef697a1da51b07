package dist

import (
	"math"

	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/seq"
)

// Kimura implements the Kimura distance corrections.
//
// For DNA this is the two-parameter model, which weighs transitions (A<->G,
// C<->T) separately from transversions:
//
//	d = -1/2 ln((1-2P-Q) sqrt(1-2Q))
//
// with P the transition and Q the transversion proportion. For protein it is
// Kimura's 1983 approximation d = -ln(1 - p - p^2/5). Degenerate arguments
// cap at MaxDistance.
type Kimura struct{}

var _ Engine = Kimura{}

// Distance returns the Kimura corrected distance between a and b.
func (Kimura) Distance(a, b *seq.Encoded) float64 {
	if a.Type == format.SequenceDNA {
		return kimuraDNA(a, b)
	}

	return kimuraProtein(a, b)
}

func kimuraDNA(a, b *seq.Encoded) float64 {
	valid, diffs, transitions := dnaCounts(a, b)
	if valid == 0 || diffs == 0 {
		return 0
	}

	p := float64(transitions) / float64(valid)
	q := float64(diffs-transitions) / float64(valid)

	inner := 1 - 2*q
	outer := 1 - 2*p - q
	if inner <= 0 || outer <= 0 {
		return MaxDistance
	}

	d := -0.5 * math.Log(outer*math.Sqrt(inner))
	if d > MaxDistance {
		return MaxDistance
	}

	return d
}

func kimuraProtein(a, b *seq.Encoded) float64 {
	valid, diffs := proteinCounts(a, b)
	if valid == 0 || diffs == 0 {
		return 0
	}

	p := float64(diffs) / float64(valid)
	arg := 1 - p - p*p/5
	if arg <= 0 {
		return MaxDistance
	}

	d := -math.Log(arg)
	if d > MaxDistance {
		return MaxDistance
	}

	return d
}
