package dist

import (
	"math"

	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/seq"
)

// JukesCantor implements the Jukes-Cantor distance correction.
//
// For DNA: d = -3/4 ln(1 - 4p/3). For protein the 20-state analogue is used:
// d = -19/20 ln(1 - 20p/19). In both cases p is the proportion of mismatches
// over positions valid in both sequences; saturated pairs cap at MaxDistance.
type JukesCantor struct{}

var _ Engine = JukesCantor{}

// Distance returns the Jukes-Cantor corrected distance between a and b.
func (JukesCantor) Distance(a, b *seq.Encoded) float64 {
	if a.Type == format.SequenceDNA {
		valid, diffs, _ := dnaCounts(a, b)
		return jcCorrect(valid, diffs, 4.0/3.0)
	}

	valid, diffs := proteinCounts(a, b)

	return jcCorrect(valid, diffs, 20.0/19.0)
}

// jcCorrect applies d = -(1/factor) ln(1 - factor*p).
func jcCorrect(valid, diffs int, factor float64) float64 {
	if valid == 0 || diffs == 0 {
		return 0
	}

	p := float64(diffs) / float64(valid)
	arg := 1 - factor*p
	if arg <= 0 {
		return MaxDistance
	}

	d := -math.Log(arg) / factor
	if d > MaxDistance {
		return MaxDistance
	}

	return d
}
