// Package planner selects a tree-construction strategy from the matrix size
// and a memory budget.
//
// Strategy order mirrors the memory appetite of the candidates: the Full
// strategy keeps both the dense matrix and a fully sorted candidate structure
// resident; Bounded truncates the candidate structure to k columns per row;
// Naive keeps only the dense matrix; Disk pages matrix rows through a scratch
// directory and keeps just k candidate columns in memory. Explicit force
// hints short-circuit the footprint checks, trading an advisory warning for a
// refusal.
package planner

import (
	"fmt"
	"math"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/nj"
)

const (
	// DefaultCellSize is the size of one distance cell: a float64.
	DefaultCellSize = 8

	// DefaultPairSize is the size of one sorted-pair candidate record:
	// distance, partner slot, and generation stamp.
	DefaultPairSize = 16

	// minSortedFraction is the smallest k/n ratio at which the bounded
	// strategy is still considered efficient. Below it, paging the matrix to
	// disk beats thrashing a starved candidate structure.
	minSortedFraction = 0.5

	// minDiskColumns guarantees the disk strategy enough candidate columns to
	// make progress even under extreme scarcity.
	minDiskColumns = 5
)

// Request carries the sizing inputs and hints for one strategy selection.
// The zero values of CellSize and PairSize select the defaults.
type Request struct {
	N      int
	Budget int64

	CellSize int
	PairSize int

	ForceFull  bool
	ForceNaive bool
	ForceDisk  bool

	// AuxMemoryPercent devotes a percentage of the matrix dimension to the
	// sorted candidate structure, implying the Bounded strategy. Valid range
	// is [0,100]; negative means unset.
	AuxMemoryPercent int
}

// Decision is the outcome of a strategy selection.
type Decision struct {
	Strategy   format.Strategy
	AuxColumns int // k, meaningful for Bounded and Disk

	DenseFootprint  int64 // bytes for the resident n x n matrix
	SortedFootprint int64 // bytes for the selected candidate structure
}

// Builder returns the tree builder implementing the decision.
func (d Decision) Builder() (nj.Builder, error) {
	return nj.ForStrategy(d.Strategy, d.AuxColumns)
}

// Plan selects a strategy for the request.
//
// The first applicable branch wins: Full when both the matrix and a complete
// candidate structure fit the budget (or forced), Bounded when a percentage
// hint is given or a truncated structure still covers a useful fraction of n,
// Naive only when explicitly requested, Disk as the fallback. Any hint
// disables the automatic footprint branches, matching the principle that an
// explicit request is honored with at most a warning.
func Plan(req Request) (Decision, []errs.Warning, error) {
	if req.N <= 0 {
		return Decision{}, nil, fmt.Errorf("%w: matrix size %d", errs.ErrEmptyAlignment, req.N)
	}
	if moreThanOne(req.ForceFull, req.ForceNaive, req.ForceDisk) {
		return Decision{}, nil, fmt.Errorf("%w: multiple strategies forced", errs.ErrConflictingStrategies)
	}
	hasPercent := req.AuxMemoryPercent >= 0
	if hasPercent && req.AuxMemoryPercent > 100 {
		return Decision{}, nil, fmt.Errorf("%w: %d not in [0,100]", errs.ErrInvalidPercentage, req.AuxMemoryPercent)
	}

	cellSize := req.CellSize
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	pairSize := req.PairSize
	if pairSize <= 0 {
		pairSize = DefaultPairSize
	}

	n := int64(req.N)
	dense := n * n * int64(cellSize)
	fullSorted := n * n * int64(pairSize)

	maxBoundedK := clampInt64((req.Budget-dense/2)/(n*int64(pairSize)), 0, n)
	diskFloor := int64(min(minDiskColumns, req.N))
	maxDiskK := clampInt64(req.Budget/(n*int64(cellSize+pairSize)), diskFloor, n)

	auto := !req.ForceFull && !req.ForceNaive && !req.ForceDisk && !hasPercent

	var warnings []errs.Warning

	switch {
	case req.ForceFull || (auto && dense+fullSorted <= req.Budget):
		if dense+fullSorted > req.Budget {
			warnings = append(warnings, errs.Warnf(errs.WarnForcedStrategyOverBudget,
				"full strategy needs %d bytes but the budget is %d", dense+fullSorted, req.Budget))
		}

		return Decision{
			Strategy:        format.StrategyFull,
			AuxColumns:      req.N,
			DenseFootprint:  dense,
			SortedFootprint: fullSorted,
		}, warnings, nil

	case hasPercent || (auto && float64(maxBoundedK) >= float64(req.N)*minSortedFraction):
		k := maxBoundedK
		if hasPercent {
			k = int64(math.Round(float64(req.N) * float64(req.AuxMemoryPercent) / 100))
			if k > maxBoundedK {
				warnings = append(warnings, errs.Warnf(errs.WarnPercentageOverBudget,
					"%d%% of the candidate structure needs %d columns but the budget covers %d",
					req.AuxMemoryPercent, k, maxBoundedK))
			}
		}
		if k < 1 {
			k = 1
		}
		if float64(k) < float64(req.N)*minSortedFraction {
			warnings = append(warnings, errs.Warnf(errs.WarnLowAuxiliaryColumns,
				"bounded strategy has %d of %d candidate columns; the disk strategy may be faster", k, req.N))
		}

		return Decision{
			Strategy:        format.StrategyBounded,
			AuxColumns:      int(k),
			DenseFootprint:  dense,
			SortedFootprint: n * k * int64(pairSize),
		}, warnings, nil

	case req.ForceNaive:
		return Decision{
			Strategy:       format.StrategyNaive,
			DenseFootprint: dense,
		}, warnings, nil

	default:
		return Decision{
			Strategy:        format.StrategyDisk,
			AuxColumns:      int(maxDiskK),
			SortedFootprint: n * maxDiskK * int64(pairSize),
		}, warnings, nil
	}
}

func moreThanOne(flags ...bool) bool {
	count := 0
	for _, f := range flags {
		if f {
			count++
		}
	}

	return count > 1
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
