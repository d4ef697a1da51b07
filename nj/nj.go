// Package nj implements the neighbour-joining tree builders invoked by the
// memory-budget planner.
//
// All four strategies share one merge core (canonical Saitou-Nei neighbour
// joining) and differ in how they find the next pair to join and where the
// working matrix lives:
//
//   - Full: in-memory matrix, every row keeps a fully sorted candidate list.
//   - Bounded: in-memory matrix, candidate lists truncated to k columns.
//   - Naive: in-memory matrix, exhaustive O(n) row scans per merge step; the
//     correctness baseline for the other strategies.
//   - Disk: candidate lists of k columns in memory, matrix rows paged through
//     the store (intended for the disk-backed variant).
//
// Every builder consumes rows exclusively through the matrix.Store contract,
// reports through progress.Sink, and produces a tree whose leaf set is
// exactly the input names.
package nj

import (
	"fmt"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/matrix"
	"github.com/phylotools/arbornj/progress"
	"github.com/phylotools/arbornj/tree"
)

// Builder turns a filled distance matrix into a tree. This is the uniform
// contract between the planner and the clustering strategies.
type Builder interface {
	Build(store matrix.Store, names []string, allowNegative bool, sink *progress.Sink) (*tree.Tree, error)
}

// ForStrategy returns the builder implementing the given strategy.
// k is the auxiliary column count and is ignored by Full and Naive.
func ForStrategy(s format.Strategy, k int) (Builder, error) {
	switch s {
	case format.StrategyFull:
		return &SortedBuilder{}, nil
	case format.StrategyBounded:
		return &SortedBuilder{MaxColumns: k}, nil
	case format.StrategyNaive:
		return &NaiveBuilder{}, nil
	case format.StrategyDisk:
		return &SortedBuilder{MaxColumns: k, Paged: true}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", s)
	}
}

func validateInput(store matrix.Store, names []string) (int, error) {
	n := store.Len()
	if n == 0 {
		return 0, errs.ErrEmptyAlignment
	}
	if len(names) != n {
		return 0, fmt.Errorf("%w: %d names for %d rows", errs.ErrSequenceCountMismatch, len(names), n)
	}

	return n, nil
}
