package nj

import (
	"github.com/phylotools/arbornj/matrix"
	"github.com/phylotools/arbornj/progress"
	"github.com/phylotools/arbornj/tree"
)

// NaiveBuilder joins neighbours by exhaustively scanning every active pair at
// each step. O(n^3) overall, no auxiliary state beyond the matrix itself; it
// is both the minimal-memory in-core strategy and the correctness baseline
// the sorted strategies are tested against.
type NaiveBuilder struct{}

var _ Builder = (*NaiveBuilder)(nil)

// Build clusters the matrix into a tree.
func (b *NaiveBuilder) Build(store matrix.Store, names []string, allowNegative bool, sink *progress.Sink) (*tree.Tree, error) {
	n, err := validateInput(store, names)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = progress.NewSink(nil)
	}

	src, err := newMemSource(store)
	if err != nil {
		return nil, err
	}
	defer src.close()

	state, err := newJoinState(src, names, allowNegative)
	if err != nil {
		return nil, err
	}

	merges := 0
	totalMerges := n - 3
	for state.m > 3 {
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !state.active[i] {
				continue
			}
			row := src.d[i]
			for j := i + 1; j < n; j++ {
				if !state.active[j] {
					continue
				}
				if q := state.q(i, j, row[j]); bi < 0 || q < best {
					best, bi, bj = q, i, j
				}
			}
		}

		if err := state.merge(bi, bj); err != nil {
			return nil, err
		}
		merges++
		sink.Report(float64(merges) / float64(totalMerges))
	}

	t, err := state.finish()
	if err != nil {
		return nil, err
	}
	sink.Done()

	return t, nil
}
