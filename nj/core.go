package nj

import (
	"github.com/phylotools/arbornj/tree"
)

// joinState is the merge core shared by every strategy: cluster bookkeeping,
// row sums, branch length computation, and final root assembly. Strategies
// only decide which pair to hand to merge next.
type joinState struct {
	src           distSource
	n             int
	m             int // active cluster count
	active        []bool
	nodes         []*tree.Node
	rowSums       []float64
	allowNegative bool

	rowI, rowJ, newRow []float64 // scratch, reused across merges
}

// newJoinState seeds one cluster per input row and computes the initial row
// sums in a single pass over the matrix.
func newJoinState(src distSource, names []string, allowNegative bool) (*joinState, error) {
	n := len(names)
	s := &joinState{
		src:           src,
		n:             n,
		m:             n,
		active:        make([]bool, n),
		nodes:         make([]*tree.Node, n),
		rowSums:       make([]float64, n),
		allowNegative: allowNegative,
		rowI:          make([]float64, n),
		rowJ:          make([]float64, n),
		newRow:        make([]float64, n),
	}

	for i := 0; i < n; i++ {
		s.active[i] = true
		s.nodes[i] = tree.Leaf(names[i])

		row, err := src.row(i)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for j := 0; j < n; j++ {
			if j != i {
				sum += row[j]
			}
		}
		s.rowSums[i] = sum
	}

	return s, nil
}

// q is the neighbour-joining criterion for the active pair (i, j):
// (m-2)*d(i,j) - R(i) - R(j). The pair minimizing q is joined next.
func (s *joinState) q(i, j int, dij float64) float64 {
	return float64(s.m-2)*dij - s.rowSums[i] - s.rowSums[j]
}

// merge joins clusters i and j. The new cluster takes over slot i; slot j is
// retired. Row sums of the surviving clusters are adjusted incrementally.
func (s *joinState) merge(i, j int) error {
	ri, err := s.src.row(i)
	if err != nil {
		return err
	}
	copy(s.rowI, ri)
	rj, err := s.src.row(j)
	if err != nil {
		return err
	}
	copy(s.rowJ, rj)

	dij := s.rowI[j]

	// Branch lengths from each member to the new internal node.
	var li, lj float64
	if s.m > 2 {
		li = dij/2 + (s.rowSums[i]-s.rowSums[j])/(2*float64(s.m-2))
		lj = dij - li
	} else {
		li = dij / 2
		lj = dij / 2
	}
	if !s.allowNegative {
		// Zero a negative branch and shift the deficit onto its sibling so
		// the path length between the two members is preserved.
		if li < 0 {
			lj += li
			li = 0
		}
		if lj < 0 {
			li += lj
			lj = 0
		}
		if li < 0 {
			li = 0
		}
	}

	parent := &tree.Node{Children: []*tree.Node{s.nodes[i], s.nodes[j]}}
	s.nodes[i].Length = li
	s.nodes[j].Length = lj

	// New distances and incremental row sum updates.
	newSum := 0.0
	for k := 0; k < s.n; k++ {
		if !s.active[k] || k == i || k == j {
			s.newRow[k] = 0
			continue
		}
		d := (s.rowI[k] + s.rowJ[k] - dij) / 2
		s.newRow[k] = d
		s.rowSums[k] += d - s.rowI[k] - s.rowJ[k]
		newSum += d
	}
	s.newRow[i] = 0

	s.active[j] = false
	s.m--
	if err := s.src.merge(i, j, s.newRow, s.active); err != nil {
		return err
	}

	s.nodes[i] = parent
	s.nodes[j] = nil
	s.rowSums[i] = newSum
	s.rowSums[j] = 0

	return nil
}

// finish assembles the unrooted tree once at most three clusters remain. With
// three, the root trifurcates and each branch length comes from the
// three-point formulas; with two, the remaining distance is split evenly.
func (s *joinState) finish() (*tree.Tree, error) {
	slots := make([]int, 0, 3)
	for i := 0; i < s.n; i++ {
		if s.active[i] {
			slots = append(slots, i)
		}
	}

	switch len(slots) {
	case 1:
		return tree.New(s.nodes[slots[0]]), nil

	case 2:
		a, b := slots[0], slots[1]
		row, err := s.src.row(a)
		if err != nil {
			return nil, err
		}
		half := row[b] / 2
		s.nodes[a].Length = half
		s.nodes[b].Length = half

		return tree.New(&tree.Node{Children: []*tree.Node{s.nodes[a], s.nodes[b]}}), nil

	default:
		a, b, c := slots[0], slots[1], slots[2]
		rowA, err := s.src.row(a)
		if err != nil {
			return nil, err
		}
		dab, dac := rowA[b], rowA[c]
		rowB, err := s.src.row(b)
		if err != nil {
			return nil, err
		}
		dbc := rowB[c]

		la := (dab + dac - dbc) / 2
		lb := dab - la
		lc := dac - la
		if !s.allowNegative {
			la = max(la, 0)
			lb = max(lb, 0)
			lc = max(lc, 0)
		}
		s.nodes[a].Length = la
		s.nodes[b].Length = lb
		s.nodes[c].Length = lc

		return tree.New(&tree.Node{Children: []*tree.Node{s.nodes[a], s.nodes[b], s.nodes[c]}}), nil
	}
}
