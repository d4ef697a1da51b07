package nj

import (
	"math"
	"sort"

	"github.com/phylotools/arbornj/matrix"
	"github.com/phylotools/arbornj/progress"
	"github.com/phylotools/arbornj/tree"
)

// SortedBuilder joins neighbours using per-row candidate lists sorted by
// distance. Scanning a row's candidates in ascending distance order lets the
// search stop as soon as the lower bound (m-2)*d - R(i) - Rmax can no longer
// beat the best pair found, which skips most of the matrix on typical inputs.
//
// MaxColumns bounds how many candidates each row keeps. Zero means unbounded,
// the Full strategy; a positive value is the Bounded/Disk auxiliary column
// count k. Truncation only ever discards the largest distances, so the bound
// break stays valid; a row whose list runs dry without a bound break falls
// back to one linear scan of the source row and rebuilds its list.
//
// Paged selects the disk access path: the working matrix stays in the backing
// store and rows are paged one at a time, keeping resident memory at
// O(n + n*k) instead of O(n^2).
type SortedBuilder struct {
	MaxColumns int
	Paged      bool
}

var _ Builder = (*SortedBuilder)(nil)

// candidate is one cached (partner, distance) pair. gen stamps the partner
// slot's merge generation; a mismatch marks the entry stale.
type candidate struct {
	d    float64
	slot int32
	gen  uint32
}

type rowCache struct {
	entries []candidate
	// complete reports that entries cover every active partner; incomplete
	// rows need an overflow scan when exhausted without a bound break.
	complete bool
}

// insert places cand in sorted position, evicting the largest entry when the
// list exceeds k.
func (c *rowCache) insert(cand candidate, k int) {
	idx := sort.Search(len(c.entries), func(x int) bool { return c.entries[x].d >= cand.d })
	c.entries = append(c.entries, candidate{})
	copy(c.entries[idx+1:], c.entries[idx:])
	c.entries[idx] = cand

	if len(c.entries) > k {
		c.entries = c.entries[:k]
		c.complete = false
	}
}

// Build clusters the matrix into a tree.
func (b *SortedBuilder) Build(store matrix.Store, names []string, allowNegative bool, sink *progress.Sink) (*tree.Tree, error) {
	n, err := validateInput(store, names)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = progress.NewSink(nil)
	}

	var src distSource
	if b.Paged {
		src = newDiskSource(store)
	} else {
		src, err = newMemSource(store)
		if err != nil {
			return nil, err
		}
	}
	defer src.close()

	state, err := newJoinState(src, names, allowNegative)
	if err != nil {
		return nil, err
	}

	k := b.MaxColumns
	if k <= 0 || k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	run := &sortedRun{
		state:   state,
		src:     src,
		k:       k,
		caches:  make([]rowCache, n),
		gens:    make([]uint32, n),
		scratch: make([]candidate, 0, n),
	}
	for i := 0; i < n; i++ {
		if err := run.rebuild(i); err != nil {
			return nil, err
		}
	}

	merges := 0
	totalMerges := n - 3
	for state.m > 3 {
		bi, bj, err := run.findPair()
		if err != nil {
			return nil, err
		}

		if err := run.mergePair(bi, bj); err != nil {
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

// sortedRun is the per-build state of the sorted search.
type sortedRun struct {
	state   *joinState
	src     distSource
	k       int
	caches  []rowCache
	gens    []uint32
	scratch []candidate
}

// rebuild refreshes slot i's candidate list from its current source row.
func (r *sortedRun) rebuild(i int) error {
	row, err := r.src.row(i)
	if err != nil {
		return err
	}

	s := r.state
	cands := r.scratch[:0]
	for j := 0; j < s.n; j++ {
		if s.active[j] && j != i {
			cands = append(cands, candidate{d: row[j], slot: int32(j), gen: r.gens[j]})
		}
	}
	sort.Slice(cands, func(a, b int) bool { return cands[a].d < cands[b].d })

	c := &r.caches[i]
	c.complete = len(cands) <= r.k
	if !c.complete {
		cands = cands[:r.k]
	}
	c.entries = append(c.entries[:0], cands...)

	return nil
}

// findPair locates the active pair minimizing the join criterion. Each row's
// candidates are scanned in ascending distance until the bound rules out the
// rest; rows that exhaust an incomplete list fall back to a linear scan.
func (r *sortedRun) findPair() (int, int, error) {
	s := r.state

	rmax := math.Inf(-1)
	for i := 0; i < s.n; i++ {
		if s.active[i] && s.rowSums[i] > rmax {
			rmax = s.rowSums[i]
		}
	}

	qBest := math.Inf(1)
	bi, bj := -1, -1
	mf := float64(s.m - 2)

	for i := 0; i < s.n; i++ {
		if !s.active[i] {
			continue
		}

		bounded := false
		for _, e := range r.caches[i].entries {
			j := int(e.slot)
			if !s.active[j] || r.gens[j] != e.gen || j == i {
				continue
			}
			if bi >= 0 && mf*e.d-s.rowSums[i]-rmax >= qBest {
				bounded = true
				break
			}
			if q := mf*e.d - s.rowSums[i] - s.rowSums[j]; q < qBest {
				qBest, bi, bj = q, i, j
			}
		}

		if bounded || r.caches[i].complete {
			continue
		}

		// Candidate list ran dry without proving a bound; the truncated tail
		// may hide the optimum. Scan the full row and refresh the list.
		row, err := r.src.row(i)
		if err != nil {
			return 0, 0, err
		}
		for j := 0; j < s.n; j++ {
			if !s.active[j] || j == i {
				continue
			}
			if q := mf*row[j] - s.rowSums[i] - s.rowSums[j]; q < qBest {
				qBest, bi, bj = q, i, j
			}
		}
		if err := r.rebuild(i); err != nil {
			return 0, 0, err
		}
	}

	return bi, bj, nil
}

// mergePair performs the merge and keeps the candidate lists current: the
// merged cluster's slot gets a fresh list, and its distances are inserted
// into every surviving row's list.
func (r *sortedRun) mergePair(i, j int) error {
	s := r.state
	if err := s.merge(i, j); err != nil {
		return err
	}
	r.gens[i]++
	r.gens[j]++
	r.caches[j].entries = r.caches[j].entries[:0]

	if err := r.rebuild(i); err != nil {
		return err
	}

	row, err := r.src.row(i)
	if err != nil {
		return err
	}
	for l := 0; l < s.n; l++ {
		if !s.active[l] || l == i {
			continue
		}
		r.caches[l].insert(candidate{d: row[l], slot: int32(i), gen: r.gens[i]}, r.k)
	}

	return nil
}
