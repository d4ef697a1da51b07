package nj

import "github.com/phylotools/arbornj/matrix"

// distSource is the working-matrix access layer shared by the clustering
// strategies. Rows are indexed by slot: a merge reuses slot i for the new
// cluster and retires slot j, so a source only ever holds n rows.
//
// row returns the current distances of slot i to every slot; entries for
// retired slots are stale and must be ignored by the caller. The returned
// slice is owned by the source and is valid until the next row or merge call.
type distSource interface {
	row(i int) ([]float64, error)

	// merge installs newRow as the distances of slot i (the merged cluster)
	// and retires slot j. newRow is indexed by slot and is only meaningful at
	// slots in active. After merge, row(k)[i] reflects newRow[k] for every
	// active k.
	merge(i, j int, newRow []float64, active []bool) error

	close() error
}

// memSource materializes the whole matrix in memory once and updates it in
// place. Used by the Full, Bounded, and Naive strategies.
type memSource struct {
	n int
	d [][]float64
}

func newMemSource(store matrix.Store) (*memSource, error) {
	n := store.Len()
	s := &memSource{n: n, d: make([][]float64, n)}

	cells := make([]float64, n*n)
	for i := 0; i < n; i++ {
		s.d[i] = cells[i*n : (i+1)*n]
		if err := store.ReadRow(i, s.d[i]); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *memSource) row(i int) ([]float64, error) {
	return s.d[i], nil
}

func (s *memSource) merge(i, j int, newRow []float64, active []bool) error {
	copy(s.d[i], newRow)
	for k := 0; k < s.n; k++ {
		if active[k] && k != i {
			s.d[k][i] = newRow[k]
		}
	}

	return nil
}

func (s *memSource) close() error {
	s.d = nil

	return nil
}

// diskSource keeps the matrix in the backing store and pages one row at a
// time, so resident memory stays O(n) regardless of matrix size. A merge
// rewrites every active row to fold in the new cluster's column, keeping each
// stored row self-contained.
type diskSource struct {
	store matrix.Store
	n     int

	buf    []float64 // scratch row
	cached int       // slot currently held in buf, -1 when invalid
}

func newDiskSource(store matrix.Store) *diskSource {
	n := store.Len()

	return &diskSource{
		store:  store,
		n:      n,
		buf:    make([]float64, n),
		cached: -1,
	}
}

func (s *diskSource) row(i int) ([]float64, error) {
	if s.cached == i {
		return s.buf, nil
	}
	if err := s.store.ReadRow(i, s.buf); err != nil {
		s.cached = -1
		return nil, err
	}
	s.cached = i

	return s.buf, nil
}

func (s *diskSource) merge(i, j int, newRow []float64, active []bool) error {
	s.cached = -1
	if err := s.store.WriteRow(i, newRow); err != nil {
		return err
	}

	for k := 0; k < s.n; k++ {
		if !active[k] || k == i {
			continue
		}
		if err := s.store.ReadRow(k, s.buf); err != nil {
			return err
		}
		s.buf[i] = newRow[k]
		if err := s.store.WriteRow(k, s.buf); err != nil {
			return err
		}
	}

	return nil
}

func (s *diskSource) close() error {
	s.buf = nil
	s.cached = -1

	return nil
}
