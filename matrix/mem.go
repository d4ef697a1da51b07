package matrix

import (
	"fmt"

	"github.com/phylotools/arbornj/errs"
)

// MemStore keeps the full n x n matrix in a single contiguous allocation.
type MemStore struct {
	n      int
	cells  []float64
	closed bool
}

var _ Store = (*MemStore)(nil)

// NewMemStore allocates an in-memory store for an n x n matrix.
func NewMemStore(n int) *MemStore {
	return &MemStore{
		n:     n,
		cells: make([]float64, n*n),
	}
}

// Len returns the matrix dimension.
func (s *MemStore) Len() int {
	return s.n
}

// WriteRow copies the n values of row i into the store.
func (s *MemStore) WriteRow(i int, values []float64) error {
	if s.closed {
		return errs.ErrStoreClosed
	}
	if i < 0 || i >= s.n {
		return fmt.Errorf("%w: row %d of %d", errs.ErrRowOutOfRange, i, s.n)
	}
	if len(values) < s.n {
		return fmt.Errorf("%w: row %d has %d values, want %d", errs.ErrMalformedMatrix, i, len(values), s.n)
	}

	copy(s.cells[i*s.n:(i+1)*s.n], values[:s.n])

	return nil
}

// ReadRow copies row i into out.
func (s *MemStore) ReadRow(i int, out []float64) error {
	if s.closed {
		return errs.ErrStoreClosed
	}
	if i < 0 || i >= s.n {
		return fmt.Errorf("%w: row %d of %d", errs.ErrRowOutOfRange, i, s.n)
	}
	if len(out) < s.n {
		return fmt.Errorf("%w: output buffer has %d cells, want %d", errs.ErrMalformedMatrix, len(out), s.n)
	}

	copy(out[:s.n], s.cells[i*s.n:(i+1)*s.n])

	return nil
}

// RowSlice returns row i without copying. The slice aliases the store and is
// valid until Close. This is the fast path used by the parallel distance fill
// and the in-memory clustering strategies; the Store contract methods remain
// the portable access path.
func (s *MemStore) RowSlice(i int) []float64 {
	return s.cells[i*s.n : (i+1)*s.n]
}

// Close releases the allocation.
func (s *MemStore) Close() error {
	s.cells = nil
	s.closed = true

	return nil
}
