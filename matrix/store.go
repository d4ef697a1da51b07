// Package matrix provides uniform storage for n x n pairwise distance
// matrices.
//
// Two variants implement the same Store contract: MemStore holds the whole
// matrix in one allocation, DiskStore pages serialized rows to a scratch
// directory. Consumers must not assume random-access latency parity between
// the variants; disk reads are row-sequential friendly and column-major
// hostile, so iterate rows whenever possible.
//
// The matrix is logically symmetric over sequence indices [0,n). Writers fill
// whole rows; a row becomes readable only after WriteRow returns, and no
// reader ever observes a partially written row.
package matrix

// Store is the uniform read/write contract for a pairwise distance matrix.
//
// Implementations are safe for concurrent WriteRow calls on distinct rows,
// which is the access pattern of the parallel distance fill.
type Store interface {
	// Len returns n, the number of rows (and columns).
	Len() int

	// WriteRow stores the n values of row i.
	WriteRow(i int, values []float64) error

	// ReadRow reads row i into out, which must have length >= n.
	ReadRow(i int, out []float64) error

	// Close releases the store's resources. For the disk variant this closes
	// file handles; deleting the scratch directory is the owner's
	// responsibility once every consumer has finished reading.
	Close() error
}
