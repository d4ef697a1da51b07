package pool

import "sync"

// Row pools for efficient reuse of distance-row slices.
// Matrix consumers (distance fill, tree builders, the matrix printer) read
// rows into transient buffers; pooling them keeps the per-row allocation out
// of the O(n) and O(n^2) loops.
var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves and resizes a float64 slice from the pool.
//
// The returned slice has the exact length specified by the size parameter.
// If the pooled slice has insufficient capacity, a new slice is allocated.
// The caller must call the returned cleanup function to return the slice to
// the pool, typically with defer.
//
// Example:
//
//	row, cleanup := pool.GetFloat64Slice(n)
//	defer cleanup()
//	// Use row...
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { float64SlicePool.Put(ptr) }
}
