package dist

import (
	"sync"
	"sync/atomic"

	"github.com/phylotools/arbornj/internal/pool"
	"github.com/phylotools/arbornj/matrix"
	"github.com/phylotools/arbornj/progress"
	"github.com/phylotools/arbornj/seq"
)

// rowSlicer is the zero-copy fast path offered by the in-memory store.
type rowSlicer interface {
	RowSlice(i int) []float64
}

// Fill computes all pairwise distances between the encoded sequences and
// writes them into the store, using a fixed pool of cores workers.
//
// Workers own disjoint rows, so no matrix cell is ever written by two
// workers and no locking is needed on the store data itself.
//
// For stores exposing row slices (the in-memory variant) only the i<j
// triangle is computed; a second row-partitioned pass mirrors it. The disk
// variant cannot keep earlier rows around for mirroring without defeating its
// memory bound, so each row is computed in full; engines are pure functions
// of the sequence pair, making both triangles bitwise identical.
//
// Progress is reported per completed row across the sink's full range.
func Fill(engine Engine, store matrix.Store, encoded []*seq.Encoded, cores int, sink *progress.Sink) error {
	n := store.Len()
	if cores < 1 {
		cores = 1
	}
	if sink == nil {
		sink = progress.NewSink(nil)
	}

	if slicer, ok := store.(rowSlicer); ok {
		fillTriangle(engine, slicer, encoded, n, cores, sink)
		sink.Done()

		return nil
	}

	if err := fillRows(engine, store, encoded, n, cores, sink); err != nil {
		return err
	}
	sink.Done()

	return nil
}

// fillTriangle computes the upper triangle in place, then mirrors it.
func fillTriangle(engine Engine, store rowSlicer, encoded []*seq.Encoded, n, cores int, sink *progress.Sink) {
	var next atomic.Int64
	var done atomic.Int64
	var wg sync.WaitGroup

	wg.Add(cores)
	for w := 0; w < cores; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				row := store.RowSlice(i)
				row[i] = 0
				for j := i + 1; j < n; j++ {
					row[j] = engine.Distance(encoded[i], encoded[j])
				}
				sink.Report(float64(done.Add(1)) / float64(n))
			}
		}()
	}
	wg.Wait()

	// Mirror pass: row i copies from rows j < i, which are read-only now.
	next.Store(0)
	wg.Add(cores)
	for w := 0; w < cores; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				row := store.RowSlice(i)
				for j := 0; j < i; j++ {
					row[j] = store.RowSlice(j)[i]
				}
			}
		}()
	}
	wg.Wait()
}

// fillRows computes each row in full and writes it through the Store
// contract.
func fillRows(engine Engine, store matrix.Store, encoded []*seq.Encoded, n, cores int, sink *progress.Sink) error {
	var next atomic.Int64
	var done atomic.Int64
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	wg.Add(cores)
	for w := 0; w < cores; w++ {
		go func() {
			defer wg.Done()
			row, cleanup := pool.GetFloat64Slice(n)
			defer cleanup()

			for {
				mu.Lock()
				failed := firstErr != nil
				mu.Unlock()
				if failed {
					return
				}

				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}

				for j := 0; j < n; j++ {
					switch {
					case j == i:
						row[j] = 0
					case j > i:
						row[j] = engine.Distance(encoded[i], encoded[j])
					default:
						// Keep the (low, high) argument order so both
						// triangles evaluate the identical expression.
						row[j] = engine.Distance(encoded[j], encoded[i])
					}
				}

				if err := store.WriteRow(i, row); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()

					return
				}
				sink.Report(float64(done.Add(1)) / float64(n))
			}
		}()
	}
	wg.Wait()

	return firstErr
}
