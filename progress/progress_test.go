package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSinkReport(t *testing.T) {
	t.Run("MapsIntoOwnedRange", func(t *testing.T) {
		var got []float64
		sink := NewSink(func(f float64) { got = append(got, f) })

		sink.Report(0.25)
		sink.Report(0.5)
		sink.Report(1.0)

		require.Equal(t, []float64{0.25, 0.5, 1.0}, got)
	})

	t.Run("ClampsOutOfRangeFractions", func(t *testing.T) {
		var last float64
		sink := NewSink(func(f float64) { last = f })

		sink.Report(-0.5)
		require.Equal(t, 0.0, last)

		sink.Report(2.0)
		require.Equal(t, 1.0, last)
	})

	t.Run("NilCallbackDiscards", func(t *testing.T) {
		sink := NewSink(nil)
		require.NotPanics(t, func() {
			sink.Report(0.5)
			sink.Done()
		})
	})
}

func TestSinkChild(t *testing.T) {
	t.Run("ChildOwnsWeightedSlice", func(t *testing.T) {
		var last float64
		sink := NewSink(func(f float64) { last = f })

		first := sink.Child(0.5)
		first.Report(1.0)
		require.InDelta(t, 0.5, last, 1e-12)

		second := sink.Child(0.5)
		second.Report(0.5)
		require.InDelta(t, 0.75, last, 1e-12)

		second.Report(1.0)
		require.InDelta(t, 1.0, last, 1e-12)
	})

	t.Run("NestedChildren", func(t *testing.T) {
		var last float64
		sink := NewSink(func(f float64) { last = f })

		outer := sink.Child(0.5)
		inner := outer.Child(0.5) // owns [0, 0.25] of the total
		inner.Report(1.0)
		require.InDelta(t, 0.25, last, 1e-12)
	})

	t.Run("MonotonicAcrossChildren", func(t *testing.T) {
		var got []float64
		sink := NewSink(func(f float64) { got = append(got, f) })

		a := sink.Child(0.5)
		b := sink.Child(0.5)

		b.Report(0.5) // 0.75 absolute
		a.Report(1.0) // 0.5 absolute, must not regress the outward value

		require.Equal(t, []float64{0.75, 0.75}, got)
	})

	t.Run("OverAllocationPanics", func(t *testing.T) {
		sink := NewSink(nil)
		sink.Child(0.7)
		require.Panics(t, func() { sink.Child(0.4) })
	})

	t.Run("ReplicateSlicesFillRange", func(t *testing.T) {
		// The bootstrap session carves R+1 equal slices; float drift across
		// the repeated division must not trip the over-allocation check.
		sink := NewSink(nil)
		const replicates = 100
		require.NotPanics(t, func() {
			for i := 0; i < replicates+1; i++ {
				sink.Child(1.0 / (replicates + 1.0))
			}
		})
	})

	t.Run("NegativeWeightPanics", func(t *testing.T) {
		sink := NewSink(nil)
		require.Panics(t, func() { sink.Child(-0.1) })
	})
}
