package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
)

func TestPlanAutomaticSelection(t *testing.T) {
	t.Run("FullWhenEverythingFits", func(t *testing.T) {
		// n=100: dense 80 KB + sorted 160 KB.
		d, warns, err := Plan(Request{N: 100, Budget: 1 << 20})
		require.NoError(t, err)
		require.Empty(t, warns)
		require.Equal(t, format.StrategyFull, d.Strategy)
		require.Equal(t, 100, d.AuxColumns)
		require.LessOrEqual(t, d.DenseFootprint+d.SortedFootprint, int64(1<<20))
	})

	t.Run("BoundedWhenSortedStructureMustShrink", func(t *testing.T) {
		// Dense matrix fits but the full sorted structure does not; k must
		// still cover at least half of n for the bounded strategy to win.
		const n = 1000
		budget := int64(n*n*DefaultCellSize) + int64(n*(n/2)*DefaultPairSize)
		d, warns, err := Plan(Request{N: n, Budget: budget})
		require.NoError(t, err)
		require.Empty(t, warns)
		require.Equal(t, format.StrategyBounded, d.Strategy)
		require.GreaterOrEqual(t, d.AuxColumns, 1)
		require.LessOrEqual(t, d.AuxColumns, n)
		require.GreaterOrEqual(t, float64(d.AuxColumns), float64(n)*minSortedFraction)
	})

	t.Run("DiskWhenMemoryIsScarce", func(t *testing.T) {
		d, warns, err := Plan(Request{N: 1000, Budget: 10_000})
		require.NoError(t, err)
		require.Empty(t, warns)
		require.Equal(t, format.StrategyDisk, d.Strategy)
		// Budget covers zero columns; the floor guarantees progress.
		require.Equal(t, 5, d.AuxColumns)
	})

	t.Run("DiskColumnFloorRespectsSmallMatrices", func(t *testing.T) {
		d, _, err := Plan(Request{N: 3, Budget: 1, ForceDisk: true})
		require.NoError(t, err)
		require.Equal(t, format.StrategyDisk, d.Strategy)
		require.Equal(t, 3, d.AuxColumns)
	})

	t.Run("ColumnBoundsHoldAcrossBudgets", func(t *testing.T) {
		for _, n := range []int{1, 2, 5, 64, 1000} {
			for _, budget := range []int64{0, 1, 1 << 10, 1 << 20, 1 << 40} {
				d, _, err := Plan(Request{N: n, Budget: budget})
				require.NoError(t, err)
				if d.Strategy == format.StrategyBounded || d.Strategy == format.StrategyDisk {
					require.GreaterOrEqual(t, d.AuxColumns, 1, "n=%d budget=%d", n, budget)
					require.LessOrEqual(t, d.AuxColumns, n, "n=%d budget=%d", n, budget)
				}
				if d.Strategy == format.StrategyDisk {
					require.GreaterOrEqual(t, d.AuxColumns, min(5, n), "n=%d budget=%d", n, budget)
				}
			}
		}
	})
}

func TestPlanForcedStrategies(t *testing.T) {
	t.Run("ForcedFullWithinBudgetIsQuiet", func(t *testing.T) {
		d, warns, err := Plan(Request{N: 10, Budget: 1 << 20, ForceFull: true})
		require.NoError(t, err)
		require.Empty(t, warns)
		require.Equal(t, format.StrategyFull, d.Strategy)
	})

	t.Run("ForcedFullOverBudgetWarnsAndProceeds", func(t *testing.T) {
		d, warns, err := Plan(Request{N: 1000, Budget: 100, ForceFull: true})
		require.NoError(t, err)
		require.Equal(t, format.StrategyFull, d.Strategy)
		require.Len(t, warns, 1)
		require.Equal(t, errs.WarnForcedStrategyOverBudget, warns[0].Code)
	})

	t.Run("ForcedNaiveSkipsFootprintChecks", func(t *testing.T) {
		d, warns, err := Plan(Request{N: 1000, Budget: 1 << 40, ForceNaive: true})
		require.NoError(t, err)
		require.Empty(t, warns)
		require.Equal(t, format.StrategyNaive, d.Strategy)
		require.Equal(t, 0, d.AuxColumns)
	})

	t.Run("ForcedDiskIgnoresAmpleMemory", func(t *testing.T) {
		d, warns, err := Plan(Request{N: 100, Budget: 1 << 40, ForceDisk: true})
		require.NoError(t, err)
		require.Empty(t, warns)
		require.Equal(t, format.StrategyDisk, d.Strategy)
		require.Equal(t, 100, d.AuxColumns)
	})

	t.Run("ConflictingForcesAreFatal", func(t *testing.T) {
		_, _, err := Plan(Request{N: 10, Budget: 1 << 20, ForceFull: true, ForceNaive: true})
		require.ErrorIs(t, err, errs.ErrConflictingStrategies)
		require.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	})
}

func TestPlanPercentageHint(t *testing.T) {
	t.Run("SelectsBoundedWithRequestedColumns", func(t *testing.T) {
		d, _, err := Plan(Request{N: 200, Budget: 1 << 30, AuxMemoryPercent: 25})
		require.NoError(t, err)
		require.Equal(t, format.StrategyBounded, d.Strategy)
		require.Equal(t, 50, d.AuxColumns)
	})

	t.Run("ZeroPercentClampsToOneColumn", func(t *testing.T) {
		d, _, err := Plan(Request{N: 200, Budget: 1 << 30, AuxMemoryPercent: 0})
		require.NoError(t, err)
		require.Equal(t, format.StrategyBounded, d.Strategy)
		require.Equal(t, 1, d.AuxColumns)
	})

	t.Run("OverBudgetRequestWarnsButIsHonored", func(t *testing.T) {
		d, warns, err := Plan(Request{N: 1000, Budget: 10_000, AuxMemoryPercent: 100})
		require.NoError(t, err)
		require.Equal(t, format.StrategyBounded, d.Strategy)
		require.Equal(t, 1000, d.AuxColumns)

		codes := make([]errs.WarningCode, 0, len(warns))
		for _, w := range warns {
			codes = append(codes, w.Code)
		}
		require.Contains(t, codes, errs.WarnPercentageOverBudget)
	})

	t.Run("LowColumnCountGetsEfficiencyWarning", func(t *testing.T) {
		_, warns, err := Plan(Request{N: 1000, Budget: 1 << 30, AuxMemoryPercent: 10})
		require.NoError(t, err)
		require.Len(t, warns, 1)
		require.Equal(t, errs.WarnLowAuxiliaryColumns, warns[0].Code)
	})

	t.Run("OutOfRangePercentageIsFatal", func(t *testing.T) {
		_, _, err := Plan(Request{N: 10, Budget: 1 << 20, AuxMemoryPercent: 101})
		require.ErrorIs(t, err, errs.ErrInvalidPercentage)
		require.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	})
}

func TestPlanRejectsEmptyMatrix(t *testing.T) {
	_, _, err := Plan(Request{N: 0, Budget: 1 << 20})
	require.ErrorIs(t, err, errs.ErrEmptyAlignment)
}

func TestDecisionBuilder(t *testing.T) {
	for _, s := range []format.Strategy{
		format.StrategyFull, format.StrategyBounded, format.StrategyNaive, format.StrategyDisk,
	} {
		d := Decision{Strategy: s, AuxColumns: 4}
		b, err := d.Builder()
		require.NoError(t, err)
		require.NotNil(t, b)
	}
}
