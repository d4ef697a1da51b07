package arbornj

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/tree"
)

// quartetAlignment has two tight pairs (h,c) and (g,o) separated by a long
// internal branch, so every strategy must recover the ((h,c),(g,o)) topology.
func quartetAlignment() ([]string, [][]byte) {
	return []string{"h", "c", "g", "o"}, [][]byte{
		[]byte("AAAAAAAACCCCCCCC"),
		[]byte("AAAAAAAACCCCCCCG"),
		[]byte("TTTTAAAACCCCCCCC"),
		[]byte("TTTTAAAACCCCGCCC"),
	}
}

// expectedQuartet is the reference topology for quartetAlignment.
func expectedQuartet() *tree.Tree {
	return tree.New(&tree.Node{Children: []*tree.Node{
		{Name: "h"},
		{Name: "c"},
		{Children: []*tree.Node{
			{Name: "g"},
			{Name: "o"},
		}},
	}})
}

func TestBuildTreeFromAlignment(t *testing.T) {
	names, seqs := quartetAlignment()

	t.Run("RecoversTopology", func(t *testing.T) {
		result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA)
		require.NoError(t, err)
		require.Equal(t, format.StrategyFull, result.Strategy)
		require.Equal(t, 4, result.Tree.LeafCount())
		require.ElementsMatch(t, names, result.Tree.LeafNames())
		require.Equal(t, 1, tree.CompareBootstrap(expectedQuartet(), result.Tree))
	})

	t.Run("StrategiesAgree", func(t *testing.T) {
		baseline, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA)
		require.NoError(t, err)

		force := map[string]Option{
			"Naive": WithForceNaive(),
			"Disk":  WithForceDisk(),
		}
		for name, opt := range force {
			t.Run(name, func(t *testing.T) {
				result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, opt)
				require.NoError(t, err)
				require.Equal(t, baseline.Newick, result.Newick)
			})
		}
	})

	t.Run("KimuraModel", func(t *testing.T) {
		result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithModel(format.ModelKimura))
		require.NoError(t, err)
		require.Equal(t, 1, tree.CompareBootstrap(expectedQuartet(), result.Tree))
	})

	t.Run("UnknownModelIsFatal", func(t *testing.T) {
		_, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithModel(format.Model(42)))
		require.ErrorIs(t, err, errs.ErrUnknownModel)
		require.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	})

	t.Run("MismatchedNamesAreFatal", func(t *testing.T) {
		_, err := BuildTreeFromAlignment(names[:3], seqs, format.SequenceDNA)
		require.ErrorIs(t, err, errs.ErrSequenceCountMismatch)
	})
}

func TestBuildTreeProgressReporting(t *testing.T) {
	names, seqs := quartetAlignment()

	var percents []float64
	_, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA,
		WithReplicates(3),
		WithSeed(11),
		WithProgressFunc(func(p float64) { percents = append(percents, p) }),
	)
	require.NoError(t, err)
	require.NotEmpty(t, percents)

	for i := 1; i < len(percents); i++ {
		require.GreaterOrEqual(t, percents[i], percents[i-1], "progress went backwards at step %d", i)
	}
	require.InDelta(t, 100.0, percents[len(percents)-1], 1e-9)
	for _, p := range percents {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 100.0)
	}
}

func TestBuildTreeBootstrapSupports(t *testing.T) {
	const replicates = 10
	names, seqs := quartetAlignment()

	result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA,
		WithReplicates(replicates),
		WithSeed(7),
	)
	require.NoError(t, err)

	result.Tree.Walk(func(n *tree.Node) {
		require.GreaterOrEqual(t, n.Support, 0)
		require.LessOrEqual(t, n.Support, replicates)
	})

	// Support annotations appear in the serialization after bootstrap.
	require.Contains(t, result.Newick, ")")
	require.Regexp(t, `\)\d+:`, result.Newick)
}

func TestBuildDistanceMatrixFromAlignment(t *testing.T) {
	// Length-8 DNA with a single substituted pair: h and c differ at the
	// last position, which is gapped out of every other sequence. Under
	// Jukes-Cantor only d(h,c) may be nonzero.
	names := []string{"h", "c", "g", "o"}
	seqs := [][]byte{
		[]byte("ACGTACGT"),
		[]byte("ACGTACGA"),
		[]byte("ACGTACG-"),
		[]byte("ACGTACG-"),
	}

	out := make([][]float64, 4)
	for i := range out {
		out[i] = make([]float64, 4)
	}
	err := BuildDistanceMatrixFromAlignment(names, seqs, format.SequenceDNA, out)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.Zero(t, out[i][i], "diagonal must be zero")
		for j := 0; j < 4; j++ {
			require.Equal(t, out[i][j], out[j][i], "matrix must be symmetric at (%d,%d)", i, j)
		}
	}
	require.Greater(t, out[0][1], 0.0, "substituted pair must have positive distance")
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if i == 0 && j == 1 {
				continue
			}
			require.Zero(t, out[i][j], "pair (%d,%d) has no mutually valid differences", i, j)
		}
	}
}

func TestBuildTreeFromDistanceMatrix(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	full := [][]float64{
		{0, 5, 9, 9, 8},
		{5, 0, 10, 10, 9},
		{9, 10, 0, 8, 7},
		{9, 10, 8, 0, 3},
		{8, 9, 7, 3, 0},
	}

	t.Run("FullLayout", func(t *testing.T) {
		result, err := BuildTreeFromDistanceMatrix(names, full, false)
		require.NoError(t, err)
		require.Equal(t, "(((a:2,b:3):3,c:4):2,d:2,e:1);", result.Newick)
	})

	t.Run("HalfLayoutMatchesFull", func(t *testing.T) {
		half := make([][]float64, len(full))
		for i, row := range full {
			half[i] = row[:i+1]
		}
		result, err := BuildTreeFromDistanceMatrix(names, half, true)
		require.NoError(t, err)
		require.Equal(t, "(((a:2,b:3):3,c:4):2,d:2,e:1);", result.Newick)
	})

	t.Run("BootstrapIsRejected", func(t *testing.T) {
		_, err := BuildTreeFromDistanceMatrix(names, full, false, WithReplicates(100))
		require.ErrorIs(t, err, errs.ErrBootstrapWithoutAlignment)
		require.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	})

	t.Run("ShortRowIsFatal", func(t *testing.T) {
		bad := [][]float64{{0, 1}, {1, 0}, {1, 1}}
		_, err := BuildTreeFromDistanceMatrix([]string{"x", "y", "z"}, bad, false)
		require.ErrorIs(t, err, errs.ErrMalformedMatrix)
	})
}

func TestBuildTreeFromDistanceMatrixFile(t *testing.T) {
	t.Run("ThreeTaxa", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dist.txt")
		content := "\t3\n" +
			"alpha\t0.000000 3.000000 5.000000 \n" +
			"beta\t3.000000 0.000000 4.000000 \n" +
			"gamma\t5.000000 4.000000 0.000000 \n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		result, err := BuildTreeFromDistanceMatrixFile(path)
		require.NoError(t, err)
		require.Equal(t, 3, result.Tree.LeafCount())
		require.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, result.Tree.LeafNames())
		require.Equal(t, "(alpha:2,beta:1,gamma:3);", result.Newick)
	})

	t.Run("MissingFileIsInputError", func(t *testing.T) {
		_, err := BuildTreeFromDistanceMatrixFile(filepath.Join(t.TempDir(), "absent.txt"))
		require.ErrorIs(t, err, errs.ErrMalformedMatrix)
		require.Equal(t, errs.KindInput, errs.KindOf(err))
	})
}

func TestBuildStrategySelection(t *testing.T) {
	names, seqs := quartetAlignment()

	t.Run("TinyBudgetFallsBackToDisk", func(t *testing.T) {
		result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithMemoryBudget(16))
		require.NoError(t, err)
		require.Equal(t, format.StrategyDisk, result.Strategy)
		require.Equal(t, 4, result.AuxColumns) // min(5, n) floor, clamped to n
	})

	t.Run("CacheDirImpliesDisk", func(t *testing.T) {
		dir := t.TempDir()
		result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithCacheDir(dir))
		require.NoError(t, err)
		require.Equal(t, format.StrategyDisk, result.Strategy)

		// The explicit directory is left in place for the caller.
		_, err = os.Stat(dir)
		require.NoError(t, err)
	})

	t.Run("PercentageImpliesBounded", func(t *testing.T) {
		result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithAuxMemoryPercent(50))
		require.NoError(t, err)
		require.Equal(t, format.StrategyBounded, result.Strategy)
		require.Equal(t, 2, result.AuxColumns)
	})

	t.Run("InvalidPercentageIsFatal", func(t *testing.T) {
		_, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithAuxMemoryPercent(250))
		require.ErrorIs(t, err, errs.ErrInvalidPercentage)
	})

	t.Run("ForcedFullOverBudgetWarnsViaCallback", func(t *testing.T) {
		var seen []errs.Warning
		result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA,
			WithForceFull(),
			WithMemoryBudget(1),
			WithWarningFunc(func(w errs.Warning) { seen = append(seen, w) }),
		)
		require.NoError(t, err)
		require.Equal(t, format.StrategyFull, result.Strategy)
		require.Len(t, seen, 1)
		require.Equal(t, errs.WarnForcedStrategyOverBudget, seen[0].Code)
		require.Equal(t, seen, result.Warnings)
	})

	t.Run("ConflictingForcesAreFatal", func(t *testing.T) {
		_, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA, WithForceFull(), WithForceDisk())
		require.ErrorIs(t, err, errs.ErrConflictingStrategies)
	})
}

func TestBuildWithPageCompression(t *testing.T) {
	names, seqs := quartetAlignment()

	baseline, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA)
	require.NoError(t, err)

	for _, codec := range []format.CompressionType{
		format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(codec.String(), func(t *testing.T) {
			result, err := BuildTreeFromAlignment(names, seqs, format.SequenceDNA,
				WithForceDisk(),
				WithPageCompression(codec),
			)
			require.NoError(t, err)
			require.Equal(t, baseline.Newick, result.Newick)
		})
	}
}
