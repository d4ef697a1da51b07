package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phylotools/arbornj/errs"
	"github.com/phylotools/arbornj/format"
	"github.com/phylotools/arbornj/seq"
)

func encodeDNA(t *testing.T, data string) *seq.Encoded {
	t.Helper()
	e, err := seq.Encode(seq.Sequence{Data: []byte(data), Type: format.SequenceDNA})
	require.NoError(t, err)

	return e
}

func encodeProtein(t *testing.T, data string) *seq.Encoded {
	t.Helper()
	e, err := seq.Encode(seq.Sequence{Data: []byte(data), Type: format.SequenceProtein})
	require.NoError(t, err)

	return e
}

func TestNewEngine(t *testing.T) {
	for _, model := range []format.Model{format.ModelJukesCantor, format.ModelKimura} {
		engine, err := NewEngine(model)
		require.NoError(t, err)
		require.NotNil(t, engine)
	}

	_, err := NewEngine(format.Model(0x7F))
	require.ErrorIs(t, err, errs.ErrUnknownModel)
	require.Equal(t, errs.KindConfiguration, errs.KindOf(err))
}

func TestDNACounts(t *testing.T) {
	t.Run("MismatchesAndTransitions", func(t *testing.T) {
		// Positions: A/A match, A/G transition, C/T transition, A/C
		// transversion, G/T transversion, gap pair skipped.
		a := encodeDNA(t, "AACAG-")
		b := encodeDNA(t, "AGTCTN")

		valid, diffs, transitions := dnaCounts(a, b)
		require.Equal(t, 5, valid)
		require.Equal(t, 4, diffs)
		require.Equal(t, 2, transitions)
	})

	t.Run("GapOnEitherSideInvalidates", func(t *testing.T) {
		a := encodeDNA(t, "A-GT")
		b := encodeDNA(t, "AC-T")

		valid, diffs, _ := dnaCounts(a, b)
		require.Equal(t, 2, valid)
		require.Equal(t, 0, diffs)
	})

	t.Run("PaddingNeverCounts", func(t *testing.T) {
		a := encodeDNA(t, "AC")
		b := encodeDNA(t, "AC")

		valid, diffs, transitions := dnaCounts(a, b)
		require.Equal(t, 2, valid)
		require.Equal(t, 0, diffs)
		require.Equal(t, 0, transitions)
	})
}

func TestJukesCantor(t *testing.T) {
	jc := JukesCantor{}

	t.Run("IdenticalIsZero", func(t *testing.T) {
		a := encodeDNA(t, "ACGTACGT")
		require.Equal(t, 0.0, jc.Distance(a, a))
	})

	t.Run("KnownDNAValue", func(t *testing.T) {
		// 1 mismatch over 8 sites: d = -3/4 ln(1 - 4/3 * 1/8)
		a := encodeDNA(t, "ACGTACGT")
		b := encodeDNA(t, "ACGTACGA")
		want := -0.75 * math.Log(1-4.0/3.0*0.125)
		require.InDelta(t, want, jc.Distance(a, b), 1e-12)
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := encodeDNA(t, "ACGTACGTTT")
		b := encodeDNA(t, "ACCTACGAAT")
		require.Equal(t, jc.Distance(a, b), jc.Distance(b, a))
	})

	t.Run("SaturationCaps", func(t *testing.T) {
		a := encodeDNA(t, "AAAA")
		b := encodeDNA(t, "CCCC")
		require.Equal(t, MaxDistance, jc.Distance(a, b))
	})

	t.Run("AllGapPairIsZero", func(t *testing.T) {
		a := encodeDNA(t, "NNNN")
		b := encodeDNA(t, "ACGT")
		require.Equal(t, 0.0, jc.Distance(a, b))
	})

	t.Run("Protein", func(t *testing.T) {
		// 1 mismatch over 4 valid sites, 20-state correction.
		a := encodeProtein(t, "MKVL")
		b := encodeProtein(t, "MKVI")
		want := -19.0 / 20.0 * math.Log(1-20.0/19.0*0.25)
		require.InDelta(t, want, jc.Distance(a, b), 1e-12)
	})
}

func TestKimura(t *testing.T) {
	kim := Kimura{}

	t.Run("KnownDNAValue", func(t *testing.T) {
		// 8 sites: 1 transition (A->G), 1 transversion (C->A).
		a := encodeDNA(t, "ACGTACGT")
		b := encodeDNA(t, "GAGTACGT")
		p := 1.0 / 8.0
		q := 1.0 / 8.0
		want := -0.5 * math.Log((1-2*p-q)*math.Sqrt(1-2*q))
		require.InDelta(t, want, kim.Distance(a, b), 1e-12)
	})

	t.Run("IdenticalIsZero", func(t *testing.T) {
		a := encodeDNA(t, "ACGTACGT")
		require.Equal(t, 0.0, kim.Distance(a, a))
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := encodeDNA(t, "ACGTTTGA")
		b := encodeDNA(t, "CCGTATGC")
		require.Equal(t, kim.Distance(a, b), kim.Distance(b, a))
	})

	t.Run("SaturationCaps", func(t *testing.T) {
		a := encodeDNA(t, "ACAC")
		b := encodeDNA(t, "CACA")
		require.Equal(t, MaxDistance, kim.Distance(a, b))
	})

	t.Run("ProteinKnownValue", func(t *testing.T) {
		a := encodeProtein(t, "MKVL")
		b := encodeProtein(t, "MKVI")
		p := 0.25
		want := -math.Log(1 - p - p*p/5)
		require.InDelta(t, want, kim.Distance(a, b), 1e-12)
	})
}
