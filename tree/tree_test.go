package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// quartet builds ((A,B),(C,D)) as an unrooted tree with a trifurcating root:
// (A, B, (C,D)).
func quartet() *Tree {
	cd := &Node{Length: 0.05, Children: []*Node{
		{Name: "C", Length: 0.3},
		{Name: "D", Length: 0.4},
	}}
	root := &Node{Children: []*Node{
		{Name: "A", Length: 0.1},
		{Name: "B", Length: 0.2},
		cd,
	}}

	return New(root)
}

// quartetAlt builds the conflicting topology (A, C, (B,D)).
func quartetAlt() *Tree {
	bd := &Node{Length: 0.05, Children: []*Node{
		{Name: "B", Length: 0.3},
		{Name: "D", Length: 0.4},
	}}
	root := &Node{Children: []*Node{
		{Name: "A", Length: 0.1},
		{Name: "C", Length: 0.2},
		bd,
	}}

	return New(root)
}

func TestTreeBasics(t *testing.T) {
	tr := quartet()
	require.Equal(t, 4, tr.LeafCount())
	require.Equal(t, []string{"A", "B", "C", "D"}, tr.LeafNames())
}

func TestNewick(t *testing.T) {
	t.Run("WithoutSupport", func(t *testing.T) {
		require.Equal(t, "(A:0.1,B:0.2,(C:0.3,D:0.4):0.05);", quartet().Newick(false))
	})

	t.Run("WithSupport", func(t *testing.T) {
		tr := quartet()
		tr.Root.Children[2].Support = 87
		require.Equal(t, "(A:0.1,B:0.2,(C:0.3,D:0.4)87:0.05);", tr.Newick(true))
	})

	t.Run("QuotedNames", func(t *testing.T) {
		tr := New(&Node{Children: []*Node{
			{Name: "taxon one", Length: 1},
			{Name: "B", Length: 2},
		}})
		require.Equal(t, "('taxon one':1,B:2);", tr.Newick(false))
	})

	t.Run("SingleLeaf", func(t *testing.T) {
		tr := New(Leaf("only"))
		require.Equal(t, "only;", tr.Newick(false))
	})
}

func TestCompareBootstrap(t *testing.T) {
	t.Run("IdenticalTopologyMatchesAllInternalBranches", func(t *testing.T) {
		ref := quartet()
		matched := CompareBootstrap(ref, quartet())
		// A quartet has exactly one non-trivial bipartition: CD|AB.
		require.Equal(t, 1, matched)
		require.Equal(t, 1, ref.Root.Children[2].Support)
	})

	t.Run("ConflictingTopologyMatchesNothing", func(t *testing.T) {
		ref := quartet()
		matched := CompareBootstrap(ref, quartetAlt())
		require.Equal(t, 0, matched)
		require.Equal(t, 0, ref.Root.Children[2].Support)
	})

	t.Run("SupportsAccumulate", func(t *testing.T) {
		ref := quartet()
		for i := 0; i < 5; i++ {
			CompareBootstrap(ref, quartet())
		}
		CompareBootstrap(ref, quartetAlt())
		require.Equal(t, 5, ref.Root.Children[2].Support)
	})

	t.Run("ComplementedSplitStillMatches", func(t *testing.T) {
		// (C, D, (A,B)) induces AB|CD just like (A, B, (C,D)).
		ab := &Node{Length: 0.05, Children: []*Node{
			{Name: "A", Length: 0.3},
			{Name: "B", Length: 0.4},
		}}
		flipped := New(&Node{Children: []*Node{
			{Name: "C", Length: 0.1},
			{Name: "D", Length: 0.2},
			ab,
		}})

		ref := quartet()
		require.Equal(t, 1, CompareBootstrap(ref, flipped))
	})

	t.Run("DisjointLeafSetsMatchNothing", func(t *testing.T) {
		other := New(&Node{Children: []*Node{
			{Name: "X", Length: 1},
			{Name: "Y", Length: 1},
			{Length: 1, Children: []*Node{
				{Name: "Z", Length: 1},
				{Name: "W", Length: 1},
			}},
		}})
		require.Equal(t, 0, CompareBootstrap(quartet(), other))
	})
}
