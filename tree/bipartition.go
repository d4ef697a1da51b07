package tree

// Bipartition support comparison.
//
// Every internal branch splits the leaf set in two; two trees share a branch
// when they induce the same split. Splits are represented as bitsets over the
// reference tree's leaf indexing and canonicalized so that the side not
// containing leaf 0 is stored, making a split and its complement compare
// equal.

type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) has(i int) bool {
	return b[i/64]>>(uint(i)%64)&1 != 0
}

func (b bitset) count() int {
	total := 0
	for _, w := range b {
		for ; w != 0; w &= w - 1 {
			total++
		}
	}

	return total
}

// key canonicalizes over complementation and returns a map key. mask holds
// the valid-bit mask for the final partial word.
func (b bitset) key(n int) string {
	c := b
	if b.has(0) {
		c = newBitset(n)
		for i, w := range b {
			c[i] = ^w
		}
		// Clear bits beyond n-1.
		if rem := n % 64; rem != 0 {
			c[len(c)-1] &= (1 << uint(rem)) - 1
		}
	}

	buf := make([]byte, 0, len(c)*8)
	for _, w := range c {
		buf = append(buf,
			byte(w), byte(w>>8), byte(w>>16), byte(w>>24),
			byte(w>>32), byte(w>>40), byte(w>>48), byte(w>>56))
	}

	return string(buf)
}

// leafIndex assigns each leaf name its index in the reference tree.
func (t *Tree) leafIndex() map[string]int {
	index := make(map[string]int)
	t.Walk(func(n *Node) {
		if n.IsLeaf() {
			if _, seen := index[n.Name]; !seen {
				index[n.Name] = len(index)
			}
		}
	})

	return index
}

// splits collects the non-trivial bipartitions of the tree under the given
// leaf indexing. Branches whose split leaves fewer than two leaves on either
// side are trivial (always present) and skipped, as are branches touching
// leaves absent from the indexing. The visit callback receives the split key
// and the internal node owning the branch.
func (t *Tree) splits(index map[string]int, visit func(key string, n *Node)) {
	n := len(index)

	var rec func(node *Node) (bitset, bool)
	rec = func(node *Node) (bitset, bool) {
		below := newBitset(n)
		if node.IsLeaf() {
			idx, ok := index[node.Name]
			if !ok {
				return below, false
			}
			below.set(idx)

			return below, true
		}

		complete := true
		for _, c := range node.Children {
			sub, ok := rec(c)
			if !ok {
				complete = false
				continue
			}
			for i := range below {
				below[i] |= sub[i]
			}
		}
		if !complete {
			return below, false
		}

		if size := below.count(); size >= 2 && size <= n-2 && node != t.Root {
			visit(below.key(n), node)
		}

		return below, true
	}
	rec(t.Root)
}

// CompareBootstrap increments the support counter of every reference branch
// whose bipartition also occurs in the replicate tree, and returns the number
// of matched branches. The replicate's leaf names are mapped through the
// reference tree's indexing, so both trees must be built over the same leaf
// set for matches to occur.
//
// Only the reference tree is mutated. Callers running replicates in parallel
// must serialize calls for one reference tree.
func CompareBootstrap(ref, replicate *Tree) int {
	index := ref.leafIndex()

	seen := make(map[string]struct{})
	replicate.splits(index, func(key string, _ *Node) {
		seen[key] = struct{}{}
	})

	matched := 0
	ref.splits(index, func(key string, n *Node) {
		if _, ok := seen[key]; ok {
			n.Support++
			matched++
		}
	})

	return matched
}
