// Package tree holds the weighted phylogenetic tree produced by the
// clustering strategies, its Newick serialization, and the bipartition
// comparison used to accumulate bootstrap branch supports.
package tree

// Node is one vertex of a tree. Leaves carry a Name; internal nodes carry
// children. Length is the weight of the branch connecting the node to its
// parent (meaningless on the root), and Support counts how many bootstrap
// replicates contained the bipartition induced by that branch.
type Node struct {
	Name     string
	Length   float64
	Support  int
	Children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a weighted tree over a fixed leaf set. Neighbour joining produces
// an unrooted topology, represented here with a trifurcating root.
type Tree struct {
	Root *Node
}

// New wraps a root node.
func New(root *Node) *Tree {
	return &Tree{Root: root}
}

// Leaf returns a leaf node.
func Leaf(name string) *Node {
	return &Node{Name: name}
}

// LeafNames returns the tree's leaf names in depth-first order.
func (t *Tree) LeafNames() []string {
	var names []string
	t.Walk(func(n *Node) {
		if n.IsLeaf() {
			names = append(names, n.Name)
		}
	})

	return names
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	count := 0
	t.Walk(func(n *Node) {
		if n.IsLeaf() {
			count++
		}
	})

	return count
}

// Walk visits every node in depth-first pre-order.
func (t *Tree) Walk(visit func(*Node)) {
	if t == nil || t.Root == nil {
		return
	}
	var rec func(*Node)
	rec = func(n *Node) {
		visit(n)
		for _, c := range n.Children {
			rec(c)
		}
	}
	rec(t.Root)
}
