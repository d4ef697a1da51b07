package tree

import (
	"strconv"
	"strings"
)

// Newick serializes the tree in Newick format, terminated by a semicolon.
//
// Branch lengths are rendered with the shortest round-trippable
// representation. When withSupport is true, internal nodes are labeled with
// their bootstrap support counter after the closing parenthesis, the
// conventional position for support annotations.
func (t *Tree) Newick(withSupport bool) string {
	var sb strings.Builder
	writeNewick(&sb, t.Root, withSupport, true)
	sb.WriteByte(';')

	return sb.String()
}

func writeNewick(sb *strings.Builder, n *Node, withSupport, root bool) {
	if n.IsLeaf() {
		sb.WriteString(escapeName(n.Name))
	} else {
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeNewick(sb, c, withSupport, false)
		}
		sb.WriteByte(')')
		if withSupport && !root {
			sb.WriteString(strconv.Itoa(n.Support))
		}
	}

	if !root {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(n.Length, 'g', -1, 64))
	}
}

// escapeName quotes a leaf name containing characters that are structural in
// Newick.
func escapeName(name string) string {
	if strings.ContainsAny(name, "(),:; \t'") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}

	return name
}
