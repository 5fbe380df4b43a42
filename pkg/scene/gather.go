package scene

// Gather returns root and every descendant reachable without crossing a
// Component or Container, depth-first pre-order. Marker children and their
// subtrees belong to other export units and are left out.
func Gather(root *Node) []*Node {
	out := []*Node{root}
	for _, c := range root.Children {
		if c.Kind().Marker() {
			continue
		}
		out = append(out, Gather(c)...)
	}
	return out
}
