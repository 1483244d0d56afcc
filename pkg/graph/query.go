package graph

import (
	"strconv"
	"strings"
)

// Descendant walks from the named node along outgoing edges, taking the
// path[i]-th consumer at step i. It returns false if the start node is
// unknown or an index is out of range. With mark set, every node reached
// after the start is flagged Covered.
func (g *Graph) Descendant(name string, path []int, mark bool) (*Node, bool) {
	n, _, ok := g.walk(name, path, mark, (*Node).OutNodes)
	return n, ok
}

// Ancestor walks from the named node along incoming edges, taking the
// path[i]-th producer at step i.
//
// For a graph a->r->x, b->r->x, t->x (r's inputs [a, b], x's inputs [r, t]):
//
//	Ancestor("x", []int{0})    // r
//	Ancestor("x", []int{1})    // t
//	Ancestor("x", []int{0, 1}) // b
func (g *Graph) Ancestor(name string, path []int, mark bool) (*Node, bool) {
	n, _, ok := g.walk(name, path, mark, (*Node).InNodes)
	return n, ok
}

// AncestorRef resolves like Ancestor and returns a code reference to the
// tensor consumed on the last step: the ancestor's RealVariableName, with a
// "[k]" suffix when the last reference selects output k != 0. An empty path
// yields the start node's RealVariableName.
func (g *Graph) AncestorRef(name string, path []int, mark bool) (string, bool) {
	n, last, ok := g.walk(name, path, mark, (*Node).InNodes)
	if !ok {
		return "", false
	}
	ref := n.RealVariableName()
	if _, idx := SplitRef(last); idx != 0 {
		ref += "[" + strconv.Itoa(idx) + "]"
	}
	return ref, true
}

// AncestorRealName resolves like Ancestor and returns the ancestor's
// RealName.
func (g *Graph) AncestorRealName(name string, path []int, mark bool) (string, bool) {
	n, ok := g.Ancestor(name, path, mark)
	if !ok {
		return "", false
	}
	return n.RealName, true
}

// InputRealNames returns the RealName, stripped of leading underscores, of
// the producers behind n's incoming edges in [start, end). A negative end
// means all remaining edges. Unknown producers are skipped.
func (g *Graph) InputRealNames(n *Node, start, end int) []string {
	if end < 0 || end > len(n.inNodes) {
		end = len(n.inNodes)
	}
	if start < 0 {
		start = 0
	}
	var names []string
	for i := start; i < end; i++ {
		src, err := g.Get(n.inNodes[i])
		if err != nil {
			continue
		}
		names = append(names, strings.TrimLeft(src.RealName, "_"))
	}
	return names
}

// walk follows path through the edge lists returned by next. It returns the
// final node and the last reference taken ("" for an empty path).
func (g *Graph) walk(name string, path []int, mark bool, next func(*Node) []string) (*Node, string, bool) {
	current, ok := g.nodes[name]
	if !ok {
		return nil, "", false
	}
	var last string
	for _, idx := range path {
		edges := next(current)
		if idx < 0 || idx >= len(edges) {
			return nil, "", false
		}
		last = edges[idx]
		current, ok = g.nodes[NodeName(last)]
		if !ok {
			return nil, "", false
		}
		if mark {
			current.Covered = true
		}
	}
	return current, last, true
}
