package graph

import "slices"

// Build recomputes the input, output and topological sequences from the
// current edges. Calling it twice on an unchanged graph yields the same
// sequences.
func (g *Graph) Build() { g.build(false) }

// Rebuild is Build for graphs edited after a first build. Nodes carrying a
// populated scope attribute are never classified as inputs, since a member
// of a composite operator that lost its producers is still internal.
func (g *Graph) Rebuild() { g.build(true) }

func (g *Graph) build(rebuilding bool) {
	g.inputs = g.inputs[:0]
	g.outputs = g.outputs[:0]
	g.topo = g.topo[:0]

	g.inferInputs(rebuilding)
	g.inferOutputs()
	g.topologicalSort()
}

// inferInputs collects nodes without incoming edges and resets every
// node's remaining in-degree.
func (g *Graph) inferInputs(rebuilding bool) {
	for _, name := range g.order {
		n := g.nodes[name]
		n.remainingInDegree = len(n.inNodes)
		if len(n.inNodes) != 0 {
			continue
		}
		if rebuilding && n.HasScope() {
			continue
		}
		g.inputs = append(g.inputs, name)
	}
}

// inferOutputs collects nodes without outgoing edges, over all nodes.
func (g *Graph) inferOutputs() {
	for _, name := range g.order {
		if len(g.nodes[name].outNodes) == 0 {
			g.outputs = append(g.outputs, name)
		}
	}
}

// topologicalSort runs Kahn's algorithm seeded only from the inputs. A
// consumer's remaining in-degree drops by the number of edges it has from
// the current producer, so "a:0" and "a:1" both have to be accounted for
// before the consumer is queued.
func (g *Graph) topologicalSort() {
	g.topo = append(g.topo, g.inputs...)
	for i := 0; i < len(g.topo); i++ {
		current := g.nodes[g.topo[i]]
		for _, next := range current.outNodes {
			n, ok := g.nodes[next]
			if !ok {
				g.logger.Warn("skipping dangling edge", "src", current.name, "dst", next)
				continue
			}
			n.remainingInDegree -= multiplicity(current.name, n)
			if n.remainingInDegree == 0 {
				g.topo = append(g.topo, next)
			}
		}
	}
}

// Inputs returns the names of nodes classified as graph inputs.
func (g *Graph) Inputs() []string { return slices.Clone(g.inputs) }

// Outputs returns the names of nodes without outgoing edges.
func (g *Graph) Outputs() []string { return slices.Clone(g.outputs) }

// TopologicalOrder returns the sorted node names reachable from the inputs.
func (g *Graph) TopologicalOrder() []string { return slices.Clone(g.topo) }

// FilterInputs keeps only the inputs for which keep returns true. The
// topological order is not recomputed. Names of nodes removed since the
// last build are dropped.
func (g *Graph) FilterInputs(keep func(*Node) bool) {
	g.inputs = slices.DeleteFunc(g.inputs, func(name string) bool {
		n, ok := g.nodes[name]
		return !ok || !keep(n)
	})
}

// Hide removes every node matched by drop from the input, topological and
// output sequences, scanning each back to front. The nodes stay registered
// and keep their edges. Names of nodes removed since the last build are
// dropped as well.
func (g *Graph) Hide(drop func(*Node) bool) {
	for _, names := range []*[]string{&g.inputs, &g.topo, &g.outputs} {
		s := *names
		for i := len(s) - 1; i >= 0; i-- {
			if n, ok := g.nodes[s[i]]; !ok || drop(n) {
				s = slices.Delete(s, i, i+1)
			}
		}
		*names = s
	}
}
