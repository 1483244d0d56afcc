package graph

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelir/pkg/errors"
)

// Graph is an insertion-ordered registry of nodes plus the derived input,
// output and topological sequences computed by [Graph.Build].
//
// The zero value is not usable - use New to create a Graph.
type Graph struct {
	nodes map[string]*Node
	order []string

	inputs  []string
	outputs []string
	topo    []string

	logger *log.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for dropped-edge warnings.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:  make(map[string]*Node),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Logger returns the graph's logger.
func (g *Graph) Logger() *log.Logger { return g.logger }

// AddNode registers n at the end of the insertion order.
// Returns INVALID_NODE_NAME for unusable names and DUPLICATE_NODE if the
// name is taken.
func (g *Graph) AddNode(n *Node) error {
	if err := errors.ValidateNodeName(n.name); err != nil {
		return err
	}
	if _, exists := g.nodes[n.name]; exists {
		return errors.New(errors.ErrCodeDuplicateNode, "graph already has node [%s]", n.name)
	}
	g.nodes[n.name] = n
	g.order = append(g.order, n.name)
	return nil
}

// RemoveNode deletes the named node and every edge touching it. Derived
// sequences are left untouched until the next Build or Rebuild.
// Reports whether the node existed.
func (g *Graph) RemoveNode(name string) bool {
	n, ok := g.nodes[name]
	if !ok {
		return false
	}
	for _, dst := range n.outNodes {
		if d, ok := g.nodes[dst]; ok {
			d.inNodes = slices.DeleteFunc(d.inNodes, func(ref string) bool { return NodeName(ref) == name })
		}
	}
	for _, src := range n.inNodes {
		if s, ok := g.nodes[NodeName(src)]; ok {
			s.outNodes = slices.DeleteFunc(s.outNodes, func(dst string) bool { return dst == name })
		}
	}
	delete(g.nodes, name)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == name })
	return true
}

// Node returns the node registered under the bare name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Get resolves a possibly qualified reference ("conv1" or "conv1:2") to its
// node. Returns NOT_FOUND if the bare name is not registered.
func (g *Graph) Get(ref string) (*Node, error) {
	name := NodeName(ref)
	n, ok := g.nodes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph doesn't have node [%s]", name)
	}
	return n, nil
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, name := range g.order {
		out[i] = g.nodes[name]
	}
	return out
}

// Names returns all node names in insertion order.
func (g *Graph) Names() []string { return slices.Clone(g.order) }

// Len returns the number of registered nodes.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount returns the number of recorded qualified edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, node := range g.nodes {
		n += len(node.inNodes)
	}
	return n
}

// Edge is a recorded connection from a qualified producer reference to a
// consumer name.
type Edge struct {
	From string
	To   string
}

// Edges returns every recorded edge, grouped by consumer in insertion order
// and by producer reference in connection order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, name := range g.order {
		for _, ref := range g.nodes[name].inNodes {
			edges = append(edges, Edge{From: ref, To: name})
		}
	}
	return edges
}

// Connect records an edge from the qualified producer reference src to the
// consumer dst.
//
// Malformed edges are dropped with a warning instead of failing: self-loops
// and edges whose producer or consumer is not registered. Exact duplicate
// strings are not recorded twice, but references that differ by output
// index are distinct edges. Reports whether the edge is present afterwards.
func (g *Graph) Connect(src, dst string) bool {
	srcName := NodeName(src)
	if srcName == dst {
		g.logger.Warn("ignoring self-loop edge", "src", src, "dst", dst)
		return false
	}
	producer, ok := g.nodes[srcName]
	if !ok {
		g.logger.Warn("ignoring edge from unknown node", "src", src, "dst", dst)
		return false
	}
	consumer, ok := g.nodes[dst]
	if !ok {
		g.logger.Warn("ignoring edge to unknown node", "src", src, "dst", dst)
		return false
	}

	if !slices.Contains(producer.outNodes, dst) {
		producer.outNodes = append(producer.outNodes, dst)
	}
	if !slices.Contains(consumer.inNodes, src) {
		consumer.inNodes = append(consumer.inNodes, src)
	}
	return true
}

// Disconnect removes the exact reference src from dst's incoming edges. The
// producer keeps dst as a consumer while any other reference to it remains.
func (g *Graph) Disconnect(src, dst string) {
	consumer, ok := g.nodes[dst]
	if !ok {
		return
	}
	consumer.inNodes = slices.DeleteFunc(consumer.inNodes, func(ref string) bool { return ref == src })

	srcName := NodeName(src)
	if multiplicity(srcName, consumer) > 0 {
		return
	}
	if producer, ok := g.nodes[srcName]; ok {
		producer.outNodes = slices.DeleteFunc(producer.outNodes, func(s string) bool { return s == dst })
	}
}

// FilterOrphans removes every node with neither incoming nor outgoing
// edges and returns the removed names in insertion order.
func (g *Graph) FilterOrphans() []string {
	var removed []string
	kept := g.order[:0]
	for _, name := range g.order {
		n := g.nodes[name]
		if len(n.inNodes) == 0 && len(n.outNodes) == 0 {
			delete(g.nodes, name)
			removed = append(removed, name)
			continue
		}
		kept = append(kept, name)
	}
	g.order = kept
	if len(removed) > 0 {
		g.logger.Debug("removed orphan nodes", "count", len(removed))
	}
	return removed
}

// multiplicity counts the references in n's incoming edges whose node part
// is name.
func multiplicity(name string, n *Node) int {
	count := 0
	for _, ref := range n.inNodes {
		if NodeName(ref) == name {
			count++
		}
	}
	return count
}
