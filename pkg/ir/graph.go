package ir

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/graph"
	"github.com/matzehuels/modelir/pkg/observability"
)

// Operator types the IR graph treats specially.
const (
	// OpConstant nodes never count as graph inputs.
	OpConstant = "Constant"

	// OpScope is the composite node standing in for its scoped members.
	OpScope = "Scope"
)

// Option configures document reads and graph construction.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger for dropped-edge warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Graph is a [graph.Graph] built from an IR document. Its nodes share
// their input lists and attribute maps with the document records, so
// attribute edits are visible in [Graph.Document].
type Graph struct {
	*graph.Graph
	doc *Document
}

// Load reads the document at path and builds its graph.
func Load(ctx context.Context, path string, opts ...Option) (*Graph, error) {
	doc, err := ReadDocument(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return FromDocument(ctx, doc, opts...)
}

// FromDocument builds a graph with one node per record and one edge per
// declared input. Orphan nodes are removed and Constant nodes are excluded
// from the inputs. Records with duplicate or invalid names are rejected.
func FromDocument(ctx context.Context, doc *Document, opts ...Option) (*Graph, error) {
	o := newOptions(opts)
	g := &Graph{Graph: graph.New(graph.WithLogger(o.logger)), doc: doc}

	for _, def := range doc.Nodes {
		if def.Attr == nil {
			def.Attr = attr.Map{}
		}
		if err := g.AddNode(graph.NewNode(def.Name, def.Op, def.Input, def.Attr)); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "cannot load IR document")
		}
	}
	for _, def := range doc.Nodes {
		for _, in := range def.Input {
			g.Connect(in, def.Name)
		}
	}

	start := time.Now()
	g.FilterOrphans()
	g.Build()
	g.report(ctx, start)
	return g, nil
}

// Build recomputes the derived sequences and excludes Constant nodes from
// the inputs.
func (g *Graph) Build() {
	g.Graph.Build()
	g.excludeConstants()
}

// Rebuild recomputes the derived sequences after graph surgery, keeping
// scoped members out of the inputs. Orphans are removed first and
// Constant nodes are excluded from the inputs afterwards.
func (g *Graph) Rebuild() {
	g.FilterOrphans()
	g.Graph.Rebuild()
	g.excludeConstants()
}

// FlattenScopes hides every scoped member that is not itself a Scope node
// from the input, topological and output sequences. Hidden nodes stay in
// the registry.
func (g *Graph) FlattenScopes() {
	g.Hide(func(n *graph.Node) bool {
		return n.HasScope() && n.Type() != OpScope
	})
}

func (g *Graph) excludeConstants() {
	g.FilterInputs(func(n *graph.Node) bool { return n.Type() != OpConstant })
}

func (g *Graph) report(ctx context.Context, start time.Time) {
	observability.IR().OnBuild(ctx, g.Len(), len(g.Inputs()), len(g.Outputs()), time.Since(start))
	g.Logger().Debug("built IR graph",
		"nodes", g.Len(),
		"inputs", len(g.Inputs()),
		"outputs", len(g.Outputs()),
		"edges", g.EdgeCount())
}

// Document returns the document the graph was built from.
func (g *Graph) Document() *Document { return g.doc }

// Snapshot returns a document holding the currently registered nodes in
// insertion order, reflecting nodes added or removed since loading.
func (g *Graph) Snapshot() *Document {
	out := &Document{Version: g.doc.Version}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, &NodeDef{
			Name:  n.Name(),
			Op:    n.Type(),
			Input: n.Inputs,
			Attr:  n.Attrs,
		})
	}
	return out
}

// Attr returns attribute key of the named node with the falsy collapse of
// [attr.Get], or def when the node is unknown.
func (g *Graph) Attr(name, key string, def any) any {
	n, ok := g.Node(name)
	if !ok {
		return def
	}
	return n.Attr(key, def)
}
