// Package weights stores the parameter tensors of an IR graph, keyed by
// node name and then by weight name.
//
// Every node gets an index from a counter the first time one of its
// weights is registered. Indices are dense, start at zero and follow
// registration order, which is also the order used by [Archive.Names],
// [Archive.Save] and [Archive.WriteText].
//
//	a := weights.New()
//	a.Set("conv1", "weights", kernel)
//	a.Set("conv1", "bias", bias)
//	a.Set("fc", "weights", w)
//	idx, _ := a.Index("fc") // 1
package weights

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelir/pkg/tensor"
)

// Entry holds the weights registered for one node.
type Entry struct {
	// Name is the owning node's name.
	Name string

	// Index is the node's position in registration order.
	Index int

	names   []string
	tensors map[string]tensor.Tensor
}

// Names returns the weight names in registration order.
func (e *Entry) Names() []string { return slices.Clone(e.names) }

// Tensor returns the named weight.
func (e *Entry) Tensor(name string) (tensor.Tensor, bool) {
	t, ok := e.tensors[name]
	return t, ok
}

// Len returns the number of weights.
func (e *Entry) Len() int { return len(e.names) }

func (e *Entry) set(name string, t tensor.Tensor) {
	if _, ok := e.tensors[name]; !ok {
		e.names = append(e.names, name)
	}
	e.tensors[name] = t
}

// Archive maps node names to their weights. It is not safe for concurrent
// mutation.
type Archive struct {
	entries map[string]*Entry
	order   []string
	logger  *log.Logger
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used for save warnings.
func WithLogger(l *log.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an empty archive.
func New(opts ...Option) *Archive {
	a := &Archive{
		entries: make(map[string]*Entry),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Set stores t under node and weight name. The node's index is assigned on
// its first weight and never changes; replacing a weight keeps its
// position.
func (a *Archive) Set(node, name string, t tensor.Tensor) {
	e, ok := a.entries[node]
	if !ok {
		e = &Entry{Name: node, Index: len(a.order), tensors: make(map[string]tensor.Tensor)}
		a.entries[node] = e
		a.order = append(a.order, node)
	}
	e.set(name, t)
}

// Get returns the named weight of node.
func (a *Archive) Get(node, name string) (tensor.Tensor, bool) {
	e, ok := a.entries[node]
	if !ok {
		return tensor.Tensor{}, false
	}
	return e.Tensor(name)
}

// Node returns the entry for node.
func (a *Archive) Node(node string) (*Entry, bool) {
	e, ok := a.entries[node]
	return e, ok
}

// Index returns the index assigned to node.
func (a *Archive) Index(node string) (int, bool) {
	e, ok := a.entries[node]
	if !ok {
		return 0, false
	}
	return e.Index, true
}

// Names returns the node names in index order.
func (a *Archive) Names() []string { return slices.Clone(a.order) }

// Entries returns the entries in index order.
func (a *Archive) Entries() []*Entry {
	out := make([]*Entry, len(a.order))
	for i, name := range a.order {
		out[i] = a.entries[name]
	}
	return out
}

// Len returns the number of nodes with weights.
func (a *Archive) Len() int { return len(a.order) }
