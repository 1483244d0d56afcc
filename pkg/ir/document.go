package ir

import (
	"slices"

	"github.com/matzehuels/modelir/pkg/attr"
)

// Document is the persisted form of an IR graph: an ordered list of node
// records plus a format version.
type Document struct {
	Nodes   []*NodeDef
	Version int32
}

// NodeDef is one persisted node record. Input holds qualified producer
// references ("conv1" or "split:1").
type NodeDef struct {
	Name  string
	Op    string
	Input []string
	Attr  attr.Map
}

// Node returns the first record with the given name.
func (d *Document) Node(name string) (*NodeDef, bool) {
	for _, n := range d.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Add appends a record and returns it. A nil attrs map is replaced by an
// empty one.
func (d *Document) Add(name, op string, inputs []string, attrs attr.Map) *NodeDef {
	if attrs == nil {
		attrs = attr.Map{}
	}
	n := &NodeDef{Name: name, Op: op, Input: inputs, Attr: attrs}
	d.Nodes = append(d.Nodes, n)
	return n
}

// Clone returns a deep copy of the record list. Attribute values are
// shared, since they are never mutated in place.
func (d *Document) Clone() *Document {
	out := &Document{Version: d.Version, Nodes: make([]*NodeDef, len(d.Nodes))}
	for i, n := range d.Nodes {
		out.Nodes[i] = &NodeDef{
			Name:  n.Name,
			Op:    n.Op,
			Input: slices.Clone(n.Input),
			Attr:  n.Attr.Clone(),
		}
	}
	return out
}

// Equal reports whether both documents hold the same records in the same
// order.
func (d *Document) Equal(o *Document) bool {
	if d.Version != o.Version || len(d.Nodes) != len(o.Nodes) {
		return false
	}
	for i, n := range d.Nodes {
		m := o.Nodes[i]
		if n.Name != m.Name || n.Op != m.Op || !slices.Equal(n.Input, m.Input) || !n.Attr.Equal(m.Attr) {
			return false
		}
	}
	return true
}
