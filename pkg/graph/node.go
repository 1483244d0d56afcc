package graph

import (
	"strconv"
	"strings"

	"github.com/matzehuels/modelir/pkg/attr"
)

// ScopeAttr is the reserved attribute naming the composite operator a node
// belongs to.
const ScopeAttr = "scope"

var identReplacer = strings.NewReplacer("/", "_", "-", "_", "[", "_", "]", "_")

// Node is a vertex of a [Graph].
//
// Name and Type are fixed at construction. The edge lists are maintained by
// the owning graph and must not be modified directly.
type Node struct {
	name string
	typ  string

	// RealName is the name emitters should use in generated code. It
	// defaults to the node name; parsers may override it.
	RealName string

	// Inputs holds the qualified references declared by the source record.
	Inputs []string

	// Attrs holds the node attributes.
	Attrs attr.Map

	// Covered is set by path queries run with mark enabled.
	Covered bool

	inNodes           []string
	outNodes          []string
	remainingInDegree int
}

// NewNode creates a node. A nil attrs map is replaced by an empty one.
func NewNode(name, typ string, inputs []string, attrs attr.Map) *Node {
	if attrs == nil {
		attrs = attr.Map{}
	}
	return &Node{
		name:     name,
		typ:      typ,
		RealName: name,
		Inputs:   inputs,
		Attrs:    attrs,
	}
}

func (n *Node) Name() string { return n.name }
func (n *Node) Type() string { return n.typ }

// InNodes returns the qualified references of the node's producers in
// connection order. The slice must be treated as read-only.
func (n *Node) InNodes() []string { return n.inNodes }

// OutNodes returns the names of the node's consumers in connection order.
// The slice must be treated as read-only.
func (n *Node) OutNodes() []string { return n.outNodes }

// VariableName returns the node name with '/', '-', '[' and ']' replaced by
// '_' so it can be used as an identifier.
func (n *Node) VariableName() string { return identReplacer.Replace(n.name) }

// RealVariableName is VariableName applied to RealName.
func (n *Node) RealVariableName() string { return identReplacer.Replace(n.RealName) }

// Attr returns the attribute under key with the falsy collapse of [attr.Get].
func (n *Node) Attr(key string, def any) any { return attr.Get(n.Attrs, key, def) }

// SetAttrs encodes attrs into the node's attribute map.
func (n *Node) SetAttrs(attrs map[string]any) error {
	if n.Attrs == nil {
		n.Attrs = attr.Map{}
	}
	return attr.Set(n.Attrs, attrs)
}

// Scope returns the populated scope attribute, or "".
func (n *Node) Scope() string { return attr.GetString(n.Attrs, ScopeAttr, "") }

// HasScope reports whether the node carries a populated scope attribute of
// any kind.
func (n *Node) HasScope() bool { return n.Attrs[ScopeAttr].Truthy() }

// SplitRef splits a qualified reference into node name and output index.
// The name is everything before the first ':'; a missing or malformed
// index yields 0.
func SplitRef(ref string) (name string, index int) {
	i := strings.IndexByte(ref, ':')
	if i < 0 {
		return ref, 0
	}
	idx, err := strconv.Atoi(ref[i+1:])
	if err != nil {
		return ref[:i], 0
	}
	return ref[:i], idx
}

// NodeName returns the node-name part of a qualified reference.
func NodeName(ref string) string {
	name, _ := SplitRef(ref)
	return name
}

// Ref builds a qualified reference. Index 0 yields the bare name.
func Ref(name string, index int) string {
	if index == 0 {
		return name
	}
	return name + ":" + strconv.Itoa(index)
}
