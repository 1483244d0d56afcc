package graph_test

import (
	"fmt"

	"github.com/matzehuels/modelir/pkg/graph"
)

func ExampleGraph_Build() {
	g := graph.New()
	_ = g.AddNode(graph.NewNode("a", "DataInput", nil, nil))
	_ = g.AddNode(graph.NewNode("b", "DataInput", nil, nil))
	_ = g.AddNode(graph.NewNode("x", "Relu", []string{"a:0"}, nil))
	_ = g.AddNode(graph.NewNode("y", "Add", []string{"a:0", "b:0"}, nil))

	for _, n := range g.Nodes() {
		for _, in := range n.Inputs {
			g.Connect(in, n.Name())
		}
	}
	g.FilterOrphans()
	g.Build()

	fmt.Println("Inputs:", g.Inputs())
	fmt.Println("Outputs:", g.Outputs())
	fmt.Println("Order:", g.TopologicalOrder())
	// Output:
	// Inputs: [a b]
	// Outputs: [x y]
	// Order: [a b x y]
}

func ExampleGraph_Ancestor() {
	g := graph.New()
	_ = g.AddNode(graph.NewNode("a", "DataInput", nil, nil))
	_ = g.AddNode(graph.NewNode("w", "Constant", nil, nil))
	_ = g.AddNode(graph.NewNode("mm", "MatMul", nil, nil))
	_ = g.AddNode(graph.NewNode("bias", "Add", nil, nil))
	g.Connect("a", "mm")
	g.Connect("w", "mm")
	g.Connect("mm", "bias")
	g.Build()

	// Match Add(MatMul(_, w)) starting from the Add.
	mm, _ := g.Ancestor("bias", []int{0}, true)
	w, _ := g.Ancestor("bias", []int{0, 1}, true)
	fmt.Println(mm.Type(), w.Name(), mm.Covered)
	// Output:
	// MatMul w true
}
