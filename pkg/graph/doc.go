// Package graph implements the directed-graph engine shared by every IR
// consumer.
//
// # Model
//
// A [Graph] is an insertion-ordered registry of [Node] values keyed by
// name. Edges are stored on the nodes as qualified references: a producer
// appears in its consumer's [Node.InNodes] as "name" or "name:index", where
// the index selects one of the producer's output tensors (a missing index
// means slot 0). The consumer appears by bare name in the producer's
// [Node.OutNodes].
//
// Two references that differ only by output index ("a:0" and "a:1") are
// separate edges. They both count toward the edge multiplicity between the
// producer and the consumer.
//
// # Two-phase use
//
// The graph is mutated first ([Graph.AddNode], [Graph.RemoveNode],
// [Graph.Connect], [Graph.Disconnect]) and then recomputed explicitly with
// [Graph.Build] or [Graph.Rebuild]. Nothing is recomputed on mutation:
//
//	g := graph.New()
//	_ = g.AddNode(graph.NewNode("a", "DataInput", nil, nil))
//	_ = g.AddNode(graph.NewNode("relu", "Relu", []string{"a:0"}, nil))
//	g.Connect("a:0", "relu")
//	g.FilterOrphans()
//	g.Build()
//	fmt.Println(g.TopologicalOrder()) // [a relu]
//
// # Derived sequences
//
// [Graph.Inputs] lists nodes without incoming edges, [Graph.Outputs] nodes
// without outgoing edges, and [Graph.TopologicalOrder] a Kahn ordering
// seeded only from the inputs. Nodes that cannot be reached by walking
// forward from an input are left out of the topological order even when
// they have no incoming edges themselves (for example after
// [Graph.FilterInputs] removed them from the seed list).
//
// # Path queries
//
// [Graph.Descendant] and [Graph.Ancestor] walk edge lists by index, which is
// how emitters match small operator patterns:
//
//	// x's second input's first input
//	n, ok := g.Ancestor("x", []int{1, 0}, true)
//
// With mark set, every node visited after the start is flagged
// [Node.Covered] so later passes can skip nodes absorbed by a pattern.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Callers must not mutate it while
// building or traversing.
package graph
