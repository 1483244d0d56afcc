// Package nodelink renders IR graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g.Graph, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels list every attribute below the name and type
//   - All: draw every registered node, not just the topologically sorted ones
//
// By default the diagram follows the graph's topological order, so calling
// FlattenScopes on an IR graph before rendering collapses composite
// operators into their Scope nodes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
