package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/graph"
	"github.com/matzehuels/modelir/pkg/tensor"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes every attribute in node labels.
	// When false, only the node name and operator type are shown.
	Detailed bool

	// All renders every registered node. By default only the nodes in the
	// topological order are drawn, so nodes hidden by scope flattening or
	// unreachable from the inputs are left out.
	All bool
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Edges from a producer output other than 0 are labelled with the output
// index. Scope nodes are drawn dashed and Constant nodes grey.
func ToDOT(g *graph.Graph, opts Options) string {
	names := g.TopologicalOrder()
	if opts.All {
		names = g.Names()
	}
	visible := make(map[string]bool, len(names))
	for _, name := range names {
		visible[name] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, name := range names {
		n, ok := g.Node(name)
		if !ok {
			continue
		}
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		src, idx := graph.SplitRef(e.From)
		if !visible[src] || !visible[e.To] {
			continue
		}
		if idx != 0 {
			fmt.Fprintf(&buf, "  %q -> %q [label=\":%d\"];\n", src, e.To, idx)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", src, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.Name() + "\n" + n.Type()
	if !detailed {
		return label
	}

	parts := make([]string, 0, len(n.Attrs))
	for _, k := range n.Attrs.Keys() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fmtValue(n.Attrs[k])))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// fmtValue formats an attribute for a label. Tensor payloads are summarized
// by dtype and shape.
func fmtValue(v attr.Value) string {
	switch v.Kind() {
	case attr.KindNone:
		return "-"
	case attr.KindString:
		return strconv.Quote(v.AsString())
	case attr.KindShape:
		return "[" + v.AsShape().String(true) + "]"
	case attr.KindTensor:
		return fmtTensor(v.AsTensor())
	case attr.KindList:
		switch v.Elem() {
		case attr.KindShape:
			parts := make([]string, v.Len())
			for i, s := range v.AsShapes() {
				parts[i] = "[" + s.String(true) + "]"
			}
			return "[" + strings.Join(parts, " ") + "]"
		case attr.KindTensor:
			parts := make([]string, v.Len())
			for i, t := range v.AsTensors() {
				parts[i] = fmtTensor(t)
			}
			return "[" + strings.Join(parts, " ") + "]"
		}
	}
	return fmt.Sprint(v.Interface())
}

func fmtTensor(t tensor.Tensor) string {
	return fmt.Sprintf("%s[%s]", t.DType, t.Shape.String(true))
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Type() {
	case "Scope":
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case "Constant":
		attrs = append(attrs, "fillcolor=gainsboro")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
