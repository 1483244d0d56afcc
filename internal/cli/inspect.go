package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/graph"
	"github.com/matzehuels/modelir/pkg/ir"
	"github.com/matzehuels/modelir/pkg/weights"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	flatten bool   // hide scoped members
	weights string // optional weight archive to cross-reference
}

// inspectCommand creates the inspect command for summarizing an IR graph.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize an IR graph in topological order",
		Long: `Load an IR document (binary or JSON), build its graph and list the
nodes in topological order with their inputs and shapes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.flatten, "flatten", false, "hide nodes that belong to a scope")
	cmd.Flags().StringVar(&opts.weights, "weights", "", "weight archive to cross-reference")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, path string, opts inspectOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	g, err := ir.Load(ctx, path, ir.WithLogger(logger))
	if err != nil {
		return err
	}
	if opts.flatten {
		g.FlattenScopes()
	}

	var archive *weights.Archive
	if opts.weights != "" {
		if archive, err = weights.Load(opts.weights, weights.WithLogger(logger)); err != nil {
			return err
		}
	}
	prog.done("Loaded " + path)

	printKeyValue("Nodes", strconv.Itoa(g.Len()))
	printKeyValue("Edges", strconv.Itoa(g.EdgeCount()))
	printKeyValue("Inputs", strings.Join(g.Inputs(), ", "))
	printKeyValue("Outputs", strings.Join(g.Outputs(), ", "))
	if archive != nil {
		printKeyValue("Weights", fmt.Sprintf("%d nodes", archive.Len()))
	}
	printNewline()

	return writeNodes(w, g, archive, c.Config.KeepUnknownDims)
}

// writeNodes prints one row per node in topological order: name, operator,
// inputs, shape and weight count.
func writeNodes(w io.Writer, g *ir.Graph, archive *weights.Archive, keepUnknown bool) error {
	var rows [][]string
	for _, name := range g.TopologicalOrder() {
		n, ok := g.Node(name)
		if !ok {
			continue
		}
		rows = append(rows, []string{
			n.Name(), n.Type(), fmtInputs(n), fmtShape(n, keepUnknown), fmtWeights(archive, n.Name()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Op", "Inputs", "Shape", "Weights").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return StyleValue.Padding(0, 1)
			}
			return StyleDim.Padding(0, 1)
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func fmtInputs(n *graph.Node) string {
	if len(n.Inputs) == 0 {
		return "-"
	}
	return strings.Join(n.Inputs, ",")
}

func fmtShape(n *graph.Node, keepUnknown bool) string {
	v, ok := n.Attrs["shape"]
	if !ok || v.Kind() != attr.KindShape {
		return "-"
	}
	return "(" + v.AsShape().String(keepUnknown) + ")"
}

func fmtWeights(archive *weights.Archive, name string) string {
	if archive == nil {
		return "-"
	}
	e, ok := archive.Node(name)
	if !ok {
		return "-"
	}
	return strconv.Itoa(e.Len())
}
