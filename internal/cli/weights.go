package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelir/pkg/weights"
)

// checksumLen is how many hex digits of a tensor checksum are shown.
const checksumLen = 12

// weightsCommand creates the weights command for listing weight archives.
func (c *CLI) weightsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "weights [file]",
		Short: "List the tensors stored in a weight archive",
		Long: `List every node of a weight archive with its index and tensors.

With -o the plain-text listing is written to a file instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWeights(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the text listing to this file")

	return cmd
}

func (c *CLI) runWeights(ctx context.Context, w io.Writer, path, output string) error {
	logger := loggerFromContext(ctx)

	a, err := weights.Load(path, weights.WithLogger(logger))
	if err != nil {
		return err
	}

	if output != "" {
		if err := a.SaveText(ctx, output); err != nil {
			return err
		}
		printSuccess("Wrote listing for %d nodes", a.Len())
		printFile(output)
		return nil
	}

	if a.Len() == 0 {
		printWarning("Archive %s holds no weights", path)
		return nil
	}
	return writeWeights(w, a)
}

// writeWeights prints one row per tensor with its owning node, index,
// dtype, shape and a truncated checksum.
func writeWeights(w io.Writer, a *weights.Archive) error {
	var rows [][]string
	for _, e := range a.Entries() {
		for _, name := range e.Names() {
			t, _ := e.Tensor(name)
			sum := t.Checksum()
			rows = append(rows, []string{
				e.Name, strconv.Itoa(e.Index), name, t.DType.String(), "(" + t.Shape.String(true) + ")", sum[:checksumLen],
			})
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Id", "Weight", "DType", "Shape", "BLAKE3").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return StyleNumber.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
