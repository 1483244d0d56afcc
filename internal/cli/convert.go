package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelir/pkg/ir"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output string // destination file
	format string // "binary" or "json"; empty picks from config or extension
}

// convertCommand creates the convert command for rewriting IR documents.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Rewrite an IR document in the binary or JSON format",
		Long: `Read an IR document in either format and write it back out.

The output format is taken from --format, then from the extension of the
output file (.pb or .json), then from output_format in the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output == "" {
				return fmt.Errorf("missing output file (-o)")
			}
			if err := validateOutputFormat(opts.format); err != nil {
				return err
			}
			return c.runConvert(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: binary, json")

	return cmd
}

// validateOutputFormat accepts the empty string so callers can fall back to
// a default.
func validateOutputFormat(f string) error {
	switch ir.Format(f) {
	case "", ir.FormatBinary, ir.FormatJSON:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'binary' or 'json')", f)
}

// outputFormat resolves the format for path: the flag first, then the
// file extension, then the configured default.
func outputFormat(flag, path, fallback string) ir.Format {
	if flag != "" {
		return ir.Format(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ir.ExtJSON:
		return ir.FormatJSON
	case ir.ExtBinary:
		return ir.FormatBinary
	}
	if fallback != "" {
		return ir.Format(fallback)
	}
	return ir.FormatBinary
}

func (c *CLI) runConvert(ctx context.Context, input string, opts convertOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := ir.ReadDocument(ctx, input, ir.WithLogger(logger))
	if err != nil {
		return err
	}

	format := outputFormat(opts.format, opts.output, c.Config.OutputFormat)
	logger.Debug("converting", "input", input, "output", opts.output, "format", format, "nodes", len(doc.Nodes))

	switch format {
	case ir.FormatJSON:
		err = ir.SaveDocumentJSON(ctx, doc, opts.output)
	default:
		err = ir.SaveDocument(ctx, doc, opts.output)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Converted %d nodes", len(doc.Nodes)))

	printSuccess("Wrote %s document", format)
	printFile(opts.output)
	return nil
}
