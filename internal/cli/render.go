package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelir/pkg/cache"
	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/ir"
	"github.com/matzehuels/modelir/pkg/observability"
	"github.com/matzehuels/modelir/pkg/render/nodelink"
)

const (
	formatDOT = "dot" // Graphviz source
	formatSVG = "svg" // rendered diagram

	// renderTTL bounds how long a rendered diagram stays in the cache.
	renderTTL = 7 * 24 * time.Hour
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // "dot" or "svg"; empty picks from the output extension
	detailed bool   // show node attributes in labels
	flatten  bool   // hide scoped members
	noCache  bool   // bypass the render cache
}

// renderCommand creates the render command for drawing IR graphs.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an IR graph to DOT or SVG",
		Long: `Draw the nodes and edges of an IR graph as a node-link diagram.

Rendered SVGs are cached by document content, so re-rendering an unchanged
file is instant. Use --no-cache to force a fresh render.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = renderFormat(opts.output)
			}
			if err := validateRenderFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node attributes")
	cmd.Flags().BoolVar(&opts.flatten, "flatten", false, "hide nodes that belong to a scope")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// renderFormat derives the format from the output extension, defaulting to SVG.
func renderFormat(output string) string {
	if strings.EqualFold(filepath.Ext(output), "."+formatDOT) {
		return formatDOT
	}
	return formatSVG
}

func validateRenderFormat(f string) error {
	if f != formatDOT && f != formatSVG {
		return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", f)
	}
	return nil
}

// outputPath replaces the extension of input with the format when no
// output was given.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	g, err := ir.Load(ctx, input, ir.WithLogger(logger))
	if err != nil {
		return err
	}
	if opts.flatten {
		g.FlattenScopes()
	}

	store, err := c.newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := renderKey(g.Document(), opts)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	data, cached, err := renderCached(ctx, store, key, func() ([]byte, error) {
		dot := nodelink.ToDOT(g.Graph, nodelink.Options{Detailed: opts.detailed})
		if opts.format == formatDOT {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(ctx, dot)
	})
	if err != nil {
		return err
	}
	prog.done("Rendered " + opts.format)

	out := outputPath(opts.output, input, opts.format)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s", out)
	}

	printSuccess("Rendered %s", filepath.Base(input))
	printStats(g.Len(), g.EdgeCount(), cached)
	printFile(out)
	return nil
}

// renderKey identifies a rendering by document content and the options that
// change the output.
func renderKey(doc *ir.Document, opts renderOpts) (string, error) {
	data, err := doc.MarshalBinary()
	if err != nil {
		return "", err
	}
	return cache.Key("render", cache.Hash(data), opts.format, opts.detailed, opts.flatten), nil
}

// renderCached returns the cached rendering for key or computes and stores
// it. Cache failures are logged and never fail the render.
func renderCached(ctx context.Context, store cache.Cache, key string, compute func() ([]byte, error)) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)
	hooks := observability.Cache()

	if data, hit, err := store.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "key", key, "error", err)
	} else if hit {
		hooks.OnCacheHit(ctx, key)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, key)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := store.Set(ctx, key, data, renderTTL); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	} else {
		hooks.OnCacheSet(ctx, key, len(data))
	}
	return data, false, nil
}
