package ir

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/graph"
	"github.com/matzehuels/modelir/pkg/observability"
)

func quiet() Option { return WithLogger(log.New(&bytes.Buffer{})) }

func scope(name string) attr.Map { return attr.Map{graph.ScopeAttr: attr.String(name)} }

// scopedDocument holds a composite "block" whose members are mul and add.
//
//	input -> mul -> add -> relu
//	const -> mul
//	input -> block -> relu
func scopedDocument() *Document {
	doc := &Document{}
	doc.Add("input", "DataInput", nil, nil)
	doc.Add("const", OpConstant, nil, nil)
	doc.Add("mul", "Mul", []string{"input", "const"}, scope("block"))
	doc.Add("add", "Add", []string{"mul"}, scope("block"))
	doc.Add("block", OpScope, []string{"input"}, scope("block"))
	doc.Add("relu", "Relu", []string{"add", "block"}, nil)
	doc.Add("unused", "Identity", nil, nil)
	return doc
}

func TestFromDocument(t *testing.T) {
	g, err := FromDocument(context.Background(), scopedDocument(), quiet())
	require.NoError(t, err)

	_, ok := g.Node("unused")
	assert.False(t, ok, "orphans are removed")

	assert.Equal(t, []string{"input"}, g.Inputs(), "Constant nodes are not inputs")
	assert.Equal(t, []string{"relu"}, g.Outputs())
	assert.Equal(t, []string{"input", "const", "block", "mul", "add", "relu"}, g.TopologicalOrder())
}

func TestFlattenScopes(t *testing.T) {
	g, err := FromDocument(context.Background(), scopedDocument(), quiet())
	require.NoError(t, err)

	g.FlattenScopes()
	assert.Equal(t, []string{"input", "const", "block", "relu"}, g.TopologicalOrder())
	assert.Equal(t, []string{"input"}, g.Inputs())

	_, ok := g.Node("mul")
	assert.True(t, ok, "hidden nodes stay registered")
}

func TestRebuildKeepsScopedMembersInternal(t *testing.T) {
	doc := &Document{}
	doc.Add("x", "DataInput", nil, nil)
	doc.Add("m", "Mul", []string{"x"}, scope("s"))
	doc.Add("r", "Relu", []string{"m"}, nil)
	doc.Add("c", OpConstant, nil, nil)
	doc.Add("k", "Add", []string{"r", "c"}, nil)

	g, err := FromDocument(context.Background(), doc, quiet())
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, g.Inputs())

	require.True(t, g.RemoveNode("x"))
	g.Rebuild()
	assert.Empty(t, g.Inputs(), "scoped m and Constant c are not inputs")
	assert.Equal(t, []string{"k"}, g.Outputs())

	g.Build()
	assert.Equal(t, []string{"m"}, g.Inputs())
}

func TestFromDocumentRejectsDuplicates(t *testing.T) {
	doc := &Document{}
	doc.Add("a", "DataInput", nil, nil)
	doc.Add("a", "Relu", nil, nil)

	_, err := FromDocument(context.Background(), doc, quiet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateNode))
}

func TestNodesShareDocumentRecords(t *testing.T) {
	doc := scopedDocument()
	g, err := FromDocument(context.Background(), doc, quiet())
	require.NoError(t, err)

	n, err := g.Get("mul:0")
	require.NoError(t, err)
	require.NoError(t, n.SetAttrs(map[string]any{"alpha": 2}))

	rec, ok := g.Document().Node("mul")
	require.True(t, ok)
	assert.Equal(t, int64(2), attr.GetInt(rec.Attr, "alpha", 0))
	assert.Equal(t, "block", n.Scope())
	assert.Equal(t, int64(2), g.Attr("mul", "alpha", int64(0)))
	assert.Equal(t, "d", g.Attr("nope", "alpha", "d"))
}

func TestSnapshot(t *testing.T) {
	g, err := FromDocument(context.Background(), scopedDocument(), quiet())
	require.NoError(t, err)
	g.RemoveNode("relu")

	snap := g.Snapshot()
	var names []string
	for _, n := range snap.Nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"input", "const", "mul", "add", "block"}, names)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc := scopedDocument()

	for _, tc := range []struct {
		name string
		save func(context.Context, *Document, string) error
	}{
		{"model.pb", SaveDocument},
		{"model.json", SaveDocumentJSON},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			require.NoError(t, tc.save(ctx, doc, path))

			g, err := Load(ctx, path, quiet())
			require.NoError(t, err)
			assert.True(t, doc.Equal(g.Document()))
			assert.Equal(t, []string{"input"}, g.Inputs())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Load(ctx, filepath.Join(dir, "missing.pb"), quiet())
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	bad := filepath.Join(dir, "bad.pb")
	require.NoError(t, os.WriteFile(bad, []byte("garbage {"), 0o644))
	_, err = Load(ctx, bad, quiet())
	assert.True(t, errors.Is(err, errors.ErrCodeParse))
}

type recordingHooks struct {
	observability.NoopIRHooks
	reads  []string
	builds int
}

func (h *recordingHooks) OnReadComplete(_ context.Context, _ string, format string, _ int, _ time.Duration, _ error) {
	h.reads = append(h.reads, format)
}

func (h *recordingHooks) OnBuild(context.Context, int, int, int, time.Duration) { h.builds++ }

func TestLoadEmitsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetIRHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveDocumentJSON(ctx, scopedDocument(), path))

	_, err := Load(ctx, path, quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"json"}, h.reads)
	assert.Equal(t, 1, h.builds)
}
