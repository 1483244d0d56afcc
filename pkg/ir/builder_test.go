package ir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/tensor"
	"github.com/matzehuels/modelir/pkg/weights"
)

func TestBuilderAddNode(t *testing.T) {
	b := NewBuilder(quiet())

	n, err := b.AddNode("conv", "Conv", []string{"input"}, map[string]any{
		"kernel_shape": []int{3, 3},
		"use_bias":     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 3}, n.Attr["kernel_shape"].AsInts())

	_, err = b.AddNode("conv", "Relu", nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateNode))

	_, err = b.AddNode("", "Relu", nil, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidNodeName))

	_, err = b.AddNode("bad", "Relu", nil, map[string]any{"f": func() {}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAttr))

	assert.Len(t, b.Doc.Nodes, 1)
}

func TestBuilderSave(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(quiet())
	_, err := b.AddNode("input", "DataInput", nil, map[string]any{"shape": tensor.Shape{-1, 4}})
	require.NoError(t, err)
	_, err = b.AddNode("fc", "FullyConnected", []string{"input"}, map[string]any{"units": 2})
	require.NoError(t, err)
	b.SetWeight("fc", "weights", kernel())

	dest := filepath.Join(t.TempDir(), "model")
	written, err := b.Save(ctx, dest)
	require.NoError(t, err)
	assert.Equal(t, []string{dest + ExtJSON, dest + ExtBinary, dest + ExtWeights, dest + ExtText}, written)

	for _, path := range []string{dest + ExtJSON, dest + ExtBinary} {
		doc, err := ReadDocument(ctx, path, quiet())
		require.NoError(t, err)
		assert.True(t, b.Doc.Equal(doc), path)
	}

	a, err := weights.Load(dest + ExtWeights)
	require.NoError(t, err)
	w, ok := a.Get("fc", "weights")
	require.True(t, ok)
	assert.True(t, kernel().Equal(w))

	text, err := os.ReadFile(dest + ExtText)
	require.NoError(t, err)
	assert.Equal(t, "fc:\n\t id:0\n\t weights shape:(2, 2)\n", string(text))
}

func TestBuilderSaveWithoutWeights(t *testing.T) {
	b := NewBuilder(quiet())
	_, err := b.AddNode("input", "DataInput", nil, nil)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "model")
	written, err := b.Save(context.Background(), dest)
	require.NoError(t, err)
	assert.Equal(t, []string{dest + ExtJSON, dest + ExtBinary}, written)

	_, err = os.Stat(dest + ExtWeights)
	assert.True(t, os.IsNotExist(err))
}
