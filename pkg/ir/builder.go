package ir

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/tensor"
	"github.com/matzehuels/modelir/pkg/weights"
)

// File suffixes written by [Builder.Save].
const (
	ExtJSON    = ".json"
	ExtBinary  = ".pb"
	ExtWeights = ".weights"
	ExtText    = ".txt"
)

// Builder accumulates an IR document and its weight archive, the way a
// framework parser emits them.
type Builder struct {
	Doc     *Document
	Weights *weights.Archive

	names  map[string]struct{}
	logger *log.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...Option) *Builder {
	o := newOptions(opts)
	return &Builder{
		Doc:     &Document{},
		Weights: weights.New(weights.WithLogger(o.logger)),
		names:   make(map[string]struct{}),
		logger:  o.logger,
	}
}

// AddNode appends a node record. attrs values are converted with
// [attr.Of]. Returns INVALID_NODE_NAME, DUPLICATE_NODE or INVALID_ATTR.
func (b *Builder) AddNode(name, op string, inputs []string, attrs map[string]any) (*NodeDef, error) {
	if err := errors.ValidateNodeName(name); err != nil {
		return nil, err
	}
	if _, dup := b.names[name]; dup {
		return nil, errors.New(errors.ErrCodeDuplicateNode, "document already has node [%s]", name)
	}
	m := attr.Map{}
	if err := attr.Set(m, attrs); err != nil {
		return nil, err
	}
	b.names[name] = struct{}{}
	return b.Doc.Add(name, op, inputs, m), nil
}

// SetWeight registers a weight tensor for node.
func (b *Builder) SetWeight(node, name string, t tensor.Tensor) {
	b.Weights.Set(node, name, t)
}

// Save writes dest.json, dest.pb and, when any weights were registered,
// dest.weights and the dest.txt listing. It returns the written paths.
func (b *Builder) Save(ctx context.Context, dest string) ([]string, error) {
	var written []string

	if err := SaveDocumentJSON(ctx, b.Doc, dest+ExtJSON); err != nil {
		return written, err
	}
	written = append(written, dest+ExtJSON)

	if err := SaveDocument(ctx, b.Doc, dest+ExtBinary); err != nil {
		return written, err
	}
	written = append(written, dest+ExtBinary)

	if b.Weights.Len() == 0 {
		b.logger.Warn("weights are not loaded, skipping archive", "dest", dest)
		return written, nil
	}
	if err := b.Weights.Save(ctx, dest+ExtWeights); err != nil {
		return written, err
	}
	written = append(written, dest+ExtWeights)

	if err := b.Weights.SaveText(ctx, dest+ExtText); err != nil {
		return written, err
	}
	written = append(written, dest+ExtText)

	b.logger.Info("saved IR", "dest", dest, "nodes", len(b.Doc.Nodes), "weights", b.Weights.Len())
	return written, nil
}
