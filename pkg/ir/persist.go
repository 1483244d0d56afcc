package ir

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/observability"
)

// Format identifies an on-disk document encoding.
type Format string

const (
	FormatBinary Format = "binary"
	FormatJSON   Format = "json"
)

// MarshalBinary encodes the document in the binary format.
func (d *Document) MarshalBinary() ([]byte, error) {
	return appendDocument(nil, d)
}

// UnmarshalBinary decodes a document from the binary format.
func (d *Document) UnmarshalBinary(b []byte) error {
	out, err := decodeDocument(b)
	if err != nil {
		return err
	}
	*d = *out
	return nil
}

// Parse decodes data as a binary document and falls back to the text
// format when that fails. It returns PARSE_ERROR, carrying both causes,
// when neither decoder accepts the data.
func Parse(data []byte) (*Document, Format, error) {
	doc, format, err := decode(data)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeParse, err, "data is neither a binary nor a text IR document")
	}
	return doc, format, nil
}

func decode(data []byte) (*Document, Format, error) {
	doc := &Document{}
	binErr := doc.UnmarshalBinary(data)
	if binErr == nil {
		return doc, FormatBinary, nil
	}
	doc = &Document{}
	jsonErr := doc.UnmarshalJSON(data)
	if jsonErr == nil {
		return doc, FormatJSON, nil
	}
	return nil, "", stderrors.Join(fmt.Errorf("binary: %w", binErr), fmt.Errorf("text: %w", jsonErr))
}

// ReadDocument reads and decodes the document at path. Unreadable files
// return FILE_NOT_FOUND or IO_ERROR, undecodable ones PARSE_ERROR.
func ReadDocument(ctx context.Context, path string, opts ...Option) (*Document, error) {
	o := newOptions(opts)
	hooks := observability.IR()
	hooks.OnReadStart(ctx, path)
	start := time.Now()

	doc, format, err := readDocument(path, o.logger)
	nodes := 0
	if doc != nil {
		nodes = len(doc.Nodes)
	}
	hooks.OnReadComplete(ctx, path, string(format), nodes, time.Since(start), err)
	return doc, err
}

func readDocument(path string, logger *log.Logger) (*Document, Format, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "IR document %s not found", path)
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeIO, err, "cannot read IR document %s", path)
	}

	doc, format, err := decode(data)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeParse, err, "cannot parse IR document %s", path)
	}
	logger.Debug("read IR document", "path", path, "format", format, "nodes", len(doc.Nodes))
	return doc, format, nil
}

// SaveDocument writes the document to path in the binary format.
func SaveDocument(ctx context.Context, d *Document, path string) error {
	data, err := d.MarshalBinary()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAttr, err, "cannot encode IR document")
	}
	return writeFile(ctx, path, FormatBinary, data)
}

// SaveDocumentJSON writes the document to path in the text format.
func SaveDocumentJSON(ctx context.Context, d *Document, path string) error {
	data, err := d.MarshalJSON()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAttr, err, "cannot encode IR document")
	}
	return writeFile(ctx, path, FormatJSON, append(data, '\n'))
}

func writeFile(ctx context.Context, path string, format Format, data []byte) error {
	err := os.WriteFile(path, data, 0o644)
	observability.IR().OnWrite(ctx, path, string(format), len(data), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s", path)
	}
	return nil
}
