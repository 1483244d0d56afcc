package weights

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/observability"
	"github.com/matzehuels/modelir/pkg/tensor"
)

// magic prefixes every archive file, followed by a zstd frame holding the
// msgpack-encoded payload.
var magic = []byte("MIRW\x01")

type archiveFile struct {
	Nodes []archiveNode `msgpack:"nodes"`
}

type archiveNode struct {
	Name    string          `msgpack:"name"`
	Index   int             `msgpack:"index"`
	Weights []archiveWeight `msgpack:"weights"`
}

type archiveWeight struct {
	Name  string  `msgpack:"name"`
	DType int32   `msgpack:"dtype"`
	Shape []int64 `msgpack:"shape"`
	Data  []byte  `msgpack:"data"`
}

// MarshalBinary encodes the archive, preserving index order.
func (a *Archive) MarshalBinary() ([]byte, error) {
	var file archiveFile
	for _, e := range a.Entries() {
		n := archiveNode{Name: e.Name, Index: e.Index}
		for _, name := range e.names {
			t := e.tensors[name]
			n.Weights = append(n.Weights, archiveWeight{
				Name:  name,
				DType: int32(t.DType),
				Shape: t.Shape,
				Data:  t.Data,
			})
		}
		file.Nodes = append(file.Nodes, n)
	}

	payload, err := msgpack.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("encode weights: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(payload, append([]byte(nil), magic...)), nil
}

// UnmarshalBinary replaces the archive contents with the decoded data.
// Indices are taken from the file and must be dense.
func (a *Archive) UnmarshalBinary(b []byte) error {
	if !bytes.HasPrefix(b, magic) {
		return fmt.Errorf("not a weight archive")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(b[len(magic):], nil)
	if err != nil {
		return fmt.Errorf("decompress weights: %w", err)
	}

	var file archiveFile
	if err := msgpack.Unmarshal(payload, &file); err != nil {
		return fmt.Errorf("decode weights: %w", err)
	}

	entries := make(map[string]*Entry, len(file.Nodes))
	order := make([]string, 0, len(file.Nodes))
	for i, n := range file.Nodes {
		if n.Index != i {
			return fmt.Errorf("node %s: index %d, want %d", n.Name, n.Index, i)
		}
		if _, dup := entries[n.Name]; dup {
			return fmt.Errorf("node %s listed twice", n.Name)
		}
		e := &Entry{Name: n.Name, Index: i, tensors: make(map[string]tensor.Tensor, len(n.Weights))}
		for _, w := range n.Weights {
			e.set(w.Name, tensor.Tensor{DType: tensor.DataType(w.DType), Shape: w.Shape, Data: w.Data})
		}
		entries[n.Name] = e
		order = append(order, n.Name)
	}
	a.entries = entries
	a.order = order
	return nil
}

// Save writes the archive to path. An archive without weights is not
// written; Save logs a warning and returns nil.
func (a *Archive) Save(ctx context.Context, path string) error {
	if a.Len() == 0 {
		a.logger.Warn("weights are not loaded, skipping archive", "path", path)
		return nil
	}
	data, err := a.MarshalBinary()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot encode weights")
	}
	err = os.WriteFile(path, data, 0o644)
	observability.IR().OnWrite(ctx, path, "weights", len(data), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s", path)
	}
	return nil
}

// Load reads an archive written by [Archive.Save].
func Load(path string, opts ...Option) (*Archive, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "weight archive %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "cannot read weight archive %s", path)
	}
	a := New(opts...)
	if err := a.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "cannot parse weight archive %s", path)
	}
	return a, nil
}
