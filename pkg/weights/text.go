package weights

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/observability"
	"github.com/matzehuels/modelir/pkg/tensor"
)

// WriteText writes a listing of every node in index order:
//
//	conv1:
//		 id:0
//		 weights shape:(3, 3, 1, 8)
//		 bias shape:(8,)
func (a *Archive) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range a.Entries() {
		fmt.Fprintf(bw, "%s:\n", e.Name)
		fmt.Fprintf(bw, "\t id:%d\n", e.Index)
		for _, name := range e.names {
			fmt.Fprintf(bw, "\t %s shape:%s\n", name, tupleString(e.tensors[name].Shape))
		}
	}
	return bw.Flush()
}

// SaveText writes the [Archive.WriteText] listing to path. Like
// [Archive.Save], an archive without weights logs a warning and writes
// nothing.
func (a *Archive) SaveText(ctx context.Context, path string) error {
	if a.Len() == 0 {
		a.logger.Warn("weights are not loaded, skipping listing", "path", path)
		return nil
	}
	var buf bytes.Buffer
	if err := a.WriteText(&buf); err != nil {
		return err
	}
	err := os.WriteFile(path, buf.Bytes(), 0o644)
	observability.IR().OnWrite(ctx, path, "text", buf.Len(), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "cannot write %s", path)
	}
	return nil
}

// tupleString renders a shape as a tuple: "()", "(8,)", "(3, 3)".
func tupleString(s tensor.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.FormatInt(d, 10)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
