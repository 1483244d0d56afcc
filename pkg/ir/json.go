package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/tensor"
)

// The text format mirrors the canonical JSON mapping of the binary schema:
// field names as declared, int64 values as decimal strings, bytes as
// base64 and enums by name. Readers also accept bare numbers for int64 and
// enum fields. Unknown fields are ignored.

type jsonDocument struct {
	Node    []jsonNode `json:"node,omitempty"`
	Version int32      `json:"version,omitempty"`
}

type jsonNode struct {
	Name  string              `json:"name,omitempty"`
	Op    string              `json:"op,omitempty"`
	Input []string            `json:"input,omitempty"`
	Attr  map[string]jsonAttr `json:"attr,omitempty"`
}

type jsonAttr struct {
	List   *jsonList   `json:"list,omitempty"`
	S      *[]byte     `json:"s,omitempty"`
	I      *jsonInt64  `json:"i,omitempty"`
	F      *jsonFloat  `json:"f,omitempty"`
	B      *bool       `json:"b,omitempty"`
	Type   *jsonDType  `json:"type,omitempty"`
	Shape  *jsonShape  `json:"shape,omitempty"`
	Tensor *jsonTensor `json:"tensor,omitempty"`
}

type jsonList struct {
	S      [][]byte     `json:"s,omitempty"`
	I      []jsonInt64  `json:"i,omitempty"`
	F      []jsonFloat  `json:"f,omitempty"`
	B      []bool       `json:"b,omitempty"`
	Type   []jsonDType  `json:"type,omitempty"`
	Shape  []jsonShape  `json:"shape,omitempty"`
	Tensor []jsonTensor `json:"tensor,omitempty"`
}

type jsonShape struct {
	Dim         []jsonDim `json:"dim,omitempty"`
	UnknownRank bool      `json:"unknown_rank,omitempty"`
}

type jsonDim struct {
	Size jsonInt64 `json:"size,omitempty"`
	Name string    `json:"name,omitempty"`
}

type jsonTensor struct {
	DType         jsonDType  `json:"dtype,omitempty"`
	TensorShape   *jsonShape `json:"tensor_shape,omitempty"`
	TensorContent []byte     `json:"tensor_content,omitempty"`
}

// jsonInt64 is written as a quoted decimal and read from either form.
type jsonInt64 int64

func (i jsonInt64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(i), 10))), nil
}

func (i *jsonInt64) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid int64 %s", b)
	}
	*i = jsonInt64(v)
	return nil
}

// jsonFloat spells non-finite values as "NaN", "Infinity" and "-Infinity".
type jsonFloat float32

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 32), nil
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"NaN"`:
		*f = jsonFloat(math.NaN())
		return nil
	case `"Infinity"`:
		*f = jsonFloat(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*f = jsonFloat(math.Inf(-1))
		return nil
	}
	v, err := strconv.ParseFloat(string(bytes.Trim(b, `"`)), 32)
	if err != nil {
		return fmt.Errorf("invalid float %s", b)
	}
	*f = jsonFloat(v)
	return nil
}

// jsonDType is written by enum name ("DT_FLOAT32").
type jsonDType tensor.DataType

func dtypeEnumName(d tensor.DataType) string {
	return "DT_" + strings.ToUpper(d.String())
}

func (d jsonDType) MarshalJSON() ([]byte, error) {
	dt := tensor.DataType(d)
	if dt < tensor.DTUndefined || dt > tensor.DTString {
		return strconv.AppendInt(nil, int64(dt), 10), nil
	}
	return []byte(strconv.Quote(dtypeEnumName(dt))), nil
}

func (d *jsonDType) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		name, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		for dt := tensor.DTUndefined; dt <= tensor.DTString; dt++ {
			if dtypeEnumName(dt) == name {
				*d = jsonDType(dt)
				return nil
			}
		}
		return fmt.Errorf("unknown data type %q", name)
	}
	v, err := strconv.ParseInt(string(b), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid data type %s", b)
	}
	*d = jsonDType(v)
	return nil
}

// MarshalJSON encodes the document in the text format, indented by two
// spaces.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := jsonDocument{Version: d.Version, Node: make([]jsonNode, len(d.Nodes))}
	for i, n := range d.Nodes {
		jn := jsonNode{Name: n.Name, Op: n.Op, Input: n.Input}
		if len(n.Attr) > 0 {
			jn.Attr = make(map[string]jsonAttr, len(n.Attr))
			for key, v := range n.Attr {
				ja, err := toJSONAttr(v)
				if err != nil {
					return nil, fmt.Errorf("node %s: attr %s: %w", n.Name, key, err)
				}
				jn.Attr[key] = ja
			}
		}
		out.Node[i] = jn
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalJSON decodes a document from the text format.
func (d *Document) UnmarshalJSON(b []byte) error {
	var in jsonDocument
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	out := Document{Version: in.Version, Nodes: make([]*NodeDef, len(in.Node))}
	for i, jn := range in.Node {
		n := &NodeDef{Name: jn.Name, Op: jn.Op, Input: jn.Input, Attr: make(attr.Map, len(jn.Attr))}
		for key, ja := range jn.Attr {
			v, err := fromJSONAttr(ja)
			if err != nil {
				return fmt.Errorf("node %s: attr %s: %w", jn.Name, key, err)
			}
			n.Attr[key] = v
		}
		out.Nodes[i] = n
	}
	*d = out
	return nil
}

func toJSONAttr(v attr.Value) (jsonAttr, error) {
	var ja jsonAttr
	switch v.Kind() {
	case attr.KindNone:
	case attr.KindString:
		s := v.AsBytes()
		if s == nil {
			s = []byte{}
		}
		ja.S = &s
	case attr.KindInt:
		i := jsonInt64(v.AsInt())
		ja.I = &i
	case attr.KindFloat:
		f := jsonFloat(v.AsFloat())
		ja.F = &f
	case attr.KindBool:
		b := v.AsBool()
		ja.B = &b
	case attr.KindDType:
		d := jsonDType(v.AsDType())
		ja.Type = &d
	case attr.KindShape:
		s := toJSONShape(v.AsShape())
		ja.Shape = &s
	case attr.KindTensor:
		t := toJSONTensor(v.AsTensor())
		ja.Tensor = &t
	case attr.KindList:
		l, err := toJSONList(v)
		if err != nil {
			return ja, err
		}
		ja.List = &l
	default:
		return ja, fmt.Errorf("unsupported attribute kind %s", v.Kind())
	}
	return ja, nil
}

func toJSONList(v attr.Value) (jsonList, error) {
	var l jsonList
	switch v.Elem() {
	case attr.KindNone:
	case attr.KindString:
		l.S = v.AsByteList()
	case attr.KindInt:
		l.I = mapSlice(v.AsInts(), func(i int64) jsonInt64 { return jsonInt64(i) })
	case attr.KindFloat:
		l.F = mapSlice(v.AsFloats(), func(f float32) jsonFloat { return jsonFloat(f) })
	case attr.KindBool:
		l.B = v.AsBools()
	case attr.KindDType:
		l.Type = mapSlice(v.AsDTypes(), func(d tensor.DataType) jsonDType { return jsonDType(d) })
	case attr.KindShape:
		l.Shape = mapSlice(v.AsShapes(), toJSONShape)
	case attr.KindTensor:
		l.Tensor = mapSlice(v.AsTensors(), toJSONTensor)
	default:
		return l, fmt.Errorf("unsupported list element kind %s", v.Elem())
	}
	return l, nil
}

func toJSONShape(s tensor.Shape) jsonShape {
	return jsonShape{Dim: mapSlice(s, func(d int64) jsonDim { return jsonDim{Size: jsonInt64(d)} })}
}

func toJSONTensor(t tensor.Tensor) jsonTensor {
	s := toJSONShape(t.Shape)
	return jsonTensor{DType: jsonDType(t.DType), TensorShape: &s, TensorContent: t.Data}
}

// fromJSONAttr picks the populated oneof member. When several are present
// the last one in schema order wins, as it would on the wire.
func fromJSONAttr(ja jsonAttr) (attr.Value, error) {
	switch {
	case ja.Tensor != nil:
		return attr.TensorOf(fromJSONTensor(*ja.Tensor)), nil
	case ja.Shape != nil:
		return attr.ShapeOf(fromJSONShape(ja.Shape)), nil
	case ja.Type != nil:
		return attr.DType(tensor.DataType(*ja.Type)), nil
	case ja.B != nil:
		return attr.Bool(*ja.B), nil
	case ja.F != nil:
		return attr.Float(float32(*ja.F)), nil
	case ja.I != nil:
		return attr.Int(int64(*ja.I)), nil
	case ja.S != nil:
		return attr.Bytes(*ja.S), nil
	case ja.List != nil:
		return fromJSONList(*ja.List)
	}
	return attr.Value{}, nil
}

func fromJSONList(l jsonList) (attr.Value, error) {
	var (
		v     attr.Value
		kinds int
	)
	if len(l.S) > 0 {
		v, kinds = attr.BytesList(l.S), kinds+1
	}
	if len(l.I) > 0 {
		v, kinds = attr.Ints(mapSlice(l.I, func(i jsonInt64) int64 { return int64(i) })), kinds+1
	}
	if len(l.F) > 0 {
		v, kinds = attr.Floats(mapSlice(l.F, func(f jsonFloat) float32 { return float32(f) })), kinds+1
	}
	if len(l.B) > 0 {
		v, kinds = attr.Bools(l.B), kinds+1
	}
	if len(l.Type) > 0 {
		v, kinds = attr.DTypes(mapSlice(l.Type, func(d jsonDType) tensor.DataType { return tensor.DataType(d) })), kinds+1
	}
	if len(l.Shape) > 0 {
		v, kinds = attr.Shapes(mapSlice(l.Shape, func(s jsonShape) tensor.Shape { return fromJSONShape(&s) })), kinds+1
	}
	if len(l.Tensor) > 0 {
		v, kinds = attr.Tensors(mapSlice(l.Tensor, fromJSONTensor)), kinds+1
	}
	switch kinds {
	case 0:
		return attr.EmptyList(), nil
	case 1:
		return v, nil
	}
	return attr.Value{}, fmt.Errorf("list mixes %d element kinds", kinds)
}

func fromJSONShape(s *jsonShape) tensor.Shape {
	out := tensor.Shape{}
	if s == nil {
		return out
	}
	for _, d := range s.Dim {
		out = append(out, int64(d.Size))
	}
	return out
}

func fromJSONTensor(t jsonTensor) tensor.Tensor {
	return tensor.Tensor{
		DType: tensor.DataType(t.DType),
		Shape: fromJSONShape(t.TensorShape),
		Data:  t.TensorContent,
	}
}

func mapSlice[S, T any](in []S, f func(S) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, x := range in {
		out[i] = f(x)
	}
	return out
}
