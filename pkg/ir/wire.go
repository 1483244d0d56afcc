package ir

import (
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/matzehuels/modelir/pkg/attr"
	"github.com/matzehuels/modelir/pkg/tensor"
)

// Field numbers of the binary schema:
//
//	GraphDef      { repeated NodeDef node = 1; int32 version = 2; }
//	NodeDef       { string name = 1; string op = 2; repeated string input = 3; map<string, AttrValue> attr = 4; }
//	AttrValue     { oneof { ListValue list = 1; bytes s = 2; int64 i = 3; float f = 4; bool b = 5;
//	                        DataType type = 6; TensorShape shape = 7; LiteralTensor tensor = 8; } }
//	ListValue     { repeated s = 2; i = 3; f = 4; b = 5; type = 6; shape = 7; tensor = 8; }
//	TensorShape   { repeated Dim dim = 2; bool unknown_rank = 3; }  Dim { int64 size = 1; string name = 2; }
//	LiteralTensor { DataType dtype = 1; TensorShape tensor_shape = 2; bytes tensor_content = 4; }
const (
	fieldGraphNode    protowire.Number = 1
	fieldGraphVersion protowire.Number = 2

	fieldNodeName  protowire.Number = 1
	fieldNodeOp    protowire.Number = 2
	fieldNodeInput protowire.Number = 3
	fieldNodeAttr  protowire.Number = 4

	fieldMapKey   protowire.Number = 1
	fieldMapValue protowire.Number = 2

	fieldAttrList   protowire.Number = 1
	fieldAttrS      protowire.Number = 2
	fieldAttrI      protowire.Number = 3
	fieldAttrF      protowire.Number = 4
	fieldAttrB      protowire.Number = 5
	fieldAttrType   protowire.Number = 6
	fieldAttrShape  protowire.Number = 7
	fieldAttrTensor protowire.Number = 8

	fieldShapeDim         protowire.Number = 2
	fieldShapeUnknownRank protowire.Number = 3
	fieldDimSize          protowire.Number = 1

	fieldTensorDType   protowire.Number = 1
	fieldTensorShape   protowire.Number = 2
	fieldTensorContent protowire.Number = 4
)

// -----------------------------------------------------------------------------
// Encoding
// -----------------------------------------------------------------------------

func appendDocument(b []byte, d *Document) ([]byte, error) {
	for _, n := range d.Nodes {
		msg, err := appendNode(nil, n)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fieldGraphNode, msg)
	}
	if d.Version != 0 {
		b = protowire.AppendTag(b, fieldGraphVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.Version))
	}
	return b, nil
}

func appendNode(b []byte, n *NodeDef) ([]byte, error) {
	if n.Name != "" {
		b = appendString(b, fieldNodeName, n.Name)
	}
	if n.Op != "" {
		b = appendString(b, fieldNodeOp, n.Op)
	}
	for _, in := range n.Input {
		b = appendString(b, fieldNodeInput, in)
	}
	for _, key := range n.Attr.Keys() {
		value, err := appendAttr(nil, n.Attr[key])
		if err != nil {
			return nil, fmt.Errorf("node %s: attr %s: %w", n.Name, key, err)
		}
		entry := appendString(nil, fieldMapKey, key)
		entry = appendMessage(entry, fieldMapValue, value)
		b = appendMessage(b, fieldNodeAttr, entry)
	}
	return b, nil
}

func appendAttr(b []byte, v attr.Value) ([]byte, error) {
	switch v.Kind() {
	case attr.KindNone:
		return b, nil
	case attr.KindList:
		list, err := appendList(nil, v)
		if err != nil {
			return nil, err
		}
		return appendMessage(b, fieldAttrList, list), nil
	case attr.KindString:
		b = protowire.AppendTag(b, fieldAttrS, protowire.BytesType)
		return protowire.AppendBytes(b, v.AsBytes()), nil
	case attr.KindInt:
		b = protowire.AppendTag(b, fieldAttrI, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(v.AsInt())), nil
	case attr.KindFloat:
		b = protowire.AppendTag(b, fieldAttrF, protowire.Fixed32Type)
		return protowire.AppendFixed32(b, math.Float32bits(v.AsFloat())), nil
	case attr.KindBool:
		b = protowire.AppendTag(b, fieldAttrB, protowire.VarintType)
		return protowire.AppendVarint(b, protowire.EncodeBool(v.AsBool())), nil
	case attr.KindDType:
		b = protowire.AppendTag(b, fieldAttrType, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(v.AsDType())), nil
	case attr.KindShape:
		return appendMessage(b, fieldAttrShape, appendShape(nil, v.AsShape())), nil
	case attr.KindTensor:
		return appendMessage(b, fieldAttrTensor, appendTensor(nil, v.AsTensor())), nil
	}
	return nil, fmt.Errorf("unsupported attribute kind %s", v.Kind())
}

func appendList(b []byte, v attr.Value) ([]byte, error) {
	switch v.Elem() {
	case attr.KindNone:
		return b, nil
	case attr.KindString:
		for _, s := range v.AsByteList() {
			b = protowire.AppendTag(b, fieldAttrS, protowire.BytesType)
			b = protowire.AppendBytes(b, s)
		}
	case attr.KindInt:
		var packed []byte
		for _, i := range v.AsInts() {
			packed = protowire.AppendVarint(packed, uint64(i))
		}
		b = appendMessage(b, fieldAttrI, packed)
	case attr.KindFloat:
		var packed []byte
		for _, f := range v.AsFloats() {
			packed = protowire.AppendFixed32(packed, math.Float32bits(f))
		}
		b = appendMessage(b, fieldAttrF, packed)
	case attr.KindBool:
		var packed []byte
		for _, x := range v.AsBools() {
			packed = protowire.AppendVarint(packed, protowire.EncodeBool(x))
		}
		b = appendMessage(b, fieldAttrB, packed)
	case attr.KindDType:
		var packed []byte
		for _, d := range v.AsDTypes() {
			packed = protowire.AppendVarint(packed, uint64(d))
		}
		b = appendMessage(b, fieldAttrType, packed)
	case attr.KindShape:
		for _, s := range v.AsShapes() {
			b = appendMessage(b, fieldAttrShape, appendShape(nil, s))
		}
	case attr.KindTensor:
		for _, t := range v.AsTensors() {
			b = appendMessage(b, fieldAttrTensor, appendTensor(nil, t))
		}
	default:
		return nil, fmt.Errorf("unsupported list element kind %s", v.Elem())
	}
	return b, nil
}

func appendShape(b []byte, s tensor.Shape) []byte {
	for _, dim := range s {
		var msg []byte
		if dim != 0 {
			msg = protowire.AppendTag(msg, fieldDimSize, protowire.VarintType)
			msg = protowire.AppendVarint(msg, uint64(dim))
		}
		b = appendMessage(b, fieldShapeDim, msg)
	}
	return b
}

func appendTensor(b []byte, t tensor.Tensor) []byte {
	if t.DType != tensor.DTUndefined {
		b = protowire.AppendTag(b, fieldTensorDType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.DType))
	}
	b = appendMessage(b, fieldTensorShape, appendShape(nil, t.Shape))
	if len(t.Data) > 0 {
		b = protowire.AppendTag(b, fieldTensorContent, protowire.BytesType)
		b = protowire.AppendBytes(b, t.Data)
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// -----------------------------------------------------------------------------
// Decoding
// -----------------------------------------------------------------------------

// field is one decoded tag/value pair. Scalar payloads land in num, length
// delimited payloads in raw.
type field struct {
	num protowire.Number
	typ protowire.Type
	val uint64
	raw []byte
}

// eachField iterates over the top-level fields of a message. Group wire
// types are rejected since no message in the schema uses them.
func eachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.val, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.val = uint64(v)
		case protowire.Fixed64Type:
			f.val, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		default:
			return fmt.Errorf("field %d: unsupported wire type %d", num, typ)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

func (f field) str() (string, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return "", err
	}
	if !utf8.Valid(f.raw) {
		return "", fmt.Errorf("field %d: invalid UTF-8", f.num)
	}
	return string(f.raw), nil
}

func decodeDocument(b []byte) (*Document, error) {
	d := &Document{}
	err := eachField(b, func(f field) error {
		switch f.num {
		case fieldGraphNode:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			n, err := decodeNode(f.raw)
			if err != nil {
				return fmt.Errorf("node %d: %w", len(d.Nodes), err)
			}
			d.Nodes = append(d.Nodes, n)
		case fieldGraphVersion:
			if err := f.expect(protowire.VarintType); err != nil {
				return err
			}
			d.Version = int32(f.val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func decodeNode(b []byte) (*NodeDef, error) {
	n := &NodeDef{Attr: attr.Map{}}
	err := eachField(b, func(f field) error {
		var err error
		switch f.num {
		case fieldNodeName:
			n.Name, err = f.str()
		case fieldNodeOp:
			n.Op, err = f.str()
		case fieldNodeInput:
			var in string
			if in, err = f.str(); err == nil {
				n.Input = append(n.Input, in)
			}
		case fieldNodeAttr:
			if err = f.expect(protowire.BytesType); err == nil {
				err = decodeAttrEntry(f.raw, n.Attr)
			}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func decodeAttrEntry(b []byte, m attr.Map) error {
	var (
		key   string
		value attr.Value
	)
	err := eachField(b, func(f field) error {
		var err error
		switch f.num {
		case fieldMapKey:
			key, err = f.str()
		case fieldMapValue:
			if err = f.expect(protowire.BytesType); err == nil {
				value, err = decodeAttr(f.raw)
			}
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("attr %q: %w", key, err)
	}
	m[key] = value
	return nil
}

func decodeAttr(b []byte) (attr.Value, error) {
	var v attr.Value
	err := eachField(b, func(f field) error {
		var err error
		switch f.num {
		case fieldAttrList:
			if err = f.expect(protowire.BytesType); err == nil {
				v, err = decodeList(f.raw)
			}
		case fieldAttrS:
			if err = f.expect(protowire.BytesType); err == nil {
				v = attr.Bytes(f.raw)
			}
		case fieldAttrI:
			if err = f.expect(protowire.VarintType); err == nil {
				v = attr.Int(int64(f.val))
			}
		case fieldAttrF:
			if err = f.expect(protowire.Fixed32Type); err == nil {
				v = attr.Float(math.Float32frombits(uint32(f.val)))
			}
		case fieldAttrB:
			if err = f.expect(protowire.VarintType); err == nil {
				v = attr.Bool(protowire.DecodeBool(f.val))
			}
		case fieldAttrType:
			if err = f.expect(protowire.VarintType); err == nil {
				v = attr.DType(tensor.DataType(int32(f.val)))
			}
		case fieldAttrShape:
			if err = f.expect(protowire.BytesType); err == nil {
				var s tensor.Shape
				if s, err = decodeShape(f.raw); err == nil {
					v = attr.ShapeOf(s)
				}
			}
		case fieldAttrTensor:
			if err = f.expect(protowire.BytesType); err == nil {
				var t tensor.Tensor
				if t, err = decodeTensor(f.raw); err == nil {
					v = attr.TensorOf(t)
				}
			}
		}
		return err
	})
	return v, err
}

// listBuilder accumulates list elements and enforces a single element kind.
type listBuilder struct {
	elem    attr.Kind
	strs    [][]byte
	ints    []int64
	floats  []float32
	bools   []bool
	dtypes  []tensor.DataType
	shapes  []tensor.Shape
	tensors []tensor.Tensor
}

func (l *listBuilder) claim(k attr.Kind) error {
	if l.elem != attr.KindNone && l.elem != k {
		return fmt.Errorf("list mixes %s and %s elements", l.elem, k)
	}
	l.elem = k
	return nil
}

func (l *listBuilder) value() attr.Value {
	switch l.elem {
	case attr.KindString:
		return attr.BytesList(l.strs)
	case attr.KindInt:
		return attr.Ints(l.ints)
	case attr.KindFloat:
		return attr.Floats(l.floats)
	case attr.KindBool:
		return attr.Bools(l.bools)
	case attr.KindDType:
		return attr.DTypes(l.dtypes)
	case attr.KindShape:
		return attr.Shapes(l.shapes)
	case attr.KindTensor:
		return attr.Tensors(l.tensors)
	}
	return attr.EmptyList()
}

func decodeList(b []byte) (attr.Value, error) {
	var l listBuilder
	err := eachField(b, func(f field) error {
		switch f.num {
		case fieldAttrS:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			if err := l.claim(attr.KindString); err != nil {
				return err
			}
			l.strs = append(l.strs, f.raw)
		case fieldAttrI:
			if err := l.claim(attr.KindInt); err != nil {
				return err
			}
			return eachVarint(f, func(x uint64) { l.ints = append(l.ints, int64(x)) })
		case fieldAttrF:
			if err := l.claim(attr.KindFloat); err != nil {
				return err
			}
			return eachFixed32(f, func(x uint32) { l.floats = append(l.floats, math.Float32frombits(x)) })
		case fieldAttrB:
			if err := l.claim(attr.KindBool); err != nil {
				return err
			}
			return eachVarint(f, func(x uint64) { l.bools = append(l.bools, protowire.DecodeBool(x)) })
		case fieldAttrType:
			if err := l.claim(attr.KindDType); err != nil {
				return err
			}
			return eachVarint(f, func(x uint64) { l.dtypes = append(l.dtypes, tensor.DataType(int32(x))) })
		case fieldAttrShape:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			if err := l.claim(attr.KindShape); err != nil {
				return err
			}
			s, err := decodeShape(f.raw)
			if err != nil {
				return err
			}
			l.shapes = append(l.shapes, s)
		case fieldAttrTensor:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			if err := l.claim(attr.KindTensor); err != nil {
				return err
			}
			t, err := decodeTensor(f.raw)
			if err != nil {
				return err
			}
			l.tensors = append(l.tensors, t)
		}
		return nil
	})
	if err != nil {
		return attr.Value{}, err
	}
	return l.value(), nil
}

// eachVarint yields the values of a repeated varint field in either packed
// or unpacked encoding.
func eachVarint(f field, fn func(uint64)) error {
	switch f.typ {
	case protowire.VarintType:
		fn(f.val)
		return nil
	case protowire.BytesType:
		b := f.raw
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("field %d: %w", f.num, protowire.ParseError(n))
			}
			fn(v)
			b = b[n:]
		}
		return nil
	}
	return f.expect(protowire.VarintType)
}

// eachFixed32 yields the values of a repeated fixed32 field in either packed
// or unpacked encoding.
func eachFixed32(f field, fn func(uint32)) error {
	switch f.typ {
	case protowire.Fixed32Type:
		fn(uint32(f.val))
		return nil
	case protowire.BytesType:
		b := f.raw
		for len(b) > 0 {
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return fmt.Errorf("field %d: %w", f.num, protowire.ParseError(n))
			}
			fn(v)
			b = b[n:]
		}
		return nil
	}
	return f.expect(protowire.Fixed32Type)
}

// decodeShape reads a TensorShape. Dimension names and the unknown-rank
// flag are not represented in [tensor.Shape] and are skipped.
func decodeShape(b []byte) (tensor.Shape, error) {
	s := tensor.Shape{}
	err := eachField(b, func(f field) error {
		if f.num != fieldShapeDim {
			return nil
		}
		if err := f.expect(protowire.BytesType); err != nil {
			return err
		}
		var size int64
		err := eachField(f.raw, func(d field) error {
			if d.num != fieldDimSize {
				return nil
			}
			if err := d.expect(protowire.VarintType); err != nil {
				return err
			}
			size = int64(d.val)
			return nil
		})
		if err != nil {
			return err
		}
		s = append(s, size)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func decodeTensor(b []byte) (tensor.Tensor, error) {
	t := tensor.Tensor{Shape: tensor.Shape{}}
	err := eachField(b, func(f field) error {
		var err error
		switch f.num {
		case fieldTensorDType:
			if err = f.expect(protowire.VarintType); err == nil {
				t.DType = tensor.DataType(int32(f.val))
			}
		case fieldTensorShape:
			if err = f.expect(protowire.BytesType); err == nil {
				t.Shape, err = decodeShape(f.raw)
			}
		case fieldTensorContent:
			if err = f.expect(protowire.BytesType); err == nil {
				t.Data = f.raw
			}
		}
		return err
	})
	if err != nil {
		return tensor.Tensor{}, err
	}
	return t, nil
}
