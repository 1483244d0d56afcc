package attr

import (
	"math"
	"slices"

	"github.com/matzehuels/modelir/pkg/tensor"
)

// Kind selects the populated variant of a [Value].
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindDType
	KindShape
	KindTensor
	KindList
)

var kindNames = [...]string{"none", "int", "float", "bool", "string", "dtype", "shape", "tensor", "list"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a single attribute value. Construct it with [Int], [Float],
// [Strings] and friends; the zero Value is unpopulated.
type Value struct {
	kind Kind
	elem Kind // element kind when kind == KindList
	v    any
}

func Int(i int64) Value                { return Value{kind: KindInt, v: i} }
func Float(f float32) Value            { return Value{kind: KindFloat, v: f} }
func Bool(b bool) Value                { return Value{kind: KindBool, v: b} }
func String(s string) Value            { return Value{kind: KindString, v: []byte(s)} }
func Bytes(b []byte) Value             { return Value{kind: KindString, v: b} }
func DType(d tensor.DataType) Value    { return Value{kind: KindDType, v: d} }
func ShapeOf(s tensor.Shape) Value     { return Value{kind: KindShape, v: s} }
func TensorOf(t tensor.Tensor) Value   { return Value{kind: KindTensor, v: t} }
func Ints(v []int64) Value             { return list(KindInt, v) }
func Floats(v []float32) Value         { return list(KindFloat, v) }
func Bools(v []bool) Value             { return list(KindBool, v) }
func BytesList(v [][]byte) Value       { return list(KindString, v) }
func DTypes(v []tensor.DataType) Value { return list(KindDType, v) }
func Shapes(v []tensor.Shape) Value    { return list(KindShape, v) }
func Tensors(v []tensor.Tensor) Value  { return list(KindTensor, v) }

// EmptyList returns a list value with no elements and no element kind.
func EmptyList() Value { return Value{kind: KindList} }

// Strings returns a list value of byte strings.
func Strings(v []string) Value {
	b := make([][]byte, len(v))
	for i, s := range v {
		b[i] = []byte(s)
	}
	return list(KindString, b)
}

func list(elem Kind, v any) Value { return Value{kind: KindList, elem: elem, v: v} }

// Kind returns the populated variant.
func (v Value) Kind() Kind { return v.kind }

// Elem returns the element kind of a list value. Empty lists decoded from a
// document report KindNone.
func (v Value) Elem() Kind { return v.elem }

// IsSet reports whether a variant is populated.
func (v Value) IsSet() bool { return v.kind != KindNone }

func (v Value) AsInt() int64 {
	i, _ := v.v.(int64)
	return i
}

func (v Value) AsFloat() float32 {
	f, _ := v.v.(float32)
	return f
}

func (v Value) AsBool() bool {
	b, _ := v.v.(bool)
	return b
}

func (v Value) AsBytes() []byte {
	b, _ := v.v.([]byte)
	return b
}

func (v Value) AsString() string { return string(v.AsBytes()) }

func (v Value) AsDType() tensor.DataType {
	d, _ := v.v.(tensor.DataType)
	return d
}

func (v Value) AsShape() tensor.Shape {
	s, _ := v.v.(tensor.Shape)
	return s
}

func (v Value) AsTensor() tensor.Tensor {
	t, _ := v.v.(tensor.Tensor)
	return t
}

// List accessors return nil unless the value is a list of the matching
// element kind.
func (v Value) AsInts() []int64             { return listOf[int64](v, KindInt) }
func (v Value) AsFloats() []float32         { return listOf[float32](v, KindFloat) }
func (v Value) AsBools() []bool             { return listOf[bool](v, KindBool) }
func (v Value) AsByteList() [][]byte        { return listOf[[]byte](v, KindString) }
func (v Value) AsDTypes() []tensor.DataType { return listOf[tensor.DataType](v, KindDType) }
func (v Value) AsShapes() []tensor.Shape    { return listOf[tensor.Shape](v, KindShape) }
func (v Value) AsTensors() []tensor.Tensor  { return listOf[tensor.Tensor](v, KindTensor) }

// AsStrings decodes a list of byte strings to text.
func (v Value) AsStrings() []string {
	b := v.AsByteList()
	if b == nil {
		return nil
	}
	out := make([]string, len(b))
	for i, s := range b {
		out[i] = string(s)
	}
	return out
}

func listOf[T any](v Value, elem Kind) []T {
	if v.kind != KindList || v.elem != elem {
		return nil
	}
	s, _ := v.v.([]T)
	return s
}

// Len returns the number of list elements, or 0 for non-list values.
func (v Value) Len() int {
	if v.kind != KindList {
		return 0
	}
	switch s := v.v.(type) {
	case []int64:
		return len(s)
	case []float32:
		return len(s)
	case []bool:
		return len(s)
	case [][]byte:
		return len(s)
	case []tensor.DataType:
		return len(s)
	case []tensor.Shape:
		return len(s)
	case []tensor.Tensor:
		return len(s)
	}
	return 0
}

// Interface returns the payload as a plain Go value: byte strings are
// decoded to string, lists become typed slices ([]string for byte-string
// lists). Unpopulated values and empty untyped lists return nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindNone:
		return nil
	case KindString:
		return v.AsString()
	case KindList:
		if v.elem == KindString {
			return v.AsStrings()
		}
		return v.v
	}
	return v.v
}

// Truthy reports whether the payload counts as a value for [Get]. Zero
// numbers, false, empty strings and empty lists are falsy; shapes and
// tensors are truthy whenever populated.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindInt:
		return v.AsInt() != 0
	case KindFloat:
		return v.AsFloat() != 0
	case KindBool:
		return v.AsBool()
	case KindString:
		return len(v.AsBytes()) > 0
	case KindDType:
		return v.AsDType() != tensor.DTUndefined
	case KindShape, KindTensor:
		return true
	case KindList:
		return v.Len() > 0
	}
	return false
}

// Equal reports whether both values hold the same variant and payload.
// Empty lists compare equal regardless of element kind. Floats compare by
// bit pattern so NaN payloads round-trip as equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindInt:
		return v.AsInt() == o.AsInt()
	case KindFloat:
		return math.Float32bits(v.AsFloat()) == math.Float32bits(o.AsFloat())
	case KindBool:
		return v.AsBool() == o.AsBool()
	case KindString:
		return string(v.AsBytes()) == string(o.AsBytes())
	case KindDType:
		return v.AsDType() == o.AsDType()
	case KindShape:
		return v.AsShape().Equal(o.AsShape())
	case KindTensor:
		return v.AsTensor().Equal(o.AsTensor())
	}

	if v.Len() == 0 || o.Len() == 0 {
		return v.Len() == o.Len()
	}
	if v.elem != o.elem {
		return false
	}
	switch v.elem {
	case KindInt:
		return slices.Equal(v.AsInts(), o.AsInts())
	case KindFloat:
		return slices.EqualFunc(v.AsFloats(), o.AsFloats(), func(a, b float32) bool {
			return math.Float32bits(a) == math.Float32bits(b)
		})
	case KindBool:
		return slices.Equal(v.AsBools(), o.AsBools())
	case KindString:
		return slices.Equal(v.AsStrings(), o.AsStrings())
	case KindDType:
		return slices.Equal(v.AsDTypes(), o.AsDTypes())
	case KindShape:
		return slices.EqualFunc(v.AsShapes(), o.AsShapes(), tensor.Shape.Equal)
	case KindTensor:
		return slices.EqualFunc(v.AsTensors(), o.AsTensors(), tensor.Tensor.Equal)
	}
	return false
}
