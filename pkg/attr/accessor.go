package attr

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/modelir/pkg/errors"
	"github.com/matzehuels/modelir/pkg/tensor"
)

// Map holds a node's attributes by key.
type Map map[string]Value

// Keys returns the attribute keys in sorted order.
func (m Map) Keys() []string { return slices.Sorted(maps.Keys(m)) }

// Clone returns a shallow copy of m.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}
	return maps.Clone(m)
}

// Equal reports whether both maps hold the same keys with equal values.
func (m Map) Equal(o Map) bool {
	return maps.EqualFunc(m, o, Value.Equal)
}

// Get returns the payload stored under key (see [Value.Interface]), or def
// when the key is missing, unpopulated, or holds a falsy payload.
func Get(m Map, key string, def any) any {
	v, ok := m[key]
	if !ok || !v.Truthy() {
		return def
	}
	return v.Interface()
}

func GetInt(m Map, key string, def int64) int64 {
	if v, ok := lookup(m, key, KindInt); ok {
		return v.AsInt()
	}
	return def
}

func GetFloat(m Map, key string, def float32) float32 {
	if v, ok := lookup(m, key, KindFloat); ok {
		return v.AsFloat()
	}
	return def
}

func GetBool(m Map, key string, def bool) bool {
	if v, ok := lookup(m, key, KindBool); ok {
		return v.AsBool()
	}
	return def
}

func GetString(m Map, key string, def string) string {
	if v, ok := lookup(m, key, KindString); ok {
		return v.AsString()
	}
	return def
}

func GetDType(m Map, key string, def tensor.DataType) tensor.DataType {
	if v, ok := lookup(m, key, KindDType); ok {
		return v.AsDType()
	}
	return def
}

func GetShape(m Map, key string, def tensor.Shape) tensor.Shape {
	if v, ok := lookup(m, key, KindShape); ok {
		return v.AsShape()
	}
	return def
}

func GetTensor(m Map, key string, def tensor.Tensor) tensor.Tensor {
	if v, ok := lookup(m, key, KindTensor); ok {
		return v.AsTensor()
	}
	return def
}

func GetInts(m Map, key string, def []int64) []int64 {
	if v, ok := lookupList(m, key, KindInt); ok {
		return v.AsInts()
	}
	return def
}

func GetFloats(m Map, key string, def []float32) []float32 {
	if v, ok := lookupList(m, key, KindFloat); ok {
		return v.AsFloats()
	}
	return def
}

func GetStrings(m Map, key string, def []string) []string {
	if v, ok := lookupList(m, key, KindString); ok {
		return v.AsStrings()
	}
	return def
}

func GetShapes(m Map, key string, def []tensor.Shape) []tensor.Shape {
	if v, ok := lookupList(m, key, KindShape); ok {
		return v.AsShapes()
	}
	return def
}

// lookup returns the value under key if it is a truthy scalar of kind k.
func lookup(m Map, key string, k Kind) (Value, bool) {
	v, ok := m[key]
	if !ok || v.kind != k || !v.Truthy() {
		return Value{}, false
	}
	return v, true
}

// lookupList returns the value under key if it is a non-empty list of elem.
func lookupList(m Map, key string, elem Kind) (Value, bool) {
	v, ok := m[key]
	if !ok || v.kind != KindList || v.elem != elem || !v.Truthy() {
		return Value{}, false
	}
	return v, true
}

// Set encodes each entry of attrs into m. A key that already exists is
// overwritten whatever its previous kind. Entries are applied in key order
// and Set stops at the first unsupported value.
func Set(m Map, attrs map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		v, err := Of(attrs[k])
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAttr, err, "attribute %q", k)
		}
		m[k] = v
	}
	return nil
}

// Of converts a Go value to a [Value] by its dynamic type.
func Of(x any) (Value, error) {
	switch x := x.(type) {
	case Value:
		return x, nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(float32(x)), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case tensor.DataType:
		return DType(x), nil
	case tensor.Shape:
		return ShapeOf(x), nil
	case tensor.Tensor:
		return TensorOf(x), nil
	case []int:
		return Ints(convert(x, func(i int) int64 { return int64(i) })), nil
	case []int32:
		return Ints(convert(x, func(i int32) int64 { return int64(i) })), nil
	case []int64:
		return Ints(x), nil
	case []float32:
		return Floats(x), nil
	case []float64:
		return Floats(convert(x, func(f float64) float32 { return float32(f) })), nil
	case []bool:
		return Bools(x), nil
	case []string:
		return Strings(x), nil
	case [][]byte:
		return BytesList(x), nil
	case []tensor.DataType:
		return DTypes(x), nil
	case []tensor.Shape:
		return Shapes(x), nil
	case []tensor.Tensor:
		return Tensors(x), nil
	}
	return Value{}, fmt.Errorf("unsupported attribute type %T", x)
}

func convert[S, T any](in []S, f func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
