package tensor

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// DataType tags the element type of a tensor. Values follow the IR document
// enumeration so they can be written to the wire unchanged.
type DataType int32

const (
	DTUndefined DataType = iota
	DTInt8
	DTInt16
	DTInt32
	DTInt64
	DTUint8
	DTUint16
	DTUint32
	DTUint64
	DTFloat16
	DTFloat32
	DTFloat64
	DTComplex64
	DTComplex128
	DTBool
	DTString
)

var dtypeNames = map[DataType]string{
	DTUndefined:  "undefined",
	DTInt8:       "int8",
	DTInt16:      "int16",
	DTInt32:      "int32",
	DTInt64:      "int64",
	DTUint8:      "uint8",
	DTUint16:     "uint16",
	DTUint32:     "uint32",
	DTUint64:     "uint64",
	DTFloat16:    "float16",
	DTFloat32:    "float32",
	DTFloat64:    "float64",
	DTComplex64:  "complex64",
	DTComplex128: "complex128",
	DTBool:       "bool",
	DTString:     "string",
}

// String returns the lower-case dtype name.
func (d DataType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return "dtype(" + strconv.Itoa(int(d)) + ")"
}

// Size returns the element size in bytes, or 0 for variable-width and
// undefined types.
func (d DataType) Size() int {
	switch d {
	case DTInt8, DTUint8, DTBool:
		return 1
	case DTInt16, DTUint16, DTFloat16:
		return 2
	case DTInt32, DTUint32, DTFloat32:
		return 4
	case DTInt64, DTUint64, DTFloat64, DTComplex64:
		return 8
	case DTComplex128:
		return 16
	}
	return 0
}

// UnknownDim marks a dynamic dimension.
const UnknownDim int64 = -1

// Shape is an ordered list of dimension sizes.
type Shape []int64

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// Known reports whether every dimension is non-negative.
func (s Shape) Known() bool {
	return !slices.ContainsFunc(s, func(d int64) bool { return d < 0 })
}

// NumElements returns the element count, or -1 if any dimension is unknown.
// A rank-0 shape holds one element.
func (s Shape) NumElements() int64 {
	n := int64(1)
	for _, d := range s {
		if d < 0 {
			return -1
		}
		n *= d
	}
	return n
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(o Shape) bool { return slices.Equal(s, o) }

// String formats the dimensions as a comma-separated list. Unknown
// dimensions are skipped unless keepUnknown is set.
func (s Shape) String(keepUnknown bool) string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		if d == UnknownDim && !keepUnknown {
			continue
		}
		parts = append(parts, strconv.FormatInt(d, 10))
	}
	return strings.Join(parts, ", ")
}

// Tensor is a typed, shaped byte payload.
type Tensor struct {
	DType DataType
	Shape Shape
	Data  []byte
}

// New returns a tensor after checking that the payload size matches the
// shape for fixed-width dtypes.
func New(dtype DataType, shape Shape, data []byte) (Tensor, error) {
	t := Tensor{DType: dtype, Shape: slices.Clone(shape), Data: data}
	if err := t.Validate(); err != nil {
		return Tensor{}, err
	}
	return t, nil
}

// Validate checks the payload length against the shape. Tensors with
// unknown dimensions or variable-width dtypes are not checked.
func (t Tensor) Validate() error {
	size := t.DType.Size()
	n := t.Shape.NumElements()
	if size == 0 || n < 0 {
		return nil
	}
	if want := n * int64(size); int64(len(t.Data)) != want {
		return fmt.Errorf("tensor %s%v: payload has %d bytes, want %d", t.DType, []int64(t.Shape), len(t.Data), want)
	}
	return nil
}

// IsZero reports whether the tensor carries no dtype, shape or data.
func (t Tensor) IsZero() bool {
	return t.DType == DTUndefined && len(t.Shape) == 0 && len(t.Data) == 0
}

// Equal reports whether both tensors have the same dtype, shape and bytes.
func (t Tensor) Equal(o Tensor) bool {
	return t.DType == o.DType && t.Shape.Equal(o.Shape) && string(t.Data) == string(o.Data)
}

// Checksum returns the hex BLAKE3 digest of the payload.
func (t Tensor) Checksum() string {
	sum := blake3.Sum256(t.Data)
	return hex.EncodeToString(sum[:])
}
