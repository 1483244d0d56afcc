package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeString(t *testing.T) {
	s := Shape{-1, 224, 224, 3}
	assert.Equal(t, "224, 224, 3", s.String(false))
	assert.Equal(t, "-1, 224, 224, 3", s.String(true))
	assert.Equal(t, "", Shape{}.String(true))
}

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int64
	}{
		{"scalar", Shape{}, 1},
		{"matrix", Shape{2, 3}, 6},
		{"unknown", Shape{-1, 3}, -1},
		{"empty dim", Shape{4, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.NumElements())
		})
	}
	assert.False(t, Shape{-1, 3}.Known())
	assert.True(t, Shape{1, 3}.Known())
}

func TestNewValidatesPayload(t *testing.T) {
	_, err := New(DTFloat32, Shape{2, 2}, make([]byte, 16))
	require.NoError(t, err)

	_, err = New(DTFloat32, Shape{2, 2}, make([]byte, 15))
	require.Error(t, err)

	// Unknown dims and variable-width types are not checked.
	_, err = New(DTFloat32, Shape{-1, 2}, make([]byte, 3))
	require.NoError(t, err)
	_, err = New(DTString, Shape{2}, []byte("abc"))
	require.NoError(t, err)
}

func TestDataType(t *testing.T) {
	assert.Equal(t, "float32", DTFloat32.String())
	assert.Equal(t, 4, DTFloat32.Size())
	assert.Equal(t, 2, DTFloat16.Size())
	assert.Equal(t, 0, DTString.Size())
	assert.Equal(t, "dtype(99)", DataType(99).String())
}

func TestTensorChecksum(t *testing.T) {
	a := Tensor{DType: DTUint8, Shape: Shape{3}, Data: []byte{1, 2, 3}}
	b := Tensor{DType: DTUint8, Shape: Shape{3}, Data: []byte{1, 2, 4}}
	assert.Len(t, a.Checksum(), 64)
	assert.Equal(t, a.Checksum(), a.Checksum())
	assert.NotEqual(t, a.Checksum(), b.Checksum())
	assert.True(t, a.Equal(Tensor{DType: DTUint8, Shape: Shape{3}, Data: []byte{1, 2, 3}}))
	assert.False(t, a.Equal(b))
	assert.True(t, Tensor{}.IsZero())
}

func TestChannelFirstShapeToIR(t *testing.T) {
	assert.Equal(t, Shape{1, 224, 224, 3}, ChannelFirstShapeToIR(Shape{1, 3, 224, 224}))
	assert.Equal(t, Shape{8, 16}, ChannelFirstShapeToIR(Shape{8, 16}))
	assert.Equal(t, Shape{5}, ChannelFirstShapeToIR(Shape{5}))
}

func TestChannelFirstAxisToIR(t *testing.T) {
	assert.Equal(t, 0, ChannelFirstAxisToIR(0))
	assert.Equal(t, -1, ChannelFirstAxisToIR(1))
	assert.Equal(t, 1, ChannelFirstAxisToIR(2))
	assert.Equal(t, 2, ChannelFirstAxisToIR(3))
}

func TestTranspose(t *testing.T) {
	in := Tensor{DType: DTUint8, Shape: Shape{2, 3}, Data: []byte{0, 1, 2, 3, 4, 5}}
	out, err := Transpose(in, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, out.Shape)
	assert.Equal(t, []byte{0, 3, 1, 4, 2, 5}, out.Data)

	_, err = Transpose(in, []int{0, 0})
	assert.Error(t, err)
	_, err = Transpose(in, []int{0})
	assert.Error(t, err)
}

func TestChannelFirstKernelToIR(t *testing.T) {
	// O=2, I=1, H=1, W=2 with int16 elements to exercise element size.
	in := Tensor{
		DType: DTInt16,
		Shape: Shape{2, 1, 1, 2},
		Data:  []byte{0, 0, 1, 0, 2, 0, 3, 0},
	}
	out, err := ChannelFirstKernelToIR(in)
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 2, 1, 2}, out.Shape)
	assert.Equal(t, []byte{0, 0, 2, 0, 1, 0, 3, 0}, out.Data)

	_, err = ChannelFirstKernelToIR(Tensor{DType: DTFloat32, Shape: Shape{4}, Data: make([]byte, 16)})
	assert.Error(t, err)
}
