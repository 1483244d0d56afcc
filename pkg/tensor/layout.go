package tensor

import "fmt"

// ChannelFirstShapeToIR moves the channel dimension of an N,C,... shape to
// the end: [N, C, H, W] becomes [N, H, W, C]. Shapes of rank < 2 are
// returned unchanged.
func ChannelFirstShapeToIR(s Shape) Shape {
	if len(s) < 2 {
		return append(Shape(nil), s...)
	}
	out := make(Shape, 0, len(s))
	out = append(out, s[0])
	out = append(out, s[2:]...)
	return append(out, s[1])
}

// ChannelFirstAxisToIR maps an axis index of a channel-first tensor to the
// matching axis of its channel-last form. The channel axis becomes -1.
func ChannelFirstAxisToIR(axis int) int {
	switch axis {
	case 0:
		return 0
	case 1:
		return -1
	default:
		return axis - 1
	}
}

// ChannelFirstKernelToIR converts an O,I,spatial... convolution kernel to
// the spatial...,I,O layout used by the IR.
func ChannelFirstKernelToIR(t Tensor) (Tensor, error) {
	rank := t.Shape.Rank()
	if rank < 2 {
		return Tensor{}, fmt.Errorf("kernel must have rank >= 2, got %d", rank)
	}
	perm := make([]int, 0, rank)
	for i := 2; i < rank; i++ {
		perm = append(perm, i)
	}
	perm = append(perm, 1, 0)
	return Transpose(t, perm)
}

// Transpose permutes the dimensions of t so that output dimension i is
// input dimension perm[i].
func Transpose(t Tensor, perm []int) (Tensor, error) {
	rank := t.Shape.Rank()
	if len(perm) != rank {
		return Tensor{}, fmt.Errorf("permutation %v does not match rank %d", perm, rank)
	}
	seen := make([]bool, rank)
	for _, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			return Tensor{}, fmt.Errorf("invalid permutation %v", perm)
		}
		seen[p] = true
	}
	if !t.Shape.Known() {
		return Tensor{}, fmt.Errorf("cannot transpose tensor with unknown dimensions %v", []int64(t.Shape))
	}
	size := t.DType.Size()
	if size == 0 {
		return Tensor{}, fmt.Errorf("cannot transpose %s tensor", t.DType)
	}
	if err := t.Validate(); err != nil {
		return Tensor{}, err
	}

	outShape := make(Shape, rank)
	for i, p := range perm {
		outShape[i] = t.Shape[p]
	}

	inStrides := strides(t.Shape)
	n := t.Shape.NumElements()
	out := make([]byte, len(t.Data))
	idx := make([]int64, rank)
	for o := int64(0); o < n; o++ {
		var src int64
		for i, p := range perm {
			src += idx[i] * inStrides[p]
		}
		copy(out[o*int64(size):(o+1)*int64(size)], t.Data[src*int64(size):(src+1)*int64(size)])

		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < outShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return Tensor{DType: t.DType, Shape: outShape, Data: out}, nil
}

// strides returns row-major element strides for s.
func strides(s Shape) []int64 {
	st := make([]int64, len(s))
	acc := int64(1)
	for i := len(s) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= s[i]
	}
	return st
}
