// Package tensor defines the shape and tensor payload types shared by the IR
// attribute system and the weight archive.
//
// A [Shape] is an ordered list of signed dimension sizes where [UnknownDim]
// (-1) marks a dynamic or unknown dimension. A [Tensor] couples a [DataType]
// tag and a [Shape] with the raw little-endian element bytes; the package
// never interprets the payload beyond element sizes.
//
// # Layout helpers
//
// Framework parsers reading channel-first models (NCHW activations and OIHW
// kernels) convert to the channel-last IR layout with
// [ChannelFirstShapeToIR], [ChannelFirstAxisToIR] and [ChannelFirstKernelToIR].
package tensor
