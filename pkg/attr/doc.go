// Package attr implements the tagged-union attribute values attached to IR
// nodes.
//
// Every [Value] carries exactly one populated variant, selected by its
// [Kind]: a scalar (int, float, bool, string/bytes, dtype), a shape, a
// tensor, or a homogeneous list of one of those. The zero Value is
// unpopulated and reads as absent.
//
// # Reading attributes
//
// [Get] and its typed helpers ([GetInt], [GetInts], [GetString], ...)
// return the stored payload, or the supplied default when the key is
// missing. Falsy payloads collapse to the default as well: an attribute set
// to 0, false, "" or an empty list is indistinguishable from an absent one.
// Downstream emitters rely on this, so treat it as part of the contract:
//
//	pads := attr.GetInts(n.Attrs, "pads", nil) // nil whether unset or []
//
// # Writing attributes
//
// [Set] encodes plain Go values by their dynamic type:
//
//	err := attr.Set(n.Attrs, map[string]any{
//	    "kernel_shape": []int64{3, 3},
//	    "use_bias":     true,
//	    "_output_shapes": []tensor.Shape{{-1, 224, 224, 64}},
//	})
package attr
