// Package ir loads, builds and saves IR model graphs.
//
// An IR document is an ordered list of node records (name, operator type,
// qualified inputs and typed attributes) plus a format version. Documents
// are stored in one of two encodings that share a single schema:
//
//   - binary: protobuf wire format, written with the ".pb" suffix
//   - text: the canonical JSON mapping of the same schema, ".json"
//
// [ReadDocument] and [Load] accept either encoding, trying binary first.
//
// # Graph construction
//
// [FromDocument] turns a document into a [Graph]: one node per record, one
// edge per declared input, orphans removed, and Constant nodes excluded from
// the inputs. After graph surgery, [Graph.Rebuild] recomputes the derived
// sequences without promoting scoped members to inputs, and
// [Graph.FlattenScopes] hides those members so emitters only see the
// composite Scope nodes.
//
// # Emitting
//
// [Builder] collects node records and weights and writes the full artifact
// set (text document, binary document, weight archive and listing) with a
// single [Builder.Save].
package ir
