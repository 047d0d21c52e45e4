// Package schema derives the node kinds of an extracted graph and renders
// them as a tagged-union source file.
//
// A kind is identified by its normalized label (see [Normalize]) and
// described by the fields its nodes receive: the labels of incoming edges
// paired with the width of the source node. [WriteRust] turns a [Schema]
// into a serde enum that deserializes the JSON node records.
package schema
