// Package io writes and reads the artifacts of an extracted computation
// graph.
//
// # GraphML
//
// [WriteGraphML] encodes a [dag.Graph] with numeric key ids (d0, d1, ...),
// the form graph libraries emit. [TranslateKeys] rewrites such a document so
// that key ids are the attribute names themselves ("label", "bitsize", ...),
// which keeps consumers that look attributes up by name simple:
//
//	<key id="d7" for="node" attr.name="bitsize" attr.type="int"/>
//	<data key="d7">32</data>
//
// becomes
//
//	<key id="bitsize" for="node" attr.name="bitsize" attr.type="int"/>
//	<data key="bitsize">32</data>
//
// Nodes and edges both carry a "label" attribute, so the translated
// document declares two keys with id "label", one per domain. Strict
// GraphML validators reject that; readers that resolve keys by id and
// "for" accept it.
//
// # JSON
//
// [WriteJSON] writes one record per node:
//
//	{"id": 19, "color": "#f08080", "label": "F", "size": 500, "x": 0,
//	 "y": 420, "bitsize": 32, "radius": 20, "subkey": 18, "value": 17}
//
// In [ModeObject] a record may also carry "eval", the evaluated node value.
//
// Labels are normalized (see [schema.Normalize]), y is negated and every
// incoming edge adds a field naming the operand slot ("src" for
// single-operand nodes) whose value is the source id. In [ModeArray] the
// records form an array indexed by id; [ModeObject] wraps them in
// {"nodes": {...}, "edges": [...]} and may carry node values in an
// "eval" field.
//
// [ReadNodes] rebuilds an arena from an array artifact.
//
// # Staging
//
// A [Stage] writes every artifact of one export to a temporary file in the
// output directory and renames them into place on [Stage.Commit].
package io
