// Package dag provides the expression DAG that models the data flow of the
// FEAL-8 cipher: typed nodes, their evaluation, and extraction of an
// exportable node table and edge list.
//
// # Overview
//
// An [Arena] owns every node of one construction. Constructors such as
// [Arena.XOR] and [Arena.F] check the variant's width rule, append the node,
// and return its [NodeID]. Operands are referenced by id, so a node can feed
// any number of consumers (shared subexpressions) without being owned by
// any of them. Because an operand must exist before its consumer, ids are
// topologically ordered and the graph is acyclic by construction.
//
//	a := dag.NewArena()
//	x, _ := a.Input("x", 16)
//	hi, _ := a.Left(x)
//	lo, _ := a.Right(x)
//	joined, _ := a.Concat(hi, lo)
//	a.Bind(x, 0xbeef)
//	v, _ := dag.Evaluate(a, joined) // 0xbeef
//
// # Node Kinds
//
//   - [KindInput]: externally bound leaf
//   - [KindXOR]: bitwise XOR of two equal-width operands (slots "a", "b")
//   - [KindLeft], [KindRight]: high and low halves of an even-width operand
//   - [KindConcat]: (left << wr) | right (slots "left", "right")
//   - [KindSwap]: (right << wl) | left (slots "left", "right")
//   - [KindCopy]: identity, giving a shared value its own node
//   - [KindF]: the FEAL round function (slots "subkey", "value")
//
// # Extraction
//
// [Extract] walks the nodes reachable from a root and produces a [Graph]: a
// node table keyed by id and a deduplicated edge list sorted by source,
// destination and label. [Graph.Validate] enforces that no destination
// receives two edges with the same non-empty label.
//
// # Errors
//
// Constructor failures carry the CONSTRUCTION_ERROR code, evaluation of an
// unbound input carries EVALUATION_ERROR, and extraction invariant
// violations carry STRUCTURAL_ERROR. The package sentinels ([ErrUnbound],
// [ErrWidthMismatch], ...) remain reachable with errors.Is.
//
// # Concurrency
//
// An Arena is not safe for concurrent use. Independent arenas share no
// state and can be built and evaluated in parallel.
package dag
