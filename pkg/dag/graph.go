package dag

import (
	"cmp"
	"errors"
	"maps"
	"slices"

	errs "github.com/matzehuels/fealgraph/pkg/errors"
)

// ErrGraphHasCycle is returned by [Graph.Validate] when the edge list
// contains a directed cycle. Graphs extracted from an [Arena] are acyclic
// by construction; hand-built or imported graphs may not be.
var ErrGraphHasCycle = errors.New("graph contains a cycle")

// SourceField is the field name exporters use for an edge without a label.
const SourceField = "src"

// Edge is a directed connection from an operand to its consumer.
// Label names the operand slot; it is empty for single-operand consumers.
type Edge struct {
	From  NodeID
	To    NodeID
	Label string
}

// Field returns the edge label, or [SourceField] if the label is empty.
func (e Edge) Field() string {
	if e.Label == "" {
		return SourceField
	}
	return e.Label
}

func compareEdges(x, y Edge) int {
	return cmp.Or(
		cmp.Compare(x.From, y.From),
		cmp.Compare(x.To, y.To),
		cmp.Compare(x.Label, y.Label),
	)
}

// Record is the exported view of one node.
type Record struct {
	ID      NodeID
	Kind    Kind
	Label   string
	Width   int
	Display Display
}

// IsAnonymousCopy reports whether r is a copy without a tag.
func (r Record) IsAnonymousCopy() bool {
	return r.Kind == KindCopy && r.Label == CopyLabel
}

// Graph is a node table plus a deduplicated edge list sorted by
// (From, To, Label). It is derived fresh by [Extract] for every export and
// is not modified afterwards.
type Graph struct {
	Root  NodeID
	Nodes map[NodeID]Record
	Edges []Edge
}

// Extract walks every node reachable from root and returns the graph.
// The result is validated with [Graph.Validate] before it is returned.
func Extract(a *Arena, root NodeID) (*Graph, error) {
	if _, ok := a.Node(root); !ok {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownNode, "extract root %d", root)
	}

	g := &Graph{Root: root, Nodes: make(map[NodeID]Record)}
	seen := make(map[Edge]struct{})

	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := g.Nodes[id]; done {
			continue
		}
		n := a.nodes[id]
		g.Nodes[id] = Record{ID: n.ID, Kind: n.Kind, Label: n.Label, Width: n.Width, Display: n.Display}

		slots := n.Slots()
		for i, op := range n.Operands {
			e := Edge{From: op, To: id, Label: slots[i]}
			if _, dup := seen[e]; !dup {
				seen[e] = struct{}{}
				g.Edges = append(g.Edges, e)
			}
			stack = append(stack, op)
		}
	}
	slices.SortFunc(g.Edges, compareEdges)

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// SortedRecords returns the node records in ascending id order.
func (g *Graph) SortedRecords() []Record {
	ids := slices.Sorted(maps.Keys(g.Nodes))
	records := make([]Record, len(ids))
	for i, id := range ids {
		records[i] = g.Nodes[id]
	}
	return records
}

// Incoming returns the edges ending at id, in edge-list order.
func (g *Graph) Incoming(id NodeID) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}

// Validate checks the structural invariants exporters rely on:
//
//  1. Every edge connects nodes of the table.
//  2. No destination receives two edges with the same non-empty label.
//  3. The graph is acyclic.
//
// Violations are construction bugs and fail with [errs.ErrCodeStructural].
func (g *Graph) Validate() error {
	labels := make(map[NodeID]map[string]int)
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.From]; !ok {
			return errs.Wrap(errs.ErrCodeStructural, ErrUnknownNode, "edge %d->%d: source", e.From, e.To)
		}
		if _, ok := g.Nodes[e.To]; !ok {
			return errs.Wrap(errs.ErrCodeStructural, ErrUnknownNode, "edge %d->%d: destination", e.From, e.To)
		}
		if e.Label == "" {
			continue
		}
		if labels[e.To] == nil {
			labels[e.To] = make(map[string]int)
		}
		labels[e.To][e.Label]++
		if labels[e.To][e.Label] > 1 {
			return errs.Wrap(errs.ErrCodeStructural, ErrDuplicateLabel, "node %d: label %q", e.To, e.Label)
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	outgoing := make(map[NodeID][]NodeID, len(g.Nodes))
	for _, e := range g.Edges {
		outgoing[e.From] = append(outgoing[e.From], e.To)
	}

	color := make(map[NodeID]int, len(g.Nodes))
	var hasCycle bool

	var dfs func(id NodeID)
	dfs = func(id NodeID) {
		color[id] = gray
		for _, child := range outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range slices.Sorted(maps.Keys(g.Nodes)) {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return errs.Wrap(errs.ErrCodeStructural, ErrGraphHasCycle, "validate")
			}
		}
	}
	return nil
}

// Dense reports whether node ids are exactly 0..n-1, which exporters that
// address nodes by array position require.
func (g *Graph) Dense() error {
	for i := range len(g.Nodes) {
		if _, ok := g.Nodes[NodeID(i)]; !ok {
			return errs.Wrap(errs.ErrCodeStructural, ErrNotDense, "missing node %d of %d", i, len(g.Nodes))
		}
	}
	return nil
}
