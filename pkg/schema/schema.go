package schema

import (
	"cmp"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/fealgraph/pkg/dag"
)

// Field is one operand slot of a node kind: the incoming edge label and the
// width of the node feeding it.
type Field struct {
	Label string
	Width int
}

// Entry describes one node kind: its normalized label and the sorted,
// distinct fields its nodes receive.
type Entry struct {
	Label  string
	Fields []Field
}

// Schema is the set of node kinds of a graph in first-discovery order.
type Schema struct {
	Entries []Entry
}

// Lookup returns the entry with the given normalized label.
func (s *Schema) Lookup(label string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// Normalize returns the kind label of a node. Anonymous copies and XORs
// carry their width ("copy32", "xor64") so that kinds of different widths
// get distinct entries; every other label is returned unchanged.
func Normalize(r dag.Record) string {
	return NormalizeLabel(r.Label, r.Width)
}

// NormalizeLabel is [Normalize] for a raw label and width.
func NormalizeLabel(label string, width int) string {
	switch label {
	case dag.CopyLabel:
		return fmt.Sprintf("copy%d", width)
	case dag.KindXOR.String():
		return fmt.Sprintf("xor%d", width)
	}
	return label
}

// Derive groups the nodes of g by normalized label. Entries appear in the
// order their first node is met when scanning ids in ascending order, and
// each entry's fields are the distinct (label, source width) pairs of the
// incoming edges of all its nodes, sorted.
func Derive(g *dag.Graph) *Schema {
	s := &Schema{}
	index := make(map[string]int)
	for _, r := range g.SortedRecords() {
		label := Normalize(r)
		if _, ok := index[label]; !ok {
			index[label] = len(s.Entries)
			s.Entries = append(s.Entries, Entry{Label: label})
		}
	}

	seen := make(map[string]map[Field]struct{})
	for _, e := range g.Edges {
		label := Normalize(g.Nodes[e.To])
		f := Field{Label: e.Field(), Width: g.Nodes[e.From].Width}
		if seen[label] == nil {
			seen[label] = make(map[Field]struct{})
		}
		if _, dup := seen[label][f]; dup {
			continue
		}
		seen[label][f] = struct{}{}
		entry := &s.Entries[index[label]]
		entry.Fields = append(entry.Fields, f)
	}

	for i := range s.Entries {
		slices.SortFunc(s.Entries[i].Fields, func(x, y Field) int {
			return cmp.Or(cmp.Compare(x.Label, y.Label), cmp.Compare(x.Width, y.Width))
		})
	}
	return s
}

// Capitalize upper-cases the first letter of label and lower-cases the
// rest, giving the variant name of an entry ("xor32" becomes "Xor32").
func Capitalize(label string) string {
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return label
	}
	rest := []rune(label[size:])
	for i, c := range rest {
		rest[i] = unicode.ToLower(c)
	}
	return string(unicode.ToUpper(r)) + string(rest)
}
