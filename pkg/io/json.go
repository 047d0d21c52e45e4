package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/fealgraph/pkg/dag"
	errs "github.com/matzehuels/fealgraph/pkg/errors"
	"github.com/matzehuels/fealgraph/pkg/schema"
)

// Mode selects the layout of the JSON artifact.
type Mode string

const (
	// ModeArray writes the node records as an array indexed by id.
	ModeArray Mode = "array"
	// ModeObject writes {"nodes": {id: record}, "edges": [...]}.
	ModeObject Mode = "object"
)

// Render radii of JSON node records.
const (
	copyRadius = 1
	nodeRadius = 20
)

// NodeRecord is one node of the JSON artifact. Besides the fixed fields it
// carries one field per incoming edge, named after the edge's field and
// holding the source node id.
type NodeRecord struct {
	ID      int     `json:"id"`
	Color   string  `json:"color"`
	Label   string  `json:"label"`
	Size    float64 `json:"size"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Bitsize int     `json:"bitsize"`
	Radius  int     `json:"radius"`
	// Eval is the evaluated value in object mode. The key is not an
	// operand slot name, so it never collides with an operand field.
	Eval string `json:"eval,omitempty"`

	Operands map[string]int `json:"-"`
}

var recordFields = map[string]bool{
	"id": true, "color": true, "label": true, "size": true, "x": true,
	"y": true, "bitsize": true, "radius": true, "eval": true,
}

// MarshalJSON writes the fixed fields followed by the operand fields in
// name order.
func (r NodeRecord) MarshalJSON() ([]byte, error) {
	type fixed NodeRecord
	b, err := json.Marshal(fixed(r))
	if err != nil || len(r.Operands) == 0 {
		return b, err
	}
	var buf bytes.Buffer
	buf.Write(b[:len(b)-1])
	for _, name := range slices.Sorted(maps.Keys(r.Operands)) {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, ",%s:%d", key, r.Operands[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the fixed fields and collects every other field as an
// operand id.
func (r *NodeRecord) UnmarshalJSON(data []byte) error {
	type fixed NodeRecord
	var f fixed
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	*r = NodeRecord(f)
	for name, raw := range all {
		if recordFields[name] {
			continue
		}
		var id int
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if r.Operands == nil {
			r.Operands = make(map[string]int)
		}
		r.Operands[name] = id
	}
	return nil
}

type edgeRecord struct {
	Src   int    `json:"src"`
	Dst   int    `json:"dst"`
	Label string `json:"label"`
}

type objectDocument struct {
	Nodes map[string]NodeRecord `json:"nodes"`
	Edges []edgeRecord          `json:"edges"`
}

// JSONOptions configures [WriteJSON].
type JSONOptions struct {
	Mode Mode
	// Values, if set, adds each node's value to its record in object mode.
	Values map[dag.NodeID]uint64
}

// Records returns the JSON node records of g in ascending id order.
func Records(g *dag.Graph) []NodeRecord {
	records := make([]NodeRecord, 0, g.NodeCount())
	for _, r := range g.SortedRecords() {
		rec := NodeRecord{
			ID:      int(r.ID),
			Color:   r.Display.Color.Hex(),
			Label:   schema.Normalize(r),
			Size:    r.Display.Size,
			X:       r.Display.X,
			Y:       -r.Display.Y,
			Bitsize: r.Width,
			Radius:  nodeRadius,
		}
		if r.IsAnonymousCopy() {
			rec.Radius = copyRadius
		}
		for _, e := range g.Incoming(r.ID) {
			if rec.Operands == nil {
				rec.Operands = make(map[string]int)
			}
			rec.Operands[e.Field()] = int(e.From)
		}
		records = append(records, rec)
	}
	return records
}

func formatValue(v uint64, width int) string {
	return fmt.Sprintf("0x%0*x", (width+3)/4, v)
}

// WriteJSON encodes g in the given mode. Array mode requires dense ids,
// since a record's position in the array is its id.
func WriteJSON(g *dag.Graph, w io.Writer, opts JSONOptions) error {
	records := Records(g)

	var doc any
	switch opts.Mode {
	case ModeArray, "":
		if err := g.Dense(); err != nil {
			return err
		}
		doc = records
	case ModeObject:
		obj := objectDocument{Nodes: make(map[string]NodeRecord, len(records))}
		for _, rec := range records {
			if v, ok := opts.Values[dag.NodeID(rec.ID)]; ok {
				rec.Eval = formatValue(v, rec.Bitsize)
			}
			obj.Nodes[strconv.Itoa(rec.ID)] = rec
		}
		for _, e := range g.Edges {
			obj.Edges = append(obj.Edges, edgeRecord{Src: int(e.From), Dst: int(e.To), Label: e.Field()})
		}
		doc = obj
	default:
		return errs.New(errs.ErrCodeInvalidInput, "json mode %q: want %q or %q", opts.Mode, ModeArray, ModeObject)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadRecords decodes an array-mode JSON artifact.
func ReadRecords(r io.Reader) ([]NodeRecord, error) {
	var records []NodeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode node records")
	}
	return records, nil
}

// CheckDense re-reads an array-mode JSON artifact and verifies that the
// record at position i has id i.
func CheckDense(r io.Reader) error {
	records, err := ReadRecords(r)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if rec.ID != i {
			return errs.Wrap(errs.ErrCodeStructural, dag.ErrNotDense, "record %d has id %d", i, rec.ID)
		}
	}
	return nil
}
