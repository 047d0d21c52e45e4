package io

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/fealgraph/pkg/dag"
	errs "github.com/matzehuels/fealgraph/pkg/errors"
)

// ErrOperand is returned by [ReadNodes] when a record's operand fields do
// not describe a node kind, or reference a node that does not precede it.
var ErrOperand = errors.New("invalid operand fields")

// ReadNodes rebuilds an arena from an array-mode JSON artifact.
//
// Records must appear in id order with ids 0..n-1. A record's kind follows
// from its operand fields and label:
//
//   - no fields: input named by the label
//   - src: left, right, copyN (anonymous copy) or a named copy
//   - a, b: xorN
//   - left, right: swap or concatenate
//   - subkey, value: F
//
// Operands must reference smaller ids, so the last record is the root.
// Display metadata is restored; input values are not part of the artifact.
//
// The returned arena is independent of r. ReadNodes does not close r.
func ReadNodes(r io.Reader) (*dag.Arena, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}

	a := dag.NewArena()
	for i, rec := range records {
		if rec.ID != i {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, dag.ErrNotDense, "record %d has id %d", i, rec.ID)
		}
		id, err := addRecord(a, rec)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", rec.ID, rec.Label, err)
		}
		n, _ := a.Node(id)
		if n.Width != rec.Bitsize {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, dag.ErrWidthMismatch,
				"node %d (%s): width %d, record says %d", rec.ID, rec.Label, n.Width, rec.Bitsize)
		}
		display, err := recordDisplay(rec)
		if err != nil {
			return nil, err
		}
		if err := a.SetDisplay(id, display); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ImportNodes reads an array-mode JSON artifact from path.
func ImportNodes(path string) (*dag.Arena, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNodes(f)
}

func addRecord(a *dag.Arena, rec NodeRecord) (dag.NodeID, error) {
	op := func(name string) dag.NodeID { return dag.NodeID(rec.Operands[name]) }
	for name, src := range rec.Operands {
		if src < 0 || src >= rec.ID {
			return 0, errs.Wrap(errs.ErrCodeInvalidFormat, ErrOperand, "field %q references %d", name, src)
		}
	}

	fields := slices.Sorted(maps.Keys(rec.Operands))

	switch strings.Join(fields, ",") {
	case "":
		return a.Input(rec.Label, rec.Bitsize)
	case dag.SourceField:
		switch {
		case rec.Label == dag.KindLeft.String():
			return a.Left(op(dag.SourceField))
		case rec.Label == dag.KindRight.String():
			return a.Right(op(dag.SourceField))
		case hasWidthSuffix(rec.Label, "copy"):
			return a.Copy(op(dag.SourceField))
		default:
			return a.CopyNamed(op(dag.SourceField), rec.Label)
		}
	case dag.LabelA + "," + dag.LabelB:
		if hasWidthSuffix(rec.Label, dag.KindXOR.String()) {
			return a.XOR(op(dag.LabelA), op(dag.LabelB))
		}
	case dag.LabelLeft + "," + dag.LabelRight:
		switch rec.Label {
		case dag.KindSwap.String():
			return a.Swap(op(dag.LabelLeft), op(dag.LabelRight))
		case dag.KindConcat.String():
			return a.Concat(op(dag.LabelLeft), op(dag.LabelRight))
		}
	case dag.LabelSubkey + "," + dag.LabelValue:
		if rec.Label == dag.KindF.String() {
			return a.F(op(dag.LabelSubkey), op(dag.LabelValue))
		}
	}
	return 0, errs.Wrap(errs.ErrCodeInvalidFormat, ErrOperand, "fields %v do not match label %q", fields, rec.Label)
}

// hasWidthSuffix reports whether label is prefix followed by a decimal width.
func hasWidthSuffix(label, prefix string) bool {
	digits, ok := strings.CutPrefix(label, prefix)
	if !ok || digits == "" {
		return false
	}
	_, err := strconv.Atoi(digits)
	return err == nil
}

func recordDisplay(rec NodeRecord) (dag.Display, error) {
	var c dag.RGB
	if _, err := fmt.Sscanf(rec.Color, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return dag.Display{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "node %d: color %q", rec.ID, rec.Color)
	}
	return dag.Display{Color: c, X: rec.X, Y: -rec.Y, Size: rec.Size}, nil
}
