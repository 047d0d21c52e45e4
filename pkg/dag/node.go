package dag

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when an id does not name a node of the arena.
	ErrUnknownNode = errors.New("unknown node")

	// ErrWidthMismatch is returned by [Arena.XOR] and [Arena.F] when operand
	// widths do not satisfy the variant's width rule.
	ErrWidthMismatch = errors.New("operand width mismatch")

	// ErrOddWidth is returned by [Arena.Left] and [Arena.Right] when the
	// operand cannot be split into two equal halves.
	ErrOddWidth = errors.New("operand width is not even")

	// ErrWidthRange is returned when a node would be narrower than one bit or
	// wider than [MaxWidth] bits.
	ErrWidthRange = errors.New("width out of range")

	// ErrEmptyName is returned when an input or a named copy has no name.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrNotInput is returned by [Arena.Bind] and [Arena.Unbind] for
	// non-input nodes. Only inputs carry externally bound values.
	ErrNotInput = errors.New("node is not an input")

	// ErrValueRange is returned by [Arena.Bind] when the value does not fit
	// the input's width.
	ErrValueRange = errors.New("value does not fit width")

	// ErrUnbound is returned by [Evaluate] when an input is reached before a
	// value was bound to it.
	ErrUnbound = errors.New("input not bound")

	// ErrDuplicateLabel is returned by [Graph.Validate] when one destination
	// receives two edges with the same non-empty label, meaning an operand
	// slot was filled twice.
	ErrDuplicateLabel = errors.New("duplicate incoming edge label")

	// ErrNotDense is returned by [Graph.Dense] when node ids do not form the
	// sequence 0..n-1.
	ErrNotDense = errors.New("node ids are not dense")
)

// MaxWidth is the widest value a node can carry.
const MaxWidth = 64

// NodeID identifies a node within its [Arena]. Ids are dense and assigned in
// insertion order, so an operand always has a smaller id than its consumer.
type NodeID int

// Kind is the closed set of node variants.
type Kind uint8

const (
	// KindInput is a leaf whose value is bound externally.
	KindInput Kind = iota
	// KindXOR is the bitwise XOR of two equal-width operands.
	KindXOR
	// KindLeft is the high half of an even-width operand.
	KindLeft
	// KindRight is the low half of an even-width operand.
	KindRight
	// KindConcat joins two operands as (left << wr) | right.
	KindConcat
	// KindSwap joins two operands as (right << wl) | left, i.e. a register swap.
	KindSwap
	// KindCopy passes its operand through. It gives a shared subexpression its
	// own identity and layout slot in exported graphs.
	KindCopy
	// KindF is the FEAL round function over a 16-bit subkey and a 32-bit value.
	KindF
)

var kindNames = [...]string{
	KindInput:  "input",
	KindXOR:    "xor",
	KindLeft:   "left",
	KindRight:  "right",
	KindConcat: "concatenate",
	KindSwap:   "swap",
	KindCopy:   "copy",
	KindF:      "F",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Operand slot labels carried by incoming edges.
const (
	LabelA      = "a"
	LabelB      = "b"
	LabelLeft   = "left"
	LabelRight  = "right"
	LabelSubkey = "subkey"
	LabelValue  = "value"
)

// CopyLabel is the raw label of anonymous copy nodes.
const CopyLabel = "."

// slotLabels lists, per kind, the edge label of each operand position.
// Single-operand kinds use the empty label.
var slotLabels = [...][]string{
	KindInput:  nil,
	KindXOR:    {LabelA, LabelB},
	KindLeft:   {""},
	KindRight:  {""},
	KindConcat: {LabelLeft, LabelRight},
	KindSwap:   {LabelLeft, LabelRight},
	KindCopy:   {""},
	KindF:      {LabelSubkey, LabelValue},
}

// RGB is a display color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Display holds presentational metadata. It never affects evaluation.
type Display struct {
	Color RGB
	X, Y  float64 // layout position, y grows upward
	Size  float64
}

// Node is one vertex of the computation graph.
//
// Nodes are created by the constructors of [Arena] and addressed by id; a
// node may be the operand of any number of consumers.
type Node struct {
	ID       NodeID
	Kind     Kind
	Label    string // input name, variant name, CopyLabel, or a copy's tag
	Width    int    // output width in bits
	Display  Display
	Operands []NodeID // ordered, parallel to Slots()

	value uint64
	bound bool
}

// Slots returns the edge label of each operand position.
func (n *Node) Slots() []string {
	return slotLabels[n.Kind]
}

// Value returns the bound value of an input node and whether one is bound.
func (n *Node) Value() (uint64, bool) {
	return n.value, n.bound
}

// IsAnonymousCopy reports whether n is a copy without a tag.
func (n *Node) IsAnonymousCopy() bool {
	return n.Kind == KindCopy && n.Label == CopyLabel
}

func mask(width int) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return 1<<width - 1
}
