package dag

import (
	"slices"

	errs "github.com/matzehuels/fealgraph/pkg/errors"
)

// Arena owns every node of one graph construction and hands out ids.
//
// Each arena has its own id counter, so independent constructions can run
// in parallel. An arena is not safe for concurrent use; nodes are never
// removed, the whole arena is dropped at once.
//
// The zero value is an empty, usable arena.
type Arena struct {
	nodes []*Node
}

// NewArena creates an empty arena.
func NewArena() *Arena { return &Arena{} }

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int { return len(a.nodes) }

// Node returns the node with the given id and true, or nil and false.
// The returned pointer refers to the arena's node.
func (a *Arena) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(a.nodes) {
		return nil, false
	}
	return a.nodes[id], true
}

// Nodes returns all nodes in id order.
func (a *Arena) Nodes() []*Node { return slices.Clone(a.nodes) }

// Inputs returns the input nodes in id order.
func (a *Arena) Inputs() []*Node {
	var inputs []*Node
	for _, n := range a.nodes {
		if n.Kind == KindInput {
			inputs = append(inputs, n)
		}
	}
	return inputs
}

// InputByName returns the first input with the given name.
func (a *Arena) InputByName(name string) (*Node, bool) {
	for _, n := range a.nodes {
		if n.Kind == KindInput && n.Label == name {
			return n, true
		}
	}
	return nil, false
}

func (a *Arena) add(n Node) NodeID {
	n.ID = NodeID(len(a.nodes))
	a.nodes = append(a.nodes, &n)
	return n.ID
}

func (a *Arena) operand(op string, id NodeID) (*Node, error) {
	n, ok := a.Node(id)
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeConstruction, ErrUnknownNode, "%s: operand %d", op, id)
	}
	return n, nil
}

func checkWidth(op string, width int) error {
	if width < 1 || width > MaxWidth {
		return errs.Wrap(errs.ErrCodeConstruction, ErrWidthRange, "%s: width %d not in 1..%d", op, width, MaxWidth)
	}
	return nil
}

// Input adds an input node carrying an externally bound value of width bits.
func (a *Arena) Input(name string, width int) (NodeID, error) {
	if name == "" {
		return 0, errs.Wrap(errs.ErrCodeConstruction, ErrEmptyName, "input")
	}
	if err := checkWidth("input "+name, width); err != nil {
		return 0, err
	}
	return a.add(Node{Kind: KindInput, Label: name, Width: width}), nil
}

// XOR adds the bitwise XOR of two operands of equal width.
func (a *Arena) XOR(x, y NodeID) (NodeID, error) {
	nx, err := a.operand("xor", x)
	if err != nil {
		return 0, err
	}
	ny, err := a.operand("xor", y)
	if err != nil {
		return 0, err
	}
	if nx.Width != ny.Width {
		return 0, errs.Wrap(errs.ErrCodeConstruction, ErrWidthMismatch, "xor: widths %d and %d", nx.Width, ny.Width)
	}
	return a.add(Node{Kind: KindXOR, Label: "xor", Width: nx.Width, Operands: []NodeID{x, y}}), nil
}

// Left adds the high half of an even-width operand.
func (a *Arena) Left(x NodeID) (NodeID, error) {
	return a.half(KindLeft, x)
}

// Right adds the low half of an even-width operand.
func (a *Arena) Right(x NodeID) (NodeID, error) {
	return a.half(KindRight, x)
}

func (a *Arena) half(kind Kind, x NodeID) (NodeID, error) {
	op := kind.String()
	n, err := a.operand(op, x)
	if err != nil {
		return 0, err
	}
	if n.Width%2 != 0 {
		return 0, errs.Wrap(errs.ErrCodeConstruction, ErrOddWidth, "%s: width %d", op, n.Width)
	}
	return a.add(Node{Kind: kind, Label: op, Width: n.Width / 2, Operands: []NodeID{x}}), nil
}

// Concat adds (left << width(right)) | right.
func (a *Arena) Concat(left, right NodeID) (NodeID, error) {
	return a.join(KindConcat, left, right)
}

// Swap adds (right << width(left)) | left, the concatenation with the halves
// exchanged.
func (a *Arena) Swap(left, right NodeID) (NodeID, error) {
	return a.join(KindSwap, left, right)
}

func (a *Arena) join(kind Kind, left, right NodeID) (NodeID, error) {
	op := kind.String()
	l, err := a.operand(op, left)
	if err != nil {
		return 0, err
	}
	r, err := a.operand(op, right)
	if err != nil {
		return 0, err
	}
	width := l.Width + r.Width
	if err := checkWidth(op, width); err != nil {
		return 0, err
	}
	return a.add(Node{Kind: kind, Label: op, Width: width, Operands: []NodeID{left, right}}), nil
}

// Copy adds an anonymous pass-through of x.
func (a *Arena) Copy(x NodeID) (NodeID, error) {
	return a.copy(x, CopyLabel)
}

// CopyNamed adds a pass-through of x tagged with name. Tags mark
// distinguished nodes such as the graph root.
func (a *Arena) CopyNamed(x NodeID, name string) (NodeID, error) {
	if name == "" {
		return 0, errs.Wrap(errs.ErrCodeConstruction, ErrEmptyName, "copy")
	}
	return a.copy(x, name)
}

func (a *Arena) copy(x NodeID, label string) (NodeID, error) {
	n, err := a.operand("copy", x)
	if err != nil {
		return 0, err
	}
	return a.add(Node{Kind: KindCopy, Label: label, Width: n.Width, Operands: []NodeID{x}}), nil
}

// Widths of the round function operands.
const (
	SubkeyWidth = 16
	ValueWidth  = 32
)

// F adds the round function of a 16-bit subkey and a 32-bit value.
func (a *Arena) F(subkey, value NodeID) (NodeID, error) {
	k, err := a.operand("F", subkey)
	if err != nil {
		return 0, err
	}
	v, err := a.operand("F", value)
	if err != nil {
		return 0, err
	}
	if k.Width != SubkeyWidth || v.Width != ValueWidth {
		return 0, errs.Wrap(errs.ErrCodeConstruction, ErrWidthMismatch,
			"F: subkey width %d (want %d), value width %d (want %d)", k.Width, SubkeyWidth, v.Width, ValueWidth)
	}
	return a.add(Node{Kind: KindF, Label: "F", Width: ValueWidth, Operands: []NodeID{subkey, value}}), nil
}

func (a *Arena) input(op string, id NodeID) (*Node, error) {
	n, ok := a.Node(id)
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownNode, "%s: node %d", op, id)
	}
	if n.Kind != KindInput {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrNotInput, "%s: node %d (%s)", op, id, n.Kind)
	}
	return n, nil
}

// Bind sets the value of an input node.
func (a *Arena) Bind(id NodeID, value uint64) error {
	n, err := a.input("bind", id)
	if err != nil {
		return err
	}
	if value&^mask(n.Width) != 0 {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrValueRange, "bind %s: %#x exceeds %d bits", n.Label, value, n.Width)
	}
	n.value, n.bound = value, true
	return nil
}

// Unbind clears the value of an input node.
func (a *Arena) Unbind(id NodeID) error {
	n, err := a.input("unbind", id)
	if err != nil {
		return err
	}
	n.value, n.bound = 0, false
	return nil
}

// SetDisplay replaces the presentational metadata of a node.
func (a *Arena) SetDisplay(id NodeID, d Display) error {
	n, ok := a.Node(id)
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownNode, "display: node %d", id)
	}
	n.Display = d
	return nil
}
