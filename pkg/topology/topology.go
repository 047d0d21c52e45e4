package topology

import (
	"fmt"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/feal"
)

// Input and root names of the network.
const (
	PlaintextName     = "plaintext"
	PreWhiteningName  = "key8_11"
	PostWhiteningName = "key12_15"
	CiphertextName    = "ciphertext"
)

// SubkeyName returns the input name of the round subkey idx.
func SubkeyName(idx int) string { return fmt.Sprintf("key%d", idx) }

// Network is the FEAL-8 computation graph together with the ids of its
// inputs and root.
type Network struct {
	Arena *dag.Arena

	Plaintext     dag.NodeID
	Subkeys       [feal.Rounds]dag.NodeID
	PreWhitening  dag.NodeID
	PostWhitening dag.NodeID

	Ciphertext dag.NodeID
}

// Block is a full set of input values for one evaluation of the network.
type Block struct {
	Plaintext     uint64
	Subkeys       [feal.Rounds]uint16
	PreWhitening  uint64
	PostWhitening uint64
}

// BlockFromSchedule arranges a FEAL key schedule as network inputs.
func BlockFromSchedule(plaintext uint64, k feal.Subkeys) Block {
	b := Block{
		Plaintext:     plaintext,
		PreWhitening:  k.PreWhitening(),
		PostWhitening: k.PostWhitening(),
	}
	copy(b.Subkeys[:], k[:feal.Rounds])
	return b
}

// builder threads the first construction error through a sequence of steps
// so the topology reads as straight-line code.
type builder struct {
	arena *dag.Arena
	err   error
}

func (b *builder) node(col, row float64, build func() (dag.NodeID, error)) dag.NodeID {
	if b.err != nil {
		return -1
	}
	id, err := build()
	if err != nil {
		b.err = err
		return -1
	}
	n, _ := b.arena.Node(id)
	b.err = b.arena.SetDisplay(id, display(n.Kind, col, row))
	return id
}

func (b *builder) input(name string, width int, col, row float64) dag.NodeID {
	return b.node(col, row, func() (dag.NodeID, error) { return b.arena.Input(name, width) })
}

func (b *builder) xor(x, y dag.NodeID, col, row float64) dag.NodeID {
	return b.node(col, row, func() (dag.NodeID, error) { return b.arena.XOR(x, y) })
}

func (b *builder) copy(x dag.NodeID, col, row float64) dag.NodeID {
	return b.node(col, row, func() (dag.NodeID, error) { return b.arena.Copy(x) })
}

func (b *builder) split(x dag.NodeID, row float64) (left, right dag.NodeID) {
	left = b.node(colLeft, row, func() (dag.NodeID, error) { return b.arena.Left(x) })
	right = b.node(colRight, row, func() (dag.NodeID, error) { return b.arena.Right(x) })
	return left, right
}

func (b *builder) swap(left, right dag.NodeID, col, row float64) dag.NodeID {
	return b.node(col, row, func() (dag.NodeID, error) { return b.arena.Swap(left, right) })
}

// Build assembles the 8-round FEAL network in a fresh arena.
//
// The inputs are created first, in the order plaintext, key0..key7,
// key8_11, key12_15, so their ids are 0..10. The root is a copy of the
// output-whitened block tagged [CiphertextName].
func Build() (*Network, error) {
	b := &builder{arena: dag.NewArena()}
	n := &Network{Arena: b.arena}
	finalRow := roundRow(feal.Rounds)

	n.Plaintext = b.input(PlaintextName, 64, colMid, -1)
	for i := range feal.Rounds {
		n.Subkeys[i] = b.input(SubkeyName(i), dag.SubkeyWidth, colKeys, roundRow(i))
	}
	n.PreWhitening = b.input(PreWhiteningName, 64, colRight, -1)
	n.PostWhitening = b.input(PostWhiteningName, 64, colRight, finalRow+2)

	// Input whitening, then fold the left half into the right.
	whitened := b.xor(n.Plaintext, n.PreWhitening, colMid, 0)
	block := b.copy(whitened, colMid, 1)
	left0, right0 := b.split(block, 2)
	left := b.copy(left0, colLeft, 3)
	right := b.xor(left, right0, colRight, 4)

	for i := range feal.Rounds {
		row := roundRow(i)
		value := b.copy(right, colRight, row)
		subkey := b.copy(n.Subkeys[i], colKeyCopy, row)
		mixed := b.node(colMid, row+1, func() (dag.NodeID, error) { return b.arena.F(subkey, value) })
		newLeft := b.xor(left, mixed, colLeft, row+2)
		swapped := b.swap(b.copy(newLeft, colLeft, row+3), b.copy(right, colRight, row+3), colMid, row+4)
		left, right = b.split(swapped, row+5)
	}

	rightFinal := b.copy(right, colRight, finalRow)
	leftFinal := b.xor(left, rightFinal, colLeft, finalRow+1)
	combined := b.swap(leftFinal, rightFinal, colMid, finalRow+2)
	out := b.xor(combined, n.PostWhitening, colMid, finalRow+3)
	n.Ciphertext = b.node(colMid, finalRow+4, func() (dag.NodeID, error) {
		return b.arena.CopyNamed(out, CiphertextName)
	})

	if b.err != nil {
		return nil, fmt.Errorf("build network: %w", b.err)
	}
	return n, nil
}

// Bind binds every input of the network.
func (n *Network) Bind(blk Block) error {
	if err := n.Arena.Bind(n.Plaintext, blk.Plaintext); err != nil {
		return err
	}
	for i, id := range n.Subkeys {
		if err := n.Arena.Bind(id, uint64(blk.Subkeys[i])); err != nil {
			return err
		}
	}
	if err := n.Arena.Bind(n.PreWhitening, blk.PreWhitening); err != nil {
		return err
	}
	return n.Arena.Bind(n.PostWhitening, blk.PostWhitening)
}

// BindSchedule binds a plaintext and a FEAL key schedule.
func (n *Network) BindSchedule(plaintext uint64, k feal.Subkeys) error {
	return n.Bind(BlockFromSchedule(plaintext, k))
}

// Encrypt evaluates the ciphertext for the currently bound inputs.
func (n *Network) Encrypt() (uint64, error) {
	return dag.Evaluate(n.Arena, n.Ciphertext)
}

// Extract returns the exportable graph rooted at the ciphertext.
func (n *Network) Extract() (*dag.Graph, error) {
	return dag.Extract(n.Arena, n.Ciphertext)
}
