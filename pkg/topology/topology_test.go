package topology

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/feal"
)

func mustBuild(t *testing.T) *Network {
	t.Helper()
	n, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return n
}

func TestBuildInputs(t *testing.T) {
	n := mustBuild(t)

	want := []struct {
		name  string
		width int
	}{
		{PlaintextName, 64},
		{"key0", 16}, {"key1", 16}, {"key2", 16}, {"key3", 16},
		{"key4", 16}, {"key5", 16}, {"key6", 16}, {"key7", 16},
		{PreWhiteningName, 64},
		{PostWhiteningName, 64},
	}

	inputs := n.Arena.Inputs()
	if len(inputs) != len(want) {
		t.Fatalf("inputs = %d, want %d", len(inputs), len(want))
	}
	for i, w := range want {
		in := inputs[i]
		if in.ID != dag.NodeID(i) || in.Label != w.name || in.Width != w.width {
			t.Errorf("input %d = (%d, %q, %d), want (%d, %q, %d)", i, in.ID, in.Label, in.Width, i, w.name, w.width)
		}
	}
}

func TestBuildRoot(t *testing.T) {
	n := mustBuild(t)

	root, ok := n.Arena.Node(n.Ciphertext)
	if !ok {
		t.Fatal("root not in arena")
	}
	if root.Kind != dag.KindCopy || root.Label != CiphertextName || root.Width != 64 {
		t.Errorf("root = (%s, %q, %d), want (copy, %q, 64)", root.Kind, root.Label, root.Width, CiphertextName)
	}
	if int(n.Ciphertext) != n.Arena.Len()-1 {
		t.Errorf("root id = %d, want last id %d", n.Ciphertext, n.Arena.Len()-1)
	}
}

func TestEncryptZero(t *testing.T) {
	n := mustBuild(t)
	if err := n.Bind(Block{}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	got, err := n.Encrypt()
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if got != 0xf47bfee55dd8ecce {
		t.Errorf("Encrypt = %#016x, want 0xf47bfee55dd8ecce", got)
	}
}

func TestEncryptKnownAnswer(t *testing.T) {
	tests := []struct {
		key, plaintext, want uint64
	}{
		{0x0123456789abcdef, 0, 0xceef2c86f2490752},
		{0x1122334455667788, 0xdeadbeefcafebabe, 0x812f1e51fe50dd3a},
	}

	n := mustBuild(t)
	for _, tt := range tests {
		if err := n.BindSchedule(tt.plaintext, feal.KeySchedule(tt.key)); err != nil {
			t.Fatalf("BindSchedule: %v", err)
		}
		got, err := n.Encrypt()
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if got != tt.want {
			t.Errorf("key %#016x pt %#016x: got %#016x, want %#016x", tt.key, tt.plaintext, got, tt.want)
		}
	}
}

func TestRebindChangesOutput(t *testing.T) {
	n := mustBuild(t)
	if err := n.Bind(Block{}); err != nil {
		t.Fatal(err)
	}
	zero, err := n.Encrypt()
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Arena.Bind(n.Subkeys[0], 1); err != nil {
		t.Fatal(err)
	}
	got, err := n.Encrypt()
	if err != nil {
		t.Fatal(err)
	}
	if got == zero {
		t.Error("output unchanged after rebinding key0")
	}
	if got != 0xd40f45c3aefe1db4 {
		t.Errorf("Encrypt = %#016x, want 0xd40f45c3aefe1db4", got)
	}
}

func TestEncryptUnbound(t *testing.T) {
	n := mustBuild(t)
	if _, err := n.Encrypt(); err == nil {
		t.Error("Encrypt with unbound inputs succeeded")
	}
}

func TestDecryptWithReversedSchedule(t *testing.T) {
	const key, plaintext = 0x0123456789abcdef, 0x0011223344556677

	n := mustBuild(t)
	if err := n.BindSchedule(plaintext, feal.KeySchedule(key)); err != nil {
		t.Fatal(err)
	}
	ct, err := n.Encrypt()
	if err != nil {
		t.Fatal(err)
	}

	if err := n.BindSchedule(ct, feal.KeySchedule(key).Reverse()); err != nil {
		t.Fatal(err)
	}
	got, err := n.Encrypt()
	if err != nil {
		t.Fatal(err)
	}
	if got != plaintext {
		t.Errorf("decrypt = %#016x, want %#016x", got, plaintext)
	}
}

func TestExtractShape(t *testing.T) {
	n := mustBuild(t)
	g, err := n.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if g.NodeCount() != n.Arena.Len() {
		t.Errorf("nodes = %d, want every created node (%d)", g.NodeCount(), n.Arena.Len())
	}
	if g.NodeCount() != 94 {
		t.Errorf("nodes = %d, want 94", g.NodeCount())
	}
	if g.EdgeCount() != 112 {
		t.Errorf("edges = %d, want 112", g.EdgeCount())
	}
	if err := g.Dense(); err != nil {
		t.Errorf("Dense: %v", err)
	}

	kinds := make(map[dag.Kind]int)
	for _, r := range g.Nodes {
		kinds[r.Kind]++
	}
	want := map[dag.Kind]int{
		dag.KindInput: 11,
		dag.KindXOR:   12,
		dag.KindLeft:  9,
		dag.KindRight: 9,
		dag.KindSwap:  9,
		dag.KindF:     8,
		dag.KindCopy:  36,
	}
	for k, c := range want {
		if kinds[k] != c {
			t.Errorf("%s nodes = %d, want %d", k, kinds[k], c)
		}
	}
}

func TestLayout(t *testing.T) {
	n := mustBuild(t)

	for _, node := range n.Arena.Nodes() {
		if node.Display.Color != palette[node.Kind] {
			t.Errorf("node %d (%s): color %s, want %s", node.ID, node.Kind, node.Display.Color.Hex(), palette[node.Kind].Hex())
		}
		if node.Display.Size != sizes[node.Kind] {
			t.Errorf("node %d (%s): size %v, want %v", node.ID, node.Kind, node.Display.Size, sizes[node.Kind])
		}
	}

	root, _ := n.Arena.Node(n.Ciphertext)
	whitened, _ := n.Arena.Node(11)
	if root.Display.Y >= whitened.Display.Y {
		t.Errorf("root y = %v, want below whitening y = %v", root.Display.Y, whitened.Display.Y)
	}
}

func TestMatchesReference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	n := mustBuild(t)

	properties.Property("network == feal.Encrypt", prop.ForAll(
		func(key, plaintext uint64) bool {
			if err := n.BindSchedule(plaintext, feal.KeySchedule(key)); err != nil {
				return false
			}
			got, err := n.Encrypt()
			return err == nil && got == feal.Encrypt(key, plaintext)
		},
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestBuildIsDeterministic(t *testing.T) {
	a, b := mustBuild(t), mustBuild(t)
	if a.Arena.Len() != b.Arena.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Arena.Len(), b.Arena.Len())
	}
	for i, x := range a.Arena.Nodes() {
		y, _ := b.Arena.Node(dag.NodeID(i))
		if x.Kind != y.Kind || x.Label != y.Label || x.Display != y.Display {
			t.Errorf("node %d differs between builds", i)
		}
	}
}
