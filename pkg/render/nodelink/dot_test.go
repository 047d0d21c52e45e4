package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/fealgraph/pkg/dag"
)

func sampleGraph(t *testing.T) *dag.Graph {
	t.Helper()
	a := dag.NewArena()
	x, _ := a.Input("x", 32)
	k, _ := a.Input("k", 16)
	c, _ := a.Copy(x)
	f, _ := a.F(k, c)
	a.SetDisplay(x, dag.Display{Color: dag.RGB{R: 0x87, G: 0xce, B: 0xfa}, X: 144, Y: -72})
	g, err := dag.Extract(a, f)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`0 [pos="2.000,-1.000!", fillcolor="#87cefa", label="x"]`,
		`3 [pos="0.000,0.000!", fillcolor="#000000", label="F"]`,
		`0 -> 2 [label="src"]`,
		`1 -> 3 [label="subkey"]`,
		`2 -> 3 [label="value"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s", want)
		}
	}
}

func TestToDOT_AnonymousCopy(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})
	if !strings.Contains(dot, "shape=point") {
		t.Error("ToDOT() anonymous copy not drawn as point")
	}

	detailed := ToDOT(sampleGraph(t), Options{Detailed: true})
	if strings.Contains(detailed, "shape=point") {
		t.Error("ToDOT() detailed output hides anonymous copy label")
	}
}

func TestFmtLabel(t *testing.T) {
	r := dag.Record{ID: 7, Kind: dag.KindXOR, Label: "xor", Width: 32}

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"simple", Options{}, "xor32"},
		{"detailed", Options{Detailed: true}, "xor32\n#7  32 bits"},
		{"value", Options{Values: map[dag.NodeID]uint64{7: 0xbeef}}, "xor32\n0x0000beef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(r, tt.opts); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.25" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(svg))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.25" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}
