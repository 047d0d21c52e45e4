package dag_test

import (
	"fmt"

	"github.com/matzehuels/fealgraph/pkg/dag"
)

func ExampleEvaluate() {
	// Split a 16-bit value into halves and join them again
	a := dag.NewArena()
	x, _ := a.Input("x", 16)
	hi, _ := a.Left(x)
	lo, _ := a.Right(x)
	joined, _ := a.Concat(hi, lo)
	swapped, _ := a.Swap(hi, lo)

	_ = a.Bind(x, 0xbeef)
	v, _ := dag.Evaluate(a, joined)
	s, _ := dag.Evaluate(a, swapped)

	fmt.Printf("joined:  %#04x\n", v)
	fmt.Printf("swapped: %#04x\n", s)
	// Output:
	// joined:  0xbeef
	// swapped: 0xefbe
}

func ExampleExtract() {
	a := dag.NewArena()
	x, _ := a.Input("x", 32)
	y, _ := a.Input("y", 32)
	sum, _ := a.XOR(x, y)
	root, _ := a.CopyNamed(sum, "out")

	g, _ := dag.Extract(a, root)
	fmt.Println("Nodes:", g.NodeCount())
	for _, e := range g.Edges {
		fmt.Printf("%d -> %d %s\n", e.From, e.To, e.Field())
	}
	// Output:
	// Nodes: 4
	// 0 -> 2 a
	// 1 -> 2 b
	// 2 -> 3 src
}
