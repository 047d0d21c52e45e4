package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/fealgraph/pkg/dag"
	"github.com/matzehuels/fealgraph/pkg/render/nodelink"
)

func ExampleToDOT() {
	a := dag.NewArena()
	x, _ := a.Input("x", 8)
	y, _ := a.Input("y", 8)
	z, _ := a.XOR(x, y)
	g, _ := dag.Extract(a, z)

	dot := nodelink.ToDOT(g, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// 0 -> 2 [label="a"];
	// 1 -> 2 [label="b"];
}
