package topology

import (
	"github.com/matzehuels/fealgraph/pkg/dag"
)

// Grid spacing of the layout, in render units.
const (
	colSpacing = 120.0
	rowSpacing = 60.0
)

// Layout columns. The left half of the Feistel state runs down colLeft, the
// right half down colRight, and the key material sits to the right.
const (
	colLeft    = -1.0
	colMid     = 0.0
	colRight   = 1.0
	colKeyCopy = 2.0
	colKeys    = 3.0
)

// Rows occupied by the whitening prologue and by each round.
const (
	prologueRows = 6
	roundRows    = 6
)

// palette assigns each kind its display color.
var palette = map[dag.Kind]dag.RGB{
	dag.KindInput:  {R: 0x87, G: 0xce, B: 0xfa},
	dag.KindXOR:    {R: 0xff, G: 0xa0, B: 0x7a},
	dag.KindLeft:   {R: 0x98, G: 0xfb, B: 0x98},
	dag.KindRight:  {R: 0x98, G: 0xfb, B: 0x98},
	dag.KindConcat: {R: 0xdd, G: 0xa0, B: 0xdd},
	dag.KindSwap:   {R: 0xff, G: 0xd7, B: 0x00},
	dag.KindCopy:   {R: 0x80, G: 0x80, B: 0x80},
	dag.KindF:      {R: 0xf0, G: 0x80, B: 0x80},
}

// sizes assigns each kind its render size. Copies are drawn as small joints.
var sizes = map[dag.Kind]float64{
	dag.KindInput:  400,
	dag.KindXOR:    300,
	dag.KindLeft:   300,
	dag.KindRight:  300,
	dag.KindConcat: 300,
	dag.KindSwap:   300,
	dag.KindCopy:   10,
	dag.KindF:      500,
}

// display returns the presentational metadata of a node of kind k placed at
// grid cell (col, row). Rows grow downward, so y is negative.
func display(k dag.Kind, col, row float64) dag.Display {
	return dag.Display{
		Color: palette[k],
		X:     col * colSpacing,
		Y:     -row * rowSpacing,
		Size:  sizes[k],
	}
}

func roundRow(idx int) float64 {
	return float64(prologueRows + idx*roundRows)
}
