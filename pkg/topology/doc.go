// Package topology builds the fixed FEAL-8 computation graph.
//
// [Build] creates a fresh [dag.Arena] and assembles the whitening prologue,
// eight Feistel rounds and the finalization as dag nodes. Every round copies
// the shared right half so that each consumer gets its own node:
//
//	value   = copy(right)
//	mixed   = F(copy(key[i]), value)
//	swapped = swap(copy(left ^ mixed), copy(right))
//	left, right = left(swapped), right(swapped)
//
// The root is a copy tagged "ciphertext" of the output-whitened block. Every
// node the builder creates is reachable from it, so an extracted graph has
// dense ids 0..n-1.
//
// Nodes also receive a deterministic layout: a color and size per kind and a
// grid position, with the left half of the state in one column, the right
// half in another and the key material to the side.
//
// A [Network] is bound with [Network.Bind] or [Network.BindSchedule] and
// evaluated with [Network.Encrypt]. Running it with the reversed key
// schedule of [feal.Subkeys.Reverse] decrypts.
package topology
