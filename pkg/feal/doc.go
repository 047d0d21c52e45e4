// Package feal implements the FEAL-8 block cipher as a plain reference.
//
// The computation graph in [github.com/matzehuels/fealgraph/pkg/topology]
// reproduces the same data flow node by node; this package is the ground
// truth it is checked against, and it supplies the round function [F] that
// the graph's F nodes evaluate.
//
// # Structure
//
// A 64-bit block is XORed with the input whitening key, split into two
// 32-bit halves, and the right half is XORed with the left. Eight Feistel
// rounds follow, each computing
//
//	left, right = right, left ^ F(k[i], right)
//
// after which the left half is XORed with the right, the halves are swapped
// and the output whitening key is applied.
//
// [KeySchedule] derives the 16 subkeys from a 64-bit master key using the
// key-processing function fK. Decryption runs the same network with the
// reversed schedule returned by [Subkeys.Reverse].
package feal
