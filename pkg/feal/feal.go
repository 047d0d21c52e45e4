package feal

// Rounds is the number of Feistel rounds of FEAL-8.
const Rounds = 8

// Subkeys is a FEAL-8 key schedule: entries 0-7 are the round subkeys,
// 8-11 the input whitening key and 12-15 the output whitening key.
type Subkeys [2 * Rounds]uint16

// g is the byte combiner S_d of the FEAL papers:
// rotate left by two bits of (a + b + x) mod 256.
func g(x, a, b byte) byte {
	t := a + b + x
	return t<<2 | t>>6
}

// F is the round function. It mixes a 16-bit subkey into a 32-bit half block.
func F(subkey uint16, value uint32) uint32 {
	b0, b1 := byte(subkey>>8), byte(subkey)
	a0, a1, a2, a3 := byte(value>>24), byte(value>>16), byte(value>>8), byte(value)

	v1 := a0 ^ (b0 ^ a1)
	v2 := (b1 ^ a2) ^ a3
	v3 := g(1, v1, v2)
	v4 := g(0, v2, v3)
	v5 := g(0, a0, v3)
	v6 := g(1, a3, v4)

	return pack(v5, v3, v4, v6)
}

// fK is the key-processing function used only by the key schedule.
func fK(a, b uint32) uint32 {
	a0, a1, a2, a3 := byte(a>>24), byte(a>>16), byte(a>>8), byte(a)
	b0, b1, b2, b3 := byte(b>>24), byte(b>>16), byte(b>>8), byte(b)

	v1 := a0 ^ a1
	v2 := a2 ^ a3
	v4 := g(1, v1, v2^b0)
	v6 := g(0, v2, v4^b1)

	return pack(g(0, a0, v4^b2), v4, v6, g(1, a3, v6^b3))
}

func pack(b0, b1, b2, b3 byte) uint32 {
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

// KeySchedule expands a 64-bit master key into the 16 FEAL-8 subkeys.
func KeySchedule(key uint64) Subkeys {
	var k Subkeys
	a, b, d := uint32(key>>32), uint32(key), uint32(0)
	for i := range Rounds {
		u := fK(a, b^d)
		k[2*i] = uint16(u >> 16)
		k[2*i+1] = uint16(u)
		a, b, d = b, u, a
	}
	return k
}

// PreWhitening returns the 64-bit key XORed into the block before round 0.
func (k Subkeys) PreWhitening() uint64 { return join16(k[8], k[9], k[10], k[11]) }

// PostWhitening returns the 64-bit key XORed into the block after the last round.
func (k Subkeys) PostWhitening() uint64 { return join16(k[12], k[13], k[14], k[15]) }

func join16(a, b, c, d uint16) uint64 {
	return uint64(a)<<48 | uint64(b)<<32 | uint64(c)<<16 | uint64(d)
}

// EncryptBlock runs the FEAL-8 network over one block with an expanded key.
func EncryptBlock(k Subkeys, block uint64) uint64 {
	v := block ^ k.PreWhitening()
	left, right := uint32(v>>32), uint32(v)
	right ^= left

	for i := range Rounds {
		left, right = right, left^F(k[i], right)
	}
	left ^= right

	return (uint64(right)<<32 | uint64(left)) ^ k.PostWhitening()
}

// decryptOrder maps each decryption subkey slot to its encryption slot.
var decryptOrder = Subkeys{7, 6, 5, 4, 3, 2, 1, 0, 12, 13, 14, 15, 8, 9, 10, 11}

// Reverse returns the schedule that decrypts blocks encrypted with k.
func (k Subkeys) Reverse() Subkeys {
	var r Subkeys
	for dst, src := range decryptOrder {
		r[dst] = k[src]
	}
	return r
}

// Encrypt encrypts one block under a 64-bit master key.
func Encrypt(key, plaintext uint64) uint64 {
	return EncryptBlock(KeySchedule(key), plaintext)
}

// Decrypt decrypts one block under a 64-bit master key.
func Decrypt(key, ciphertext uint64) uint64 {
	return EncryptBlock(KeySchedule(key).Reverse(), ciphertext)
}
