// Package keccakp implements the Keccak-p[1600,10] permutation, the reduced-round
// block permutation at the heart of the Xoodyak-style Cyclist duplex used
// throughout veil. It operates on the fixed 200-byte (1600-bit) state as a
// pure function; all higher-level duplex bookkeeping lives in internal/duplex.
package keccakp

// Rounds is the number of rounds applied by Permute. Keccak-p[1600,10] uses
// the last 10 of the 24 standard Keccak-f[1600] round constants.
const Rounds = 10

// roundConstants holds all 24 Keccak-f[1600] round constants; Keccak-p[1600,nr]
// uses the final nr of them (ι is defined identically across every
// reduced-round member of the Keccak-p family).
var roundConstants = [24]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088, 0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

var rotationOffsets = [5][5]uint{
	{0, 1, 62, 28, 27},
	{36, 44, 6, 55, 20},
	{3, 10, 43, 25, 39},
	{41, 45, 15, 21, 8},
	{18, 2, 61, 56, 14},
}

// Permute applies Keccak-p[1600,10] in place to a 200-byte state.
func Permute(state *[200]byte) {
	var a [5][5]uint64
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			a[x][y] = littleEndianUint64(state[8*(5*y+x):])
		}
	}

	first := len(roundConstants) - Rounds
	for round := first; round < len(roundConstants); round++ {
		a = keccakRound(a, roundConstants[round])
	}

	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			putLittleEndianUint64(state[8*(5*y+x):], a[x][y])
		}
	}
}

func keccakRound(a [5][5]uint64, rc uint64) [5][5]uint64 {
	// θ (theta)
	var c [5]uint64
	for x := 0; x < 5; x++ {
		c[x] = a[x][0] ^ a[x][1] ^ a[x][2] ^ a[x][3] ^ a[x][4]
	}
	var d [5]uint64
	for x := 0; x < 5; x++ {
		d[x] = c[(x+4)%5] ^ rotl(c[(x+1)%5], 1)
	}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			a[x][y] ^= d[x]
		}
	}

	// ρ (rho) and π (pi)
	var b [5][5]uint64
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			b[y][(2*x+3*y)%5] = rotl(a[x][y], rotationOffsets[y][x])
		}
	}

	// χ (chi)
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			a[x][y] = b[x][y] ^ ((^b[(x+1)%5][y]) & b[(x+2)%5][y])
		}
	}

	// ι (iota)
	a[0][0] ^= rc

	return a
}

func rotl(x uint64, n uint) uint64 {
	return (x << n) | (x >> (64 - n))
}

func littleEndianUint64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func putLittleEndianUint64(b []byte, v uint64) {
	_ = b[7]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}
