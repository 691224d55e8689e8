package keccakp

import (
	"bytes"
	"testing"
)

func TestPermuteIsDeterministic(t *testing.T) {
	var a, b [200]byte
	for i := range a {
		a[i] = byte(i)
		b[i] = byte(i)
	}
	Permute(&a)
	Permute(&b)
	if !bytes.Equal(a[:], b[:]) {
		t.Fatal("Permute is not deterministic for identical inputs")
	}
}

func TestPermuteChangesState(t *testing.T) {
	var a [200]byte
	for i := range a {
		a[i] = byte(i)
	}
	before := a
	Permute(&a)
	if bytes.Equal(before[:], a[:]) {
		t.Fatal("Permute left the state unchanged")
	}
}

func TestPermuteSingleBitFlipChangesOutputSubstantially(t *testing.T) {
	var a, b [200]byte
	b[0] ^= 0x01

	Permute(&a)
	Permute(&b)

	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	// A 10-round permutation should still scatter a single input
	// bit across most of the 200-byte state.
	if diff < 50 {
		t.Fatalf("single bit flip only changed %d/200 output bytes", diff)
	}
}

func TestPermuteIsNotAnInvolution(t *testing.T) {
	// Applying Permute twice should not return to the original state for a
	// nonzero input (i.e. it's not an involution on this input).
	var a [200]byte
	for i := range a {
		a[i] = byte(i*7 + 3)
	}
	orig := a
	Permute(&a)
	Permute(&a)
	if bytes.Equal(orig[:], a[:]) {
		t.Fatal("Permute appears to be its own inverse, which is not expected")
	}
}
