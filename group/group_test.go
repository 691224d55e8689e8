package group

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func randomScalar(t *testing.T) *Scalar {
	t.Helper()
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		t.Fatalf("reading random bytes: %v", err)
	}
	return ScalarFromUniformBytes(buf[:])
}

func TestScalarEncodeDecodeRoundTrip(t *testing.T) {
	s := randomScalar(t)
	enc := s.Encode()
	if len(enc) != ScalarLen {
		t.Fatalf("encoded scalar length = %d, want %d", len(enc), ScalarLen)
	}

	decoded, err := DecodeScalar(enc)
	if err != nil {
		t.Fatalf("DecodeScalar: %v", err)
	}
	if !s.Equal(decoded) {
		t.Fatal("decoded scalar does not equal original")
	}
}

func TestPointEncodeDecodeRoundTrip(t *testing.T) {
	s := randomScalar(t)
	p := MulGenerator(s)
	enc := p.Encode()
	if len(enc) != PointLen {
		t.Fatalf("encoded point length = %d, want %d", len(enc), PointLen)
	}

	decoded, err := DecodePoint(enc)
	if err != nil {
		t.Fatalf("DecodePoint: %v", err)
	}
	if !p.Equal(decoded) {
		t.Fatal("decoded point does not equal original")
	}
}

func TestMultiplyAddMatchesExplicitComputation(t *testing.T) {
	s := randomScalar(t)
	r := randomScalar(t)
	u := randomScalar(t)

	got := s.MultiplyAdd(r, u)
	want := s.Multiply(r).Add(u)

	if !got.Equal(want) {
		t.Fatal("MultiplyAdd did not match s.Multiply(r).Add(u)")
	}
}

func TestMultiplyAddMulGeneratorMatchesSchnorrEquation(t *testing.T) {
	d := randomScalar(t)
	q := MulGenerator(d)

	k := randomScalar(t)
	commitment := MulGenerator(k)

	r := randomScalar(t)
	s := d.MultiplyAdd(r, k)

	// [s]G - [r]Q should recover the commitment [k]G, since
	// s = d*r + k ⇒ [s]G = [d*r]G + [k]G = [r]Q + [k]G.
	recomputed := MultiplyAddMulGenerator(s, r, q)
	if !recomputed.Equal(commitment) {
		t.Fatal("MultiplyAddMulGenerator did not recover the commitment")
	}
}

func TestZeroScalarIsZero(t *testing.T) {
	s := NewScalar()
	if !s.IsZero() {
		t.Fatal("NewScalar did not return the zero scalar")
	}

	nz := randomScalar(t)
	if nz.IsZero() {
		t.Fatal("a randomly derived scalar reported as zero")
	}
	nz.Zero()
	if !nz.IsZero() {
		t.Fatal("Zero() did not reduce the scalar to zero")
	}
}

func TestDecodeScalarRejectsWrongLength(t *testing.T) {
	if _, err := DecodeScalar(make([]byte, 16)); err == nil {
		t.Fatal("DecodeScalar accepted a short input")
	}
}

func TestDecodePointRejectsGarbage(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xFF}, PointLen)
	if _, err := DecodePoint(garbage); err == nil {
		t.Fatal("DecodePoint accepted a non-canonical encoding")
	}
}

func TestTwoRandomScalarsDiffer(t *testing.T) {
	a := randomScalar(t)
	b := randomScalar(t)
	if a.Equal(b) {
		t.Fatal("two independently drawn random scalars were equal")
	}
}
