// Package group wraps the prime-order group veil performs all public-key
// arithmetic in. It is built on ristretto255, the closest constant-time,
// canonically-encoded prime-order group available in the Go ecosystem to the
// jq255e-class group the design calls for: both are cofactor-free abstractions
// over a single Edwards curve exposing a 32-byte canonical point encoding, a
// 32-byte canonical (< q) scalar encoding, and rejection of non-canonical
// input on decode — exactly the invariants §3 of the design requires.
package group

import (
	"fmt"

	"github.com/gtank/ristretto255"
)

// ScalarLen and PointLen are the canonical encoded lengths of Scalar and
// Point, fixed at 32 bytes each.
const (
	ScalarLen = 32
	PointLen  = 32
)

// Scalar is an integer modulo the group order q, always held canonically
// reduced.
type Scalar struct {
	s *ristretto255.Scalar
}

// Point is an element of the prime-order group.
type Point struct {
	p *ristretto255.Element
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{s: ristretto255.NewScalar()}
}

// NewPoint returns the identity point.
func NewPoint() *Point {
	return &Point{p: ristretto255.NewElement()}
}

// Generator returns the group generator G.
func Generator() *Point {
	return &Point{p: ristretto255.NewGeneratorElement()}
}

// DecodeScalar parses a canonical 32-byte little-endian scalar encoding.
// Non-canonical encodings (>= q) are rejected, per the Scalar invariant in
// §3 of the design.
func DecodeScalar(b []byte) (*Scalar, error) {
	if len(b) != ScalarLen {
		return nil, fmt.Errorf("group: scalar must be %d bytes, got %d", ScalarLen, len(b))
	}
	s := ristretto255.NewScalar()
	if err := s.Decode(b); err != nil {
		return nil, fmt.Errorf("group: non-canonical scalar encoding: %w", err)
	}
	return &Scalar{s: s}, nil
}

// DecodePoint parses a canonical 32-byte point encoding. Encodings that
// don't correspond to a valid point in the prime-order group are rejected.
func DecodePoint(b []byte) (*Point, error) {
	if len(b) != PointLen {
		return nil, fmt.Errorf("group: point must be %d bytes, got %d", PointLen, len(b))
	}
	p := ristretto255.NewElement()
	if err := p.Decode(b); err != nil {
		return nil, fmt.Errorf("group: invalid point encoding: %w", err)
	}
	return &Point{p: p}, nil
}

// ScalarFromUniformBytes reduces up to 64 bytes of uniformly random input
// modulo q. Fewer than 64 bytes are embedded as the low-order bytes of a
// zero-padded 64-byte buffer before the wide reduction is applied; this is
// how Hedge's 48-byte squeeze and the 32-byte squeezes elsewhere in the
// design are turned into scalars.
func ScalarFromUniformBytes(b []byte) *Scalar {
	if len(b) > 64 {
		panic("group: ScalarFromUniformBytes input too long")
	}
	var wide [64]byte
	copy(wide[:], b)
	s := ristretto255.NewScalar().FromUniformBytes(wide[:])
	return &Scalar{s: s}
}

// ScalarFromShortChallenge zero-extends a short (<=32 byte) challenge, such
// as the 16-byte challenges used by schnorr and the mres trailer, into a full
// scalar. It is used verbatim (not reduced further) since it is already far
// smaller than q.
func ScalarFromShortChallenge(b []byte) *Scalar {
	if len(b) > ScalarLen {
		panic("group: short challenge too long")
	}
	var buf [ScalarLen]byte
	copy(buf[:], b)
	s, err := DecodeScalar(buf[:])
	if err != nil {
		// A zero-extended value strictly smaller than 2^128 is always < q
		// (q is close to 2^252); this can only fail on a library bug.
		panic(err)
	}
	return s
}

// Encode returns the canonical 32-byte little-endian encoding of s.
func (s *Scalar) Encode() []byte {
	return s.s.Encode(make([]byte, 0, ScalarLen))
}

// Add returns s + t mod q.
func (s *Scalar) Add(t *Scalar) *Scalar {
	return &Scalar{s: ristretto255.NewScalar().Add(s.s, t.s)}
}

// Multiply returns s * t mod q.
func (s *Scalar) Multiply(t *Scalar) *Scalar {
	return &Scalar{s: ristretto255.NewScalar().Multiply(s.s, t.s)}
}

// MultiplyAdd returns s*t + u mod q.
func (s *Scalar) MultiplyAdd(t, u *Scalar) *Scalar {
	product := ristretto255.NewScalar().Multiply(s.s, t.s)
	return &Scalar{s: ristretto255.NewScalar().Add(product, u.s)}
}

// Equal reports whether s and t encode the same scalar, in constant time.
func (s *Scalar) Equal(t *Scalar) bool {
	return s.s.Equal(t.s) == 1
}

// IsZero reports whether s is the zero scalar, in constant time.
func (s *Scalar) IsZero() bool {
	return s.Equal(NewScalar())
}

// Zero overwrites s's backing bytes with zero. Used to scrub ephemeral and
// private scalars on every exit path.
func (s *Scalar) Zero() {
	zero := ristretto255.NewScalar()
	s.s.Add(zero, zero)
}

// Encode returns the canonical 32-byte encoding of p.
func (p *Point) Encode() []byte {
	return p.p.Encode(make([]byte, 0, PointLen))
}

// Mul returns [s]p.
func (p *Point) Mul(s *Scalar) *Point {
	return &Point{p: ristretto255.NewElement().ScalarMult(s.s, p.p)}
}

// MulGenerator returns [s]G.
func MulGenerator(s *Scalar) *Point {
	return &Point{p: ristretto255.NewElement().ScalarBaseMult(s.s)}
}

// Add returns p + q.
func (p *Point) Add(q *Point) *Point {
	return &Point{p: ristretto255.NewElement().Add(p.p, q.p)}
}

// Sub returns p - q.
func (p *Point) Sub(q *Point) *Point {
	return &Point{p: ristretto255.NewElement().Subtract(p.p, q.p)}
}

// Equal reports whether p and q are the same point, comparing canonical
// encodings in constant time.
func (p *Point) Equal(q *Point) bool {
	return p.p.Equal(q.p) == 1
}

// MultiplyAddMulGenerator computes [s]G - [r]q, the Schnorr verification
// equation's right-hand side. Variable-time group operations are permitted
// here (§4.4 step 6): nothing here depends on a secret, only on the public
// key, the public commitment opening, and the (public) signature itself.
func MultiplyAddMulGenerator(s, r *Scalar, q *Point) *Point {
	return MulGenerator(s).Sub(q.Mul(r))
}
