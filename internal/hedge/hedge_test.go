package hedge

import (
	"testing"

	"github.com/drand/veil/internal/duplex"
)

func TestScalarReturnsNonZero(t *testing.T) {
	d := duplex.New("hedge-test")
	defer d.Zero()

	s, err := Scalar(d, []byte("a secret"))
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	if s.IsZero() {
		t.Fatal("hedged scalar was zero")
	}
}

func TestScalarDiffersAcrossCalls(t *testing.T) {
	d := duplex.New("hedge-test")
	defer d.Zero()

	a, err := Scalar(d, []byte("same secret"))
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	b, err := Scalar(d, []byte("same secret"))
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	if a.Equal(b) {
		t.Fatal("two hedged scalars from the same secret and duplex transcript were equal")
	}
}

func TestScalarDoesNotMutateCallerDuplex(t *testing.T) {
	d := duplex.New("hedge-test")
	defer d.Zero()

	before := d.SqueezeKey(32)

	d2 := duplex.New("hedge-test")
	defer d2.Zero()
	if _, err := Scalar(d2, []byte("secret")); err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	after := d2.SqueezeKey(32)

	if string(before) != string(after) {
		t.Fatal("Scalar mutated the caller's duplex transcript")
	}
}
