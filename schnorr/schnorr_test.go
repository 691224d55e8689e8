package schnorr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/drand/veil/group"
)

func testKey(t *testing.T, seed byte) (*group.Scalar, *group.Point) {
	t.Helper()
	var buf [64]byte
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	d := group.ScalarFromUniformBytes(buf[:])
	return d, group.MulGenerator(d)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	d, q := testKey(t, 1)

	sig, err := Sign(d, q, strings.NewReader("hello, veil"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != SigLen {
		t.Fatalf("signature length = %d, want %d", len(sig), SigLen)
	}

	ok, err := Verify(q, strings.NewReader("hello, veil"), sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("Verify rejected a valid signature")
	}
}

func TestVerifyRejectsModifiedMessage(t *testing.T) {
	d, q := testKey(t, 2)
	sig, err := Sign(d, q, strings.NewReader("original message"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(q, strings.NewReader("modified message"), sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a signature over a different message")
	}
}

func TestVerifyRejectsModifiedPublicKey(t *testing.T) {
	d, _ := testKey(t, 3)
	_, otherQ := testKey(t, 4)

	sig, err := Sign(d, group.MulGenerator(d), strings.NewReader("some message"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(otherQ, strings.NewReader("some message"), sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted a signature against the wrong public key")
	}
}

func TestVerifyRejectsBitFlippedSignature(t *testing.T) {
	d, q := testKey(t, 5)
	sig, err := Sign(d, q, strings.NewReader("flip me"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	for i := range sig {
		mutated := append([]byte(nil), sig...)
		mutated[i] ^= 0x01
		ok, err := Verify(q, strings.NewReader("flip me"), mutated)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if ok {
			t.Fatalf("Verify accepted a signature with byte %d flipped", i)
		}
	}
}

func TestSignIsNonDeterministic(t *testing.T) {
	d, q := testKey(t, 6)

	sig1, err := Sign(d, q, strings.NewReader("same message"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig2, err := Sign(d, q, strings.NewReader("same message"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if bytes.Equal(sig1, sig2) {
		t.Fatal("two signatures over the same message and key were identical")
	}
}

func TestVerifyRejectsWrongLengthSignature(t *testing.T) {
	_, q := testKey(t, 7)
	_, err := Verify(q, strings.NewReader("msg"), make([]byte, SigLen-1))
	if err == nil {
		t.Fatal("Verify accepted a signature of the wrong length")
	}
}
