package duplex

import (
	"bytes"
	"testing"
)

func TestSqueezeKeyDeterministic(t *testing.T) {
	a := New("test")
	a.Absorb([]byte("hello world"))
	b := New("test")
	b.Absorb([]byte("hello world"))

	if !bytes.Equal(a.SqueezeKey(48), b.SqueezeKey(48)) {
		t.Fatal("identical transcripts produced different SqueezeKey output")
	}
}

func TestChunkedAbsorbMatchesOneShot(t *testing.T) {
	one := New("test")
	one.Absorb([]byte("the quick brown fox"))
	out1 := one.SqueezeKey(32)

	chunked := New("test")
	chunked.Absorb([]byte("the quick "))
	chunked.Absorb([]byte("brown fox"))
	out2 := chunked.SqueezeKey(32)

	if !bytes.Equal(out1, out2) {
		t.Fatal("chunked Absorb calls produced a different transcript than one call over the concatenation")
	}
}

func TestDifferentDomainStringsDiverge(t *testing.T) {
	a := New("domain-a")
	b := New("domain-b")
	if bytes.Equal(a.SqueezeKey(32), b.SqueezeKey(32)) {
		t.Fatal("different domain strings produced the same SqueezeKey output")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("a shared secret key material....")
	plaintext := []byte("the message to protect")

	enc := New("enc")
	enc.Cyclist(key)
	ct := enc.Encrypt(plaintext)

	dec := New("enc")
	dec.Cyclist(key)
	pt := dec.Decrypt(ct)

	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("decrypt did not recover plaintext: got %q want %q", pt, plaintext)
	}
}

func TestEncryptIsNotIdentity(t *testing.T) {
	key := []byte("another shared secret material..")
	plaintext := []byte("some plaintext bytes")

	d := New("enc")
	d.Cyclist(key)
	ct := d.Encrypt(plaintext)

	if bytes.Equal(ct, plaintext) {
		t.Fatal("Encrypt returned the plaintext unchanged")
	}
}

func TestSqueezeAdvancesState(t *testing.T) {
	key := []byte("yet another shared secret key...")
	d := New("sq")
	d.Cyclist(key)

	first := d.Squeeze(16)
	second := d.Squeeze(16)
	if bytes.Equal(first, second) {
		t.Fatal("two consecutive Squeeze calls returned identical output")
	}
}

func TestRatchetChangesFutureOutput(t *testing.T) {
	key := []byte("shared secret key for ratchet.1.")

	withoutRatchet := New("r")
	withoutRatchet.Cyclist(key)
	plain := withoutRatchet.Squeeze(16)

	withRatchet := New("r")
	withRatchet.Cyclist(key)
	withRatchet.Ratchet()
	ratcheted := withRatchet.Squeeze(16)

	if bytes.Equal(plain, ratcheted) {
		t.Fatal("Ratchet did not change subsequent Squeeze output")
	}
}

func TestCloneProducesIdenticalFutureOutput(t *testing.T) {
	d := New("clone-test")
	d.Absorb([]byte("shared prefix"))

	clone := d.Clone()

	if !bytes.Equal(d.SqueezeKey(32), clone.SqueezeKey(32)) {
		t.Fatal("a freshly cloned duplex diverged from its origin")
	}
}

func TestZeroClearsState(t *testing.T) {
	d := New("zero-test")
	d.Absorb([]byte("some data"))
	d.Zero()

	for i, b := range d.state {
		if b != 0 {
			t.Fatalf("state byte %d not zeroed after Zero()", i)
		}
	}
}
