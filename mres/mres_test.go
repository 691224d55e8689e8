package mres

import (
	"bytes"
	"testing"

	"github.com/drand/veil/group"
	"github.com/drand/veil/sres"
)

func testScalar(t *testing.T, seed byte) *group.Scalar {
	t.Helper()
	var buf [64]byte
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return group.ScalarFromUniformBytes(buf[:])
}

func TestEncryptDecryptRoundTripMultipleReceivers(t *testing.T) {
	dS := testScalar(t, 1)
	dA := testScalar(t, 2)
	dB := testScalar(t, 3)
	dC := testScalar(t, 4)
	dD := testScalar(t, 5) // not a receiver

	receivers := []*group.Point{
		group.MulGenerator(dA),
		group.MulGenerator(dB),
		group.MulGenerator(dC),
	}
	qS := group.MulGenerator(dS)

	message := []byte("this is the message body, signcrypted to three receivers")

	var ct bytes.Buffer
	if err := EncryptMessage(dS, receivers, 2, 7, bytes.NewReader(message), &ct); err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	for name, dR := range map[string]*group.Scalar{"A": dA, "B": dB, "C": dC} {
		var pt bytes.Buffer
		if err := DecryptMessage(dR, qS, bytes.NewReader(ct.Bytes()), &pt); err != nil {
			t.Fatalf("DecryptMessage(%s): %v", name, err)
		}
		if !bytes.Equal(pt.Bytes(), message) {
			t.Fatalf("DecryptMessage(%s) recovered %q, want %q", name, pt.Bytes(), message)
		}
	}

	var pt bytes.Buffer
	err := DecryptMessage(dD, qS, bytes.NewReader(ct.Bytes()), &pt)
	if err != ErrNoHeaderDecrypted {
		t.Fatalf("DecryptMessage(D) = %v, want ErrNoHeaderDecrypted", err)
	}
}

func TestCiphertextLengthLaw(t *testing.T) {
	dS := testScalar(t, 10)
	dA := testScalar(t, 11)
	receivers := []*group.Point{group.MulGenerator(dA)}
	fakes := 3
	padding := 11
	message := bytes.Repeat([]byte{0x42}, 100000)

	var ct bytes.Buffer
	if err := EncryptMessage(dS, receivers, fakes, padding, bytes.NewReader(message), &ct); err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	n := len(receivers) + fakes
	numBlocks := (len(message) + BlockSize - 1) / BlockSize
	want := NonceLen + n*sres.HeaderLen + padding + numBlocks*BlockTagLen + len(message) + TrailerLen

	if ct.Len() != want {
		t.Fatalf("ciphertext length = %d, want %d", ct.Len(), want)
	}
}

func TestDecryptRejectsTamperedTrailer(t *testing.T) {
	dS := testScalar(t, 20)
	dA := testScalar(t, 21)
	receivers := []*group.Point{group.MulGenerator(dA)}
	qS := group.MulGenerator(dS)

	message := []byte("a short message to protect")

	var ct bytes.Buffer
	if err := EncryptMessage(dS, receivers, 0, 0, bytes.NewReader(message), &ct); err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	tampered := ct.Bytes()
	tampered[len(tampered)-1] ^= 0xFF

	var pt bytes.Buffer
	err := DecryptMessage(dA, qS, bytes.NewReader(tampered), &pt)
	if err != ErrAuthFailed {
		t.Fatalf("DecryptMessage with tampered trailer = %v, want ErrAuthFailed", err)
	}
}

func TestDecryptRejectsWrongSenderKey(t *testing.T) {
	dS := testScalar(t, 30)
	dOtherS := testScalar(t, 31)
	dA := testScalar(t, 32)
	receivers := []*group.Point{group.MulGenerator(dA)}

	message := []byte("message for a sender mismatch test")

	var ct bytes.Buffer
	if err := EncryptMessage(dS, receivers, 0, 0, bytes.NewReader(message), &ct); err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	var pt bytes.Buffer
	err := DecryptMessage(dA, group.MulGenerator(dOtherS), bytes.NewReader(ct.Bytes()), &pt)
	if err == nil {
		t.Fatal("DecryptMessage succeeded with the wrong claimed sender key")
	}
}

func TestEmptyMessageRoundTrips(t *testing.T) {
	dS := testScalar(t, 40)
	dA := testScalar(t, 41)
	receivers := []*group.Point{group.MulGenerator(dA)}
	qS := group.MulGenerator(dS)

	var ct bytes.Buffer
	if err := EncryptMessage(dS, receivers, 0, 0, bytes.NewReader(nil), &ct); err != nil {
		t.Fatalf("EncryptMessage: %v", err)
	}

	var pt bytes.Buffer
	if err := DecryptMessage(dA, qS, bytes.NewReader(ct.Bytes()), &pt); err != nil {
		t.Fatalf("DecryptMessage: %v", err)
	}
	if pt.Len() != 0 {
		t.Fatalf("decrypted %d bytes from an empty message", pt.Len())
	}
}
