package pbenc

import (
	"testing"

	"github.com/drand/veil/group"
)

func testScalar(t *testing.T) *group.Scalar {
	t.Helper()
	var buf [64]byte
	for i := range buf {
		buf[i] = byte(i)
	}
	return group.ScalarFromUniformBytes(buf[:])
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	d := testScalar(t)
	passphrase := []byte("correct horse battery staple")

	blob, err := Encrypt(passphrase, 0, 0, d)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(blob) != SealedLen {
		t.Fatalf("sealed blob length = %d, want %d", len(blob), SealedLen)
	}

	recovered, err := Decrypt(passphrase, blob)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !d.Equal(recovered) {
		t.Fatal("decrypted scalar does not match original")
	}
}

func TestDecryptWrongPassphraseFails(t *testing.T) {
	d := testScalar(t)
	blob, err := Encrypt([]byte("right one"), 0, 0, d)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := Decrypt([]byte("wrong one"), blob); err != ErrAuthFailed {
		t.Fatalf("Decrypt with wrong passphrase = %v, want ErrAuthFailed", err)
	}
}

func TestDecryptTamperedBlobFails(t *testing.T) {
	d := testScalar(t)
	passphrase := []byte("a passphrase")
	blob, err := Encrypt(passphrase, 0, 0, d)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	blob[len(blob)-1] ^= 0xFF

	if _, err := Decrypt(passphrase, blob); err != ErrAuthFailed {
		t.Fatalf("Decrypt of tampered blob = %v, want ErrAuthFailed", err)
	}
}

func TestEncryptRejectsExcessiveSpaceCost(t *testing.T) {
	d := testScalar(t)
	if _, err := Encrypt([]byte("pp"), 0, maxSpaceCost+1, d); err == nil {
		t.Fatal("Encrypt accepted a space cost beyond the maximum")
	}
}

func TestDecryptRejectsWrongLength(t *testing.T) {
	if _, err := Decrypt([]byte("pp"), make([]byte, SealedLen-1)); err == nil {
		t.Fatal("Decrypt accepted a blob of the wrong length")
	}
}

func TestTimeCostGreaterThanZeroStillRoundTrips(t *testing.T) {
	d := testScalar(t)
	passphrase := []byte("another passphrase")

	blob, err := Encrypt(passphrase, 1, 1, d)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	recovered, err := Decrypt(passphrase, blob)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !d.Equal(recovered) {
		t.Fatal("decrypted scalar does not match original with non-zero cost parameters")
	}
}
