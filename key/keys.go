// Package key wraps veil's scalar/point primitives into the PrivateKey and
// PublicKey types the CLI and the signcryption packages share, along with
// passphrase sealing for on-disk storage. It plays the same role here that
// key.Private/key.Identity play for drand's BLS keys, but the arithmetic
// underneath is veil's own prime-order group rather than a pairing curve.
package key

import (
	"fmt"

	"github.com/drand/veil/entropy"
	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
	"github.com/drand/veil/internal/hedge"
	"github.com/drand/veil/pbenc"
	"github.com/mr-tron/base58"
)

// PrivateKey is a secret scalar 0 < d < q.
type PrivateKey struct {
	D *group.Scalar
}

// PublicKey is the point Q = [d]G corresponding to a PrivateKey.
type PublicKey struct {
	Q *group.Point
}

// Generate draws a fresh private key, hedged against a failing CSPRNG the
// same way every other ephemeral value in veil is: by absorbing 64 bytes of
// system randomness into a disposable duplex and reducing the squeeze output
// mod q.
func Generate() (*PrivateKey, error) {
	d := duplex.New("veil.key.generate")
	defer d.Zero()

	// There is no caller secret to hedge against at generation time, so the
	// domain string itself stands in for it: the transcript is the same on
	// every call, and the key's uniqueness comes from the fresh CSPRNG bytes.
	s, err := hedge.Scalar(d, []byte("veil.key.generate"))
	if err != nil {
		return nil, fmt.Errorf("key: generating private key: %w", err)
	}
	return &PrivateKey{D: s}, nil
}

// GenerateWithEntropy draws a fresh private key the same way Generate does,
// but additionally mixes in 64 bytes drawn from source before reducing the
// squeeze output mod q. This lets an operator combine the system CSPRNG with
// an external entropy source (say, a hardware generator invoked via
// entropy.EntropyReader) without trusting that source alone: a failure or
// compromise of source cannot make the derived key any weaker than Generate
// already is, since source's bytes only ever add entropy to the transcript.
func GenerateWithEntropy(source entropy.EntropySource) (*PrivateKey, error) {
	extra, err := entropy.GetRandom(source, 64)
	if err != nil {
		return nil, fmt.Errorf("key: reading supplemental entropy: %w", err)
	}

	d := duplex.New("veil.key.generate")
	defer d.Zero()

	s, err := hedge.Scalar(d, extra)
	if err != nil {
		return nil, fmt.Errorf("key: generating private key: %w", err)
	}
	return &PrivateKey{D: s}, nil
}

// Public derives the public key corresponding to k.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{Q: group.MulGenerator(k.D)}
}

// Zero overwrites the private scalar with zero. Callers must call this once
// a PrivateKey is no longer needed.
func (k *PrivateKey) Zero() {
	k.D.Zero()
}

// Seal encrypts k under passphrase with the given balloon-hashing cost
// parameters, returning the 66-byte sealed blob described in §6.
func (k *PrivateKey) Seal(passphrase []byte, timeCost, spaceCost uint8) ([]byte, error) {
	return pbenc.Encrypt(passphrase, timeCost, spaceCost, k.D)
}

// Unseal decrypts a blob produced by Seal.
func Unseal(passphrase []byte, blob []byte) (*PrivateKey, error) {
	d, err := pbenc.Decrypt(passphrase, blob)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{D: d}, nil
}

// String returns the base58 encoding of the public key, the persisted
// format described in §6.
func (pk *PublicKey) String() string {
	return base58.Encode(pk.Q.Encode())
}

// ParsePublicKey decodes the base58 text produced by PublicKey.String.
func ParsePublicKey(s string) (*PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("key: invalid base58 public key: %w", err)
	}
	q, err := group.DecodePoint(b)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	return &PublicKey{Q: q}, nil
}

// Equal reports whether pk and other are the same public key.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.Q.Equal(other.Q)
}
