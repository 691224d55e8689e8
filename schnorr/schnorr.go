// Package schnorr implements veil's detached signature scheme: a
// Fiat-Shamir/EdDSA-style Schnorr signature over the duplex, using short
// (16-byte) challenge scalars and an encrypted (rather than plainly
// transmitted) commitment point, which keeps the signer's identity hidden
// from anyone who can't already derive the duplex's keyed state from the
// message and purported public key.
package schnorr

import (
	"fmt"
	"io"

	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
	"github.com/drand/veil/internal/hedge"
)

// SigLen is the length, in bytes, of a detached signature: S0 (32, the
// encrypted commitment point) || S1 (32, the encrypted response scalar).
const SigLen = 2 * group.ScalarLen

const chunkSize = 64 * 1024

func absorbReader(d *duplex.Duplex, r io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			d.Absorb(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("schnorr: reading message: %w", err)
		}
	}
}

// Sign produces a detached signature over the bytes read from message,
// using private key d. Two signatures of the same message are never equal:
// the commitment scalar k is derived by hedge.Scalar, which mixes in fresh
// CSPRNG output alongside d itself.
func Sign(d *group.Scalar, q *group.Point, message io.Reader) ([]byte, error) {
	duplx := duplex.New("veil.schnorr")
	defer duplx.Zero()

	duplx.Absorb(q.Encode())
	if err := absorbReader(duplx, message); err != nil {
		return nil, err
	}
	duplx.Cyclist(duplx.SqueezeKey(64))

	k, err := hedge.Scalar(duplx, d.Encode())
	if err != nil {
		return nil, fmt.Errorf("schnorr: %w", err)
	}
	defer k.Zero()

	commitment := group.MulGenerator(k)
	s0 := duplx.Encrypt(commitment.Encode())

	challengeBytes := duplx.Squeeze(16)
	r := group.ScalarFromShortChallenge(challengeBytes)

	s := d.MultiplyAdd(r, k)
	s1 := duplx.Encrypt(s.Encode())

	sig := make([]byte, 0, SigLen)
	sig = append(sig, s0...)
	sig = append(sig, s1...)
	return sig, nil
}

// Verify checks a detached signature produced by Sign against public key q
// and the bytes read from message. It is a pure function of its inputs: no
// hidden state influences the outcome.
func Verify(q *group.Point, message io.Reader, sig []byte) (bool, error) {
	if len(sig) != SigLen {
		return false, fmt.Errorf("schnorr: signature must be %d bytes, got %d", SigLen, len(sig))
	}
	s0 := sig[:group.ScalarLen]
	s1 := sig[group.ScalarLen:]

	duplx := duplex.New("veil.schnorr")
	defer duplx.Zero()

	duplx.Absorb(q.Encode())
	if err := absorbReader(duplx, message); err != nil {
		return false, err
	}
	duplx.Cyclist(duplx.SqueezeKey(64))

	commitmentBytes := duplx.Decrypt(s0)
	commitment, err := group.DecodePoint(commitmentBytes)
	if err != nil {
		return false, nil
	}

	challengeBytes := duplx.Squeeze(16)
	r := group.ScalarFromShortChallenge(challengeBytes)

	sBytes := duplx.Decrypt(s1)
	s, err := group.DecodeScalar(sBytes)
	if err != nil {
		return false, nil
	}

	recomputed := group.MultiplyAddMulGenerator(s, r, q)
	return commitment.Equal(recomputed), nil
}
