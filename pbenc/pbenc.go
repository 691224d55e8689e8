// Package pbenc implements veil's passphrase-based private-key encryption: a
// memory-hard balloon-hashing key derivation built directly on the duplex,
// followed by duplex-AEAD sealing of the 32-byte private scalar.
package pbenc

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
)

// Parameter bounds and framing sizes, per §4.3 and the "Sealed private key"
// format in §6.
const (
	SaltLen = 16

	// DefaultTimeCost and DefaultSpaceCost match the design's defaults.
	DefaultTimeCost  = 128
	DefaultSpaceCost = 20

	delta     = 3
	blockSize = 1024

	// SealedLen is the size of the persisted T(1) || M(1) || salt(16) ||
	// ct(32) || tag(16) blob.
	SealedLen = 1 + 1 + SaltLen + group.ScalarLen + 16

	maxSpaceCost = 31
)

// ErrAuthFailed indicates the sealed blob's tag didn't match: either the
// passphrase was wrong or the blob was corrupted/tampered with.
var ErrAuthFailed = fmt.Errorf("pbenc: authentication failed")

// hashBlock implements HashBlock(C, inputs..., outlen): a fresh duplex
// keyed only by a counter and the supplied inputs, squeezed for outlen
// bytes. Each call gets its own duplex so that the balloon-hashing memory
// matrix's dependency graph is exactly the sequence of absorbed inputs, with
// no cross-talk between cells beyond what's explicitly absorbed.
func hashBlock(counter uint64, outlen int, inputs ...[]byte) []byte {
	d := duplex.New("veil.pbenc.iter")
	defer d.Zero()

	var c [8]byte
	binary.LittleEndian.PutUint64(c[:], counter)
	d.Absorb(c[:])

	for _, in := range inputs {
		d.Absorb(in)
	}

	if outlen <= 32 {
		return d.SqueezeKey(outlen)
	}
	d.Cyclist(d.SqueezeKey(64))
	return d.Squeeze(outlen)
}

// initFromPassphrase runs the balloon-hashing memory-filling and mixing
// phases described in §4.3 and returns the outer duplex, seeded and
// transitioned to keyed mode, ready for Encrypt/Decrypt of the private
// scalar.
func initFromPassphrase(passphrase, salt []byte, timeCost, spaceCost uint8) (*duplex.Duplex, error) {
	if spaceCost > maxSpaceCost {
		return nil, fmt.Errorf("pbenc: space cost %d exceeds maximum %d", spaceCost, maxSpaceCost)
	}
	numBlocks := uint64(1) << spaceCost

	var counter uint64
	next := func(outlen int, inputs ...[]byte) []byte {
		b := hashBlock(counter, outlen, inputs...)
		counter++
		return b
	}

	blocks := make([][]byte, numBlocks)
	blocks[0] = next(blockSize, passphrase, salt)
	for m := uint64(1); m < numBlocks; m++ {
		blocks[m] = next(blockSize, blocks[m-1])
	}

	for t := uint8(0); t < timeCost; t++ {
		for m := uint64(0); m < numBlocks; m++ {
			prev := blocks[(m+numBlocks-1)%numBlocks]
			blocks[m] = next(blockSize, prev, blocks[m])
			for i := 0; i < delta; i++ {
				var tb, mb, ib [8]byte
				binary.LittleEndian.PutUint64(tb[:], uint64(t))
				binary.LittleEndian.PutUint64(mb[:], m)
				binary.LittleEndian.PutUint64(ib[:], uint64(i))
				rOut := next(8, salt, tb[:], mb[:], ib[:])
				r := binary.LittleEndian.Uint64(rOut) % numBlocks
				blocks[m] = next(blockSize, blocks[m], blocks[r])
			}
		}
	}

	outer := duplex.New("veil.pbenc")
	outer.Absorb(blocks[numBlocks-1])
	outer.Cyclist(outer.SqueezeKey(64))
	return outer, nil
}

// Encrypt seals the private scalar d under passphrase using the given cost
// parameters, returning the persisted T || M || salt || ciphertext || tag
// blob (SealedLen bytes).
func Encrypt(passphrase []byte, timeCost, spaceCost uint8, d *group.Scalar) ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("pbenc: reading salt: %w", err)
	}

	outer, err := initFromPassphrase(passphrase, salt, timeCost, spaceCost)
	if err != nil {
		return nil, err
	}
	defer outer.Zero()

	ct := outer.Encrypt(d.Encode())
	tag := outer.Squeeze(16)

	out := make([]byte, 0, SealedLen)
	out = append(out, timeCost, spaceCost)
	out = append(out, salt...)
	out = append(out, ct...)
	out = append(out, tag...)
	return out, nil
}

// Decrypt unseals a blob produced by Encrypt. It returns ErrAuthFailed,
// compared in constant time, if the passphrase is wrong or the blob has been
// tampered with.
func Decrypt(passphrase []byte, blob []byte) (*group.Scalar, error) {
	if len(blob) != SealedLen {
		return nil, fmt.Errorf("pbenc: sealed key must be %d bytes, got %d", SealedLen, len(blob))
	}
	timeCost := blob[0]
	spaceCost := blob[1]
	salt := blob[2 : 2+SaltLen]
	ct := blob[2+SaltLen : 2+SaltLen+group.ScalarLen]
	tag := blob[2+SaltLen+group.ScalarLen:]

	outer, err := initFromPassphrase(passphrase, salt, timeCost, spaceCost)
	if err != nil {
		return nil, err
	}
	defer outer.Zero()

	pt := outer.Decrypt(ct)
	gotTag := outer.Squeeze(16)

	if subtle.ConstantTimeCompare(gotTag, tag) != 1 {
		return nil, ErrAuthFailed
	}

	d, err := group.DecodeScalar(pt)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return d, nil
}
