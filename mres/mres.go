// Package mres implements veil's multi-receiver streaming signcryption: a
// table of sres headers (one per real receiver plus F indistinguishable
// decoys) carrying a per-message data-encryption key, followed by a
// block-wise duplex-AEAD payload and a trailing Schnorr-style signature
// binding the whole transcript to the sender.
package mres

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
	"github.com/drand/veil/internal/hedge"
	"github.com/drand/veil/sres"
)

// BlockSize is the maximum size, in bytes, of one payload block; each block
// is followed by a 16-byte tag.
const BlockSize = 32 * 1024

// BlockTagLen is the size of the per-block duplex-PRF tag.
const BlockTagLen = 16

// NonceLen is the size of the per-message header-binding nonce written at
// the start of the ciphertext.
const NonceLen = 16

// TrailerLen is the size of the trailing encrypted commitment (32 bytes)
// plus encrypted short-proof (32 bytes).
const TrailerLen = group.ScalarLen + group.ScalarLen

// ErrNoHeaderDecrypted means no header in the scanned table could be opened
// with the receiver's private key.
var ErrNoHeaderDecrypted = fmt.Errorf("mres: no header decrypted with this key")

// ErrAuthFailed means header scanning succeeded but the trailing signature
// over the payload didn't verify, or a block tag mismatched mid-stream.
var ErrAuthFailed = fmt.Errorf("mres: authentication failed")

// maxScanHeaders bounds how many header-sized records DecryptMessage will
// read looking for one it can open, when the declared receiver count isn't
// yet known (i.e. before any header has decrypted). The real veil source
// leaves this an open question between a caller-supplied ceiling and
// scanning to EOF; this implementation picks a generous fixed ceiling so a
// corrupt or hostile stream can't force an unbounded read.
const maxScanHeaders = 1 << 20

// EncryptMessage signcrypts the stream read from plaintext under sender key
// dS, to every public key in receivers, plus fakes additional decoy headers
// and pad bytes of random padding, writing the resulting ciphertext to w.
func EncryptMessage(
	dS *group.Scalar,
	receivers []*group.Point,
	fakes int,
	pad int,
	plaintext io.Reader,
	w io.Writer,
) error {
	if fakes < 0 || pad < 0 {
		return fmt.Errorf("mres: fakes and pad must be non-negative")
	}

	table, err := shuffledReceiverTable(receivers, fakes)
	if err != nil {
		return err
	}
	n := len(table)

	qS := group.MulGenerator(dS)

	d := duplex.New("veil.mres")
	defer d.Zero()
	d.Absorb(qS.Encode())

	k, err := hedge.Scalar(d, dS.Encode())
	if err != nil {
		return fmt.Errorf("mres: %w", err)
	}
	defer k.Zero()

	dE, err := hedge.Scalar(d, dS.Encode())
	if err != nil {
		return fmt.Errorf("mres: %w", err)
	}
	defer dE.Zero()

	dekScalarSeed, err := hedge.Scalar(d, dS.Encode())
	if err != nil {
		return fmt.Errorf("mres: %w", err)
	}
	dek := dekScalarSeed.Encode()
	dekScalarSeed.Zero()

	nonceScalar, err := hedge.Scalar(d, dS.Encode())
	if err != nil {
		return fmt.Errorf("mres: %w", err)
	}
	nonce := nonceScalar.Encode()[:NonceLen]
	nonceScalar.Zero()

	if _, err := w.Write(nonce); err != nil {
		return fmt.Errorf("mres: writing nonce: %w", err)
	}
	d.Absorb(nonce)

	h := buildHeaderPayload(dek, n, pad)

	for _, qR := range table {
		ni := d.SqueezeKey(16)
		hdr, err := sres.EncryptHeader(dS, dE, qR, ni, h)
		if err != nil {
			return fmt.Errorf("mres: encrypting header: %w", err)
		}
		d.Absorb(hdr)
		if _, err := w.Write(hdr); err != nil {
			return fmt.Errorf("mres: writing header: %w", err)
		}
	}

	padding, err := randomBytes(pad)
	if err != nil {
		return err
	}
	d.Absorb(padding)
	if _, err := w.Write(padding); err != nil {
		return fmt.Errorf("mres: writing padding: %w", err)
	}

	d.Absorb(dek)
	d.Cyclist(d.SqueezeKey(64))

	buf := make([]byte, BlockSize)
	for {
		nRead, readErr := io.ReadFull(plaintext, buf)
		if nRead > 0 {
			block := buf[:nRead]
			ct := d.Encrypt(block)
			if _, err := w.Write(ct); err != nil {
				return fmt.Errorf("mres: writing block: %w", err)
			}
			tag := d.Squeeze(BlockTagLen)
			if _, err := w.Write(tag); err != nil {
				return fmt.Errorf("mres: writing block tag: %w", err)
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("mres: reading plaintext: %w", readErr)
		}
	}

	i := group.MulGenerator(k)
	if _, err := w.Write(d.Encrypt(i.Encode())); err != nil {
		return fmt.Errorf("mres: writing trailer commitment: %w", err)
	}

	challengeBytes := d.Squeeze(16)
	r := group.ScalarFromShortChallenge(challengeBytes)
	s := dE.MultiplyAdd(r, k)
	if _, err := w.Write(d.Encrypt(s.Encode())); err != nil {
		return fmt.Errorf("mres: writing trailer proof: %w", err)
	}

	return nil
}

// DecryptMessage opens a stream produced by EncryptMessage using receiver
// private key dR and the claimed sender public key qS, writing recovered
// plaintext to w. It returns an error (ErrNoHeaderDecrypted or
// ErrAuthFailed, or an I/O error) on any failure; plaintext may already have
// been written to w by the time a streaming authentication failure is
// detected.
func DecryptMessage(dR *group.Scalar, qS *group.Point, r io.Reader, w io.Writer) error {
	d := duplex.New("veil.mres")
	defer d.Zero()
	d.Absorb(qS.Encode())

	nonce := make([]byte, NonceLen)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return fmt.Errorf("mres: reading nonce: %w", err)
	}
	d.Absorb(nonce)

	var (
		dek     []byte
		n, pad  int
		qE      *group.Point
		scanned bool
	)

	for i := 0; i < maxScanHeaders; i++ {
		ni := d.SqueezeKey(16)
		hdr := make([]byte, sres.HeaderLen)
		if _, err := io.ReadFull(r, hdr); err != nil {
			if !scanned && (err == io.EOF || err == io.ErrUnexpectedEOF) {
				// ran out of plausible header-sized records before any
				// header decrypted: there is no receiver-set membership to
				// report, just the edge case the caller's key isn't one.
				return ErrNoHeaderDecrypted
			}
			return fmt.Errorf("mres: reading header %d: %w", i, err)
		}
		d.Absorb(hdr)

		if scanned {
			// N is now known; keep absorbing the remaining headers without
			// attempting to decrypt them, to preserve the transcript.
			if i >= n-1 {
				break
			}
			continue
		}

		gotQE, h, ok, err := sres.DecryptHeader(dR, qS, ni, hdr)
		if err != nil {
			return fmt.Errorf("mres: %w", err)
		}
		if ok {
			dek, n, pad = parseHeaderPayload(h)
			qE = gotQE
			scanned = true
			if i >= n-1 {
				break
			}
		}
	}

	if !scanned {
		return ErrNoHeaderDecrypted
	}

	padding := make([]byte, pad)
	if _, err := io.ReadFull(r, padding); err != nil {
		return fmt.Errorf("mres: reading padding: %w", err)
	}
	d.Absorb(padding)

	d.Absorb(dek)
	d.Cyclist(d.SqueezeKey(64))

	br := &trailerAwareReader{r: r}
	buf := make([]byte, BlockSize+BlockTagLen)
	for {
		block, tag, last, err := br.next(buf)
		if err != nil {
			return fmt.Errorf("mres: reading ciphertext: %w", err)
		}
		if len(block) > 0 {
			pt := d.Decrypt(block)
			gotTag := d.Squeeze(BlockTagLen)
			if subtle.ConstantTimeCompare(gotTag, tag) != 1 {
				return ErrAuthFailed
			}
			if _, err := w.Write(pt); err != nil {
				return fmt.Errorf("mres: writing plaintext: %w", err)
			}
		}
		if last {
			break
		}
	}

	trailer := br.trailer
	commitmentBytes := d.Decrypt(trailer[:group.ScalarLen])
	i, err := group.DecodePoint(commitmentBytes)
	if err != nil {
		return ErrAuthFailed
	}

	challengeBytes := d.Squeeze(16)
	rChal := group.ScalarFromShortChallenge(challengeBytes)

	sBytes := d.Decrypt(trailer[group.ScalarLen:])
	s, err := group.DecodeScalar(sBytes)
	if err != nil {
		return ErrAuthFailed
	}

	expected := group.MultiplyAddMulGenerator(s, rChal, qE)
	if !i.Equal(expected) {
		return ErrAuthFailed
	}

	return nil
}

func buildHeaderPayload(dek []byte, n, pad int) []byte {
	h := make([]byte, 0, sres.HeaderPayloadLen)
	h = append(h, dek...)
	var nBuf, pBuf [4]byte
	binary.LittleEndian.PutUint32(nBuf[:], uint32(n))
	binary.LittleEndian.PutUint32(pBuf[:], uint32(pad))
	h = append(h, nBuf[:]...)
	h = append(h, pBuf[:]...)
	return h
}

func parseHeaderPayload(h []byte) (dek []byte, n, pad int) {
	dek = append([]byte(nil), h[:32]...)
	n = int(binary.LittleEndian.Uint32(h[32:36]))
	pad = int(binary.LittleEndian.Uint32(h[36:40]))
	return dek, n, pad
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	if _, err := ioReadFull(b); err != nil {
		return nil, fmt.Errorf("mres: reading randomness: %w", err)
	}
	return b, nil
}

func shuffledReceiverTable(receivers []*group.Point, fakes int) ([]*group.Point, error) {
	table := make([]*group.Point, 0, len(receivers)+fakes)
	table = append(table, receivers...)
	for i := 0; i < fakes; i++ {
		decoy, err := randomDecoyPoint()
		if err != nil {
			return nil, err
		}
		table = append(table, decoy)
	}

	perm, err := cryptoPermutation(len(table))
	if err != nil {
		return nil, err
	}
	shuffled := make([]*group.Point, len(table))
	for i, j := range perm {
		shuffled[j] = table[i]
	}
	return shuffled, nil
}

// randomDecoyPoint returns [s]G for a freshly drawn random scalar s,
// indistinguishable from a genuine receiver public key, as §4.6 and §9
// require.
func randomDecoyPoint() (*group.Point, error) {
	seed := make([]byte, 64)
	if _, err := ioReadFull(seed); err != nil {
		return nil, fmt.Errorf("mres: drawing decoy scalar: %w", err)
	}
	s := group.ScalarFromUniformBytes(seed)
	defer s.Zero()
	return group.MulGenerator(s), nil
}
