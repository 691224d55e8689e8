// Package sres implements veil's single-receiver signcryption: a designated-
// verifier construction that wraps a fixed-length header payload (the data
// encryption key, receiver count, and padding length used by mres) for
// exactly one receiver's public key, using a static+ephemeral ECDH exchange
// and a Schnorr-like proof only that receiver can check. mres uses one sres
// header per entry in its receiver table, real or decoy.
package sres

import (
	"fmt"

	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
	"github.com/drand/veil/internal/hedge"
)

// HeaderPayloadLen is the size of H = DEK(32) || N(4) || P(4), the fixed
// payload every sres header carries.
const HeaderPayloadLen = 32 + 4 + 4

// Overhead is the number of bytes sres adds around a HeaderPayloadLen
// payload: C0(32, ephemeral pub) || C1(|H|) || S0(32) || S1(32).
const Overhead = group.PointLen + group.PointLen + group.PointLen

// HeaderLen is the total length of an sres ciphertext for veil's fixed
// HeaderPayloadLen.
const HeaderLen = Overhead + HeaderPayloadLen

// EncryptHeader signcrypts header payload h (exactly HeaderPayloadLen bytes)
// from sender key dS (with ephemeral signing key dE, shared across every
// header in one mres message) to receiver public key qR, under nonce.
func EncryptHeader(dS *group.Scalar, dE *group.Scalar, qR *group.Point, nonce []byte, h []byte) ([]byte, error) {
	if len(h) != HeaderPayloadLen {
		return nil, fmt.Errorf("sres: header payload must be %d bytes, got %d", HeaderPayloadLen, len(h))
	}

	qS := group.MulGenerator(dS)

	d := duplex.New("veil.sres")
	defer d.Zero()

	d.Absorb(qS.Encode())
	d.Absorb(qR.Encode())
	d.Absorb(nonce)
	d.Absorb(qR.Mul(dS).Encode())
	d.Cyclist(d.SqueezeKey(64))

	qE := group.MulGenerator(dE)
	c0 := d.Encrypt(qE.Encode())

	d.Absorb(qR.Mul(dE).Encode())
	c1 := d.Encrypt(h)

	k, err := hedge.Scalar(d, dS.Encode())
	if err != nil {
		return nil, fmt.Errorf("sres: %w", err)
	}
	defer k.Zero()

	i := group.MulGenerator(k)
	s0 := d.Encrypt(i.Encode())

	rBytes := d.Squeeze(32)
	r := group.ScalarFromUniformBytes(rBytes)

	s := dS.MultiplyAdd(r, k)
	x := qR.Mul(s)
	s1 := d.Encrypt(x.Encode())

	out := make([]byte, 0, HeaderLen)
	out = append(out, c0...)
	out = append(out, c1...)
	out = append(out, s0...)
	out = append(out, s1...)
	return out, nil
}

// DecryptHeader attempts to open a header encrypted with EncryptHeader,
// using receiver private key dR and the claimed sender public key qS. On
// success it returns the sender's ephemeral public key and the recovered
// header payload. On any decoding failure or authentication mismatch it
// returns ok == false; the caller MUST still treat the duplex as having
// consumed exactly len(header) bytes (DecryptHeader always reads and
// absorbs every byte of header before returning, whether or not it
// succeeds), so that header scanning in mres keeps its transcript in sync
// regardless of which attempts fail.
func DecryptHeader(dR *group.Scalar, qS *group.Point, nonce []byte, header []byte) (qE *group.Point, h []byte, ok bool, err error) {
	if len(header) != HeaderLen {
		return nil, nil, false, fmt.Errorf("sres: header must be %d bytes, got %d", HeaderLen, len(header))
	}
	c0 := header[:group.PointLen]
	c1 := header[group.PointLen : group.PointLen+HeaderPayloadLen]
	s0 := header[group.PointLen+HeaderPayloadLen : group.PointLen+HeaderPayloadLen+group.PointLen]
	s1 := header[group.PointLen+HeaderPayloadLen+group.PointLen:]

	qR := group.MulGenerator(dR)

	d := duplex.New("veil.sres")
	defer d.Zero()

	d.Absorb(qS.Encode())
	d.Absorb(qR.Encode())
	d.Absorb(nonce)
	d.Absorb(qS.Mul(dR).Encode())
	d.Cyclist(d.SqueezeKey(64))

	qEBytes := d.Decrypt(c0)
	qE, decErr := group.DecodePoint(qEBytes)

	d.Absorb(mulSafe(qE, dR))
	hOut := d.Decrypt(c1)

	iBytes := d.Decrypt(s0)
	i, iErr := group.DecodePoint(iBytes)

	rBytes := d.Squeeze(32)
	r := group.ScalarFromUniformBytes(rBytes)

	xBytes := d.Decrypt(s1)
	x, xErr := group.DecodePoint(xBytes)

	if decErr != nil || iErr != nil || xErr != nil {
		return nil, nil, false, nil
	}

	expectedX := i.Add(qS.Mul(r)).Mul(dR)
	if x.Equal(expectedX) != true {
		return nil, nil, false, nil
	}

	return qE, hOut, true, nil
}

// mulSafe multiplies p by s, tolerating a nil p (an invalid decoded point)
// by substituting the identity so the duplex transcript still advances by
// the same number of bytes regardless of whether decoding succeeded.
func mulSafe(p *group.Point, s *group.Scalar) []byte {
	if p == nil {
		return group.NewPoint().Encode()
	}
	return p.Mul(s).Encode()
}
