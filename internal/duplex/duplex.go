// Package duplex implements the cryptographic duplex construction used by
// every veil protocol: a single Keccak-p[1600,10] permutation wrapped in a
// Xoodyak-style Cyclist interface offering unkeyed hashing (Absorb,
// SqueezeKey) and keyed AEAD/PRF operations (Absorb, Encrypt, Decrypt,
// Squeeze, Ratchet). Every top-level veil construction (pbenc, schnorr,
// sres, mres) is expressed purely as a sequence of calls on a Duplex.
package duplex

import "github.com/drand/veil/internal/keccakp"

const stateLen = 200

// rate, in bytes, for each phase of operation. The keyed input/output rates
// differ, matching the Cyclist construction: keyed mode absorbs at a 196-byte
// input rate and encrypts/squeezes at a 176-byte output rate, while unkeyed
// mode (Absorb and SqueezeKey) uses a 168-byte hash rate.
const (
	unkeyedHashRate = (1600 - 256) / 8
	keyedInputRate  = (1600 - 32) / 8
	keyedOutputRate = (1600 - 192) / 8
	ratchetLen      = 16
)

// Domain-separation tags applied once per logical operation, at the block
// boundary that finalizes it. Each operation category gets its own tag so
// that transcripts for distinct operation sequences can never collide.
const (
	tagAbsorbHash byte = 0x01
	tagAbsorbKey  byte = 0x02
	tagCrypt      byte = 0x03
	tagSqueeze    byte = 0x04
	tagRatchet    byte = 0x05
)

// Mode distinguishes the two Cyclist phases.
type Mode int

const (
	Unkeyed Mode = iota
	Keyed
)

// Duplex is the sole stateful primitive in veil: a 200-byte sponge state plus
// a small cursor tracking how much of the current rate block has been filled
// by the in-progress (not yet finalized) absorb. A Duplex is exclusively
// owned by the construction that created it; the only legitimate way to
// obtain a second one is Clone, used by hedging.
type Duplex struct {
	state [stateLen]byte
	mode  Mode

	// absorbOffset/absorbTag track an Absorb call that has filled zero or
	// more full rate blocks (each already permuted) but has not yet been
	// finalized with padding. This lets repeated Absorb calls over chunks
	// of one logical message (as schnorr and mres do while streaming a
	// reader) produce the exact same transcript as a single call over the
	// concatenation, since finalization is deferred until a differently
	// tagged operation begins.
	absorbing    bool
	absorbOffset int
	absorbTag    byte
}

// New creates a Duplex and immediately absorbs the ASCII domain-separation
// string ds, exactly as Init(ds) is specified: zero state, then Absorb(ds).
func New(ds string) *Duplex {
	d := &Duplex{mode: Unkeyed}
	d.Absorb([]byte(ds))
	return d
}

// Mode reports whether the duplex is in unkeyed or keyed mode.
func (d *Duplex) Mode() Mode { return d.mode }

func (d *Duplex) rate() int {
	if d.mode == Keyed {
		return keyedInputRate
	}
	return unkeyedHashRate
}

// Absorb injects x into the duplex state. Valid in both modes. Consecutive
// calls are equivalent to one call over the concatenation: full blocks are
// permuted immediately, but the trailing partial block is left open until a
// differently tagged operation forces it closed.
func (d *Duplex) Absorb(x []byte) {
	tag := tagAbsorbHash
	if d.mode == Keyed {
		tag = tagAbsorbKey
	}
	if d.absorbing && d.absorbTag != tag {
		d.finalizeAbsorb()
	}
	d.absorbing = true
	d.absorbTag = tag

	rate := d.rate()
	off := d.absorbOffset
	for len(x) > 0 {
		n := rate - off
		if n > len(x) {
			n = len(x)
		}
		for i := 0; i < n; i++ {
			d.state[off+i] ^= x[i]
		}
		off += n
		x = x[n:]
		if off == rate {
			d.permuteBlock(tag)
			off = 0
		}
	}
	d.absorbOffset = off
}

// finalizeAbsorb closes an in-progress Absorb call by XORing the terminating
// 0x01 after the last absorbed byte and 0x80 at the end of the rate block,
// then permuting. It is a no-op if no Absorb is pending. Every other
// operation calls this first, since the duplex can only be doing one thing
// (absorbing, encrypting, squeezing...) at a time.
func (d *Duplex) finalizeAbsorb() {
	if !d.absorbing {
		return
	}
	rate := d.rate()
	d.state[d.absorbOffset] ^= 0x01
	d.state[rate-1] ^= 0x80
	d.permuteBlock(d.absorbTag)
	d.absorbing = false
	d.absorbOffset = 0
}

func (d *Duplex) permuteBlock(tag byte) {
	d.state[stateLen-1] ^= tag
	keccakp.Permute(&d.state)
}

// SqueezeKey extracts n bytes of unkeyed-mode PRF output, used to seed keyed
// mode. It is only valid while the duplex is unkeyed. Each 32-byte
// (capacity-sized) chunk costs one permutation, matching the sponge
// squeezing phase: permute, read the first up-to-32 bytes of state, repeat
// until n bytes have been produced.
func (d *Duplex) SqueezeKey(n int) []byte {
	if d.mode != Unkeyed {
		panic("duplex: SqueezeKey called in keyed mode")
	}
	d.finalizeAbsorb()
	out := make([]byte, 0, n)
	for len(out) < n {
		keccakp.Permute(&d.state)
		take := 32
		if rem := n - len(out); rem < take {
			take = rem
		}
		out = append(out, d.state[:take]...)
	}
	return out
}

// Cyclist transitions the duplex from unkeyed to keyed mode by absorbing key
// under a distinct domain tag and resetting the rate/offset bookkeeping for
// keyed-mode operation.
func (d *Duplex) Cyclist(key []byte) {
	if d.mode != Unkeyed {
		panic("duplex: Cyclist called while already keyed")
	}
	d.finalizeAbsorb()
	d.mode = Keyed
	d.Absorb(key)
	d.finalizeAbsorb()
}

// Encrypt XORs p with the keystream drawn from the duplex, returning the
// ciphertext. The ciphertext (not the plaintext) is fed back into the state,
// so that every subsequent operation's transcript depends on what was
// actually transmitted.
func (d *Duplex) Encrypt(p []byte) []byte {
	d.finalizeAbsorb()
	c := make([]byte, len(p))
	d.crypt(p, c, true)
	return c
}

// Decrypt is Encrypt's inverse: it recovers plaintext from ciphertext while
// feeding the same ciphertext bytes forward into the state, so the state
// evolves identically regardless of which side of the channel calls it.
func (d *Duplex) Decrypt(c []byte) []byte {
	d.finalizeAbsorb()
	p := make([]byte, len(c))
	d.crypt(c, p, false)
	return p
}

// crypt implements both Encrypt and Decrypt: in is the input and out is the
// XOR of in with the keystream. forward == true means in is plaintext
// (Encrypt) and out, the ciphertext, is fed forward into the state;
// forward == false means in is ciphertext (Decrypt) and in is fed forward.
func (d *Duplex) crypt(in, out []byte, forward bool) {
	if d.mode != Keyed {
		panic("duplex: Encrypt/Decrypt called in unkeyed mode")
	}
	rate := keyedOutputRate
	off := 0
	for i := range in {
		if off == rate {
			d.permuteBlock(tagCrypt)
			off = 0
		}
		ks := d.state[off]
		out[i] = in[i] ^ ks
		if forward {
			d.state[off] = out[i]
		} else {
			d.state[off] = in[i]
		}
		off++
	}
	d.state[off] ^= 0x01
	d.state[rate-1] ^= 0x80
	d.permuteBlock(tagCrypt)
}

// Squeeze produces n bytes of keyed-mode PRF output. It advances the state
// exactly as Encrypt does on an all-zero input of the same length, using the
// dedicated "output" domain tag so transcripts never overlap with Encrypt.
func (d *Duplex) Squeeze(n int) []byte {
	if d.mode != Keyed {
		panic("duplex: Squeeze called in unkeyed mode")
	}
	d.finalizeAbsorb()
	rate := keyedOutputRate
	out := make([]byte, n)
	off := 0
	for i := 0; i < n; i++ {
		if off == rate {
			d.permuteBlock(tagSqueeze)
			off = 0
		}
		out[i] = d.state[off]
		off++
	}
	d.state[off] ^= 0x01
	d.state[rate-1] ^= 0x80
	d.permuteBlock(tagSqueeze)
	return out
}

// Ratchet overwrites the first 16 bytes of state with zero and permutes,
// irreversibly forgetting everything absorbed or produced so far. Used where
// forward secrecy across message boundaries is required.
func (d *Duplex) Ratchet() {
	d.finalizeAbsorb()
	for i := 0; i < ratchetLen; i++ {
		d.state[i] = 0
	}
	d.permuteBlock(tagRatchet)
}

// Clone returns a byte-exact, independent copy of the duplex. Its sole
// sanctioned caller is internal/hedge, which clones the ambient duplex to
// derive hedged ephemeral scalars without disturbing the caller's transcript.
func (d *Duplex) Clone() *Duplex {
	clone := *d
	return &clone
}

// Zero overwrites the duplex state with zeros. Callers must invoke it on
// every exit path of a top-level construction (including Hedge's internal
// clone) once the duplex is no longer needed.
func (d *Duplex) Zero() {
	for i := range d.state {
		d.state[i] = 0
	}
	d.absorbing = false
	d.absorbOffset = 0
}
