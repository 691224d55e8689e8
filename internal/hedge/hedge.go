// Package hedge implements veil's hedged-ephemeral derivation: a way to draw
// ephemeral scalars that stay unique even if the system CSPRNG is silently
// broken, while still benefiting from fresh entropy when it isn't.
package hedge

import (
	"crypto/rand"
	"fmt"

	"github.com/drand/veil/group"
	"github.com/drand/veil/internal/duplex"
)

// randomBytesLen is the amount of fresh CSPRNG output mixed into every
// hedge, and squeezeLen is the width of the squeeze used to derive the
// resulting scalar before reduction mod q.
const (
	randomBytesLen = 64
	squeezeLen     = 48
)

// Scalar clones d (the construction's in-flight duplex), absorbs the secret
// bytes secret and fresh randomness from the system CSPRNG into the clone,
// squeezes 48 bytes (SqueezeKey if d is unkeyed, Squeeze if it is keyed),
// and reduces them mod q. The clone is zeroized before
// returning; d itself is left untouched.
//
// Because the clone starts from d's current transcript and absorbs the
// caller's secret, the result is unique per-message even if the CSPRNG
// returns all zeros: the duplex's own transcript (which differs per
// construction and, via prior Absorb calls, per message) still drives the
// output.
func Scalar(d *duplex.Duplex, secret []byte) (*group.Scalar, error) {
	clone := d.Clone()
	defer clone.Zero()

	clone.Absorb(secret)

	r := make([]byte, randomBytesLen)
	if _, err := rand.Read(r); err != nil {
		return nil, fmt.Errorf("hedge: reading system randomness: %w", err)
	}
	clone.Absorb(r)

	var out []byte
	if clone.Mode() == duplex.Keyed {
		out = clone.Squeeze(squeezeLen)
	} else {
		out = clone.SqueezeKey(squeezeLen)
	}
	return group.ScalarFromUniformBytes(out), nil
}
