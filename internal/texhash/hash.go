// Package texhash provides the change-detection hashes used by the texture
// cache: a cheap single-word probe run on every bind, a full-buffer checksum
// run when staleness is suspected, and a palette hash.
//
// Hashing is a Strategy so that a vectorized implementation can be selected
// at initialization on hosts that support it; the scalar strategy is always
// available and is the correctness reference.
package texhash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// clutSeed matches the seed the hardware tests were calibrated against.
const clutSeed = 0xC0108888

// Strategy computes the three texture hashes. Implementations must be pure:
// equal input bytes produce equal values across calls.
type Strategy interface {
	// Mini hashes the first word of a texture, the per-bind staleness probe.
	Mini(p []byte) uint32

	// Full checksums an entire source buffer.
	Full(p []byte) uint32

	// Clut hashes the loaded palette bytes.
	Clut(p []byte) uint32
}

// Scalar is the portable reference strategy.
type Scalar struct{}

// Mini returns the first little-endian word of p. Shorter inputs are
// zero-extended.
func (Scalar) Mini(p []byte) uint32 {
	if len(p) >= 4 {
		return binary.LittleEndian.Uint32(p)
	}
	var v uint32
	for i, b := range p {
		v |= uint32(b) << (8 * i)
	}
	return v
}

// Full is a word-wise add/xor checksum over p.
func (Scalar) Full(p []byte) uint32 {
	var check uint32
	i := 0
	for ; i+8 <= len(p); i += 8 {
		check += binary.LittleEndian.Uint32(p[i:])
		check ^= binary.LittleEndian.Uint32(p[i+4:])
	}
	for ; i+4 <= len(p); i += 4 {
		check += binary.LittleEndian.Uint32(p[i:])
	}
	for shift := 0; i < len(p); i++ {
		check += uint32(p[i]) << shift
		shift += 8
	}
	return check
}

// Clut hashes p with xxhash folded to 32 bits.
func (Scalar) Clut(p []byte) uint32 {
	d := xxhash.NewWithSeed(clutSeed)
	_, _ = d.Write(p)
	s := d.Sum64()
	return uint32(s) ^ uint32(s>>32)
}

// Best returns the fastest strategy supported by the host. Today that is
// the scalar strategy on every platform; vectorized strategies plug in here
// without changing callers.
func Best() Strategy {
	return Scalar{}
}
