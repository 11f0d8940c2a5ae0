package getex

import "github.com/gogpu/getex/gecore"

// reliability is the validation state of a cache entry. It governs how
// aggressively the entry is re-validated on bind.
type reliability uint8

const (
	// statusHashing entries verify with the usual mini-hash plus backoff
	// full-hash schedule.
	statusHashing reliability = iota

	// statusReliable entries skip full hashing until explicitly invalidated.
	statusReliable

	// statusUnreliable entries recently failed a hash and are fully
	// rehashed on every bind until they regain trust.
	statusUnreliable
)

// entry is one cached texture: either a decoded backend image the entry
// owns, or a non-owning alias of a live render target. Never both; attaching
// a target destroys the owned image.
type entry struct {
	key uint64

	// Identity, compared on every bind.
	addr     uint32
	bufw     uint32
	format   gecore.TexFormat
	dim      uint16
	maxLevel int

	// Validation state.
	status           reliability
	miniHash         uint32
	fullHash         uint32
	clutHash         uint32
	sizeInRAM        uint32
	numFrames        int
	nextFullHash     int // countdown of frames until the next scheduled full hash
	invalidHint      int // soft invalidation pressure; -1 marks an invalid alias
	numInvalidated   int
	lastFrame        uint32
	invalidatedFrame uint32 // last frame an Invalidate call hit this entry

	// Presentation state.
	alpha        gecore.AlphaStatus
	sampler      SamplerState
	samplerValid bool

	image  ImageID
	target *RenderTarget
}

// matches reports whether the entry describes the same texture shape as the
// incoming register state. Palette identity is part of the cache key, so it
// is not rechecked here.
func (e *entry) matches(dim uint16, format gecore.TexFormat, maxLevel int) bool {
	return e.dim == dim && e.format == format && e.maxLevel == maxLevel
}
