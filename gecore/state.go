package gecore

// MaxMipLevels is the number of mip levels the hardware registers describe.
const MaxMipLevels = 8

// State is an immutable snapshot of the texture-related register state at
// the moment of a bind. The caller assembles it from the emulated register
// file; the cache and decoder never read registers directly.
type State struct {
	// LevelAddr holds the resolved byte address of each mip level in the
	// emulated address space.
	LevelAddr [MaxMipLevels]uint32

	// LevelStride holds the storage width of each level in texels. This is
	// the hardware "buffer width" and may exceed the logical width.
	LevelStride [MaxMipLevels]uint32

	// LevelDim holds the packed dimension code of each level: bits 0-3 are
	// log2 of the width, bits 8-11 log2 of the height.
	LevelDim [MaxMipLevels]uint16

	// Format is the texture pixel-format code.
	Format TexFormat

	// MaxLevel is the highest mip level the registers describe (0 = no
	// mipmaps).
	MaxLevel int

	// Swizzled reports whether the source bytes use the tiled layout.
	Swizzled bool

	// MipShareClut reports whether all mip levels share one palette. When
	// false, 4-bit indexed levels each use a 16-entry slice of the CLUT.
	MipShareClut bool

	// ClutFormat is the palette-entry format.
	ClutFormat ClutFormat

	// ClutFormatRaw is the full palette-format register value. It changes
	// whenever any palette parameter changes, so it doubles as the palette
	// generation tag and is folded into cache keys.
	ClutFormatRaw uint32

	// ClutIndexShift, ClutIndexMask and ClutIndexBase are the hardware index
	// transform: index' = ((index >> shift) & mask) | base.
	ClutIndexShift uint8
	ClutIndexMask  uint8
	ClutIndexBase  uint32

	// MinFilter is the 3-bit minification code: bit 0 selects linear, bit 2
	// enables mipmaps and bit 1 selects linear filtering between levels.
	MinFilter uint8

	// MagFilter is the 1-bit magnification code (1 = linear).
	MagFilter uint8

	// ClampS and ClampT select clamp-to-edge addressing per axis; otherwise
	// the axis repeats.
	ClampS, ClampT bool

	// MipEnabled reports whether the level registers request mipmapping at
	// all (the "texlevel" register is not fixed at level 0).
	MipEnabled bool

	// LODBias is the signed level-of-detail bias in levels.
	LODBias float32
}

// Width returns the logical texel width of a mip level.
func (s *State) Width(level int) int {
	return 1 << (s.LevelDim[level] & 0xF)
}

// Height returns the logical texel height of a mip level.
func (s *State) Height(level int) int {
	return 1 << ((s.LevelDim[level] >> 8) & 0xF)
}

// Dim returns the packed dimension code of a level, masked to the bits that
// matter for identity checks.
func (s *State) Dim(level int) uint16 {
	return s.LevelDim[level] & 0xF0F
}

// ClutIndexSimple reports whether the index transform is the identity for
// byte-sized indices, allowing the direct palette-lookup fast path.
func (s *State) ClutIndexSimple() bool {
	return s.ClutIndexShift == 0 && s.ClutIndexMask == 0xFF && s.ClutIndexBase == 0
}

// TransformClutIndex applies the hardware index remapping.
func (s *State) TransformClutIndex(index uint32) uint32 {
	return ((index >> s.ClutIndexShift) & uint32(s.ClutIndexMask)) | s.ClutIndexBase
}

// Kernel-region addresses are allowed a wider stride than user memory.
const (
	kernelBase = 0x08000000
	kernelEnd  = 0x08400000
)

// MaskStride masks a raw stride register value to the bits the hardware
// honors for the given texture address.
func MaskStride(addr, raw uint32) uint32 {
	if addr >= kernelBase && addr < kernelEnd {
		return raw & 0x1FFF
	}
	return raw & 0x7FF
}
