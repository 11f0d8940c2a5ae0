package gecore

// TexFormat is the hardware texture pixel-format code.
type TexFormat uint8

const (
	// TexFmt5650 is direct 16-bit color, 5-6-5 channel bits, no alpha.
	TexFmt5650 TexFormat = iota

	// TexFmt5551 is direct 16-bit color with a 1-bit alpha channel.
	TexFmt5551

	// TexFmt4444 is direct 16-bit color with 4 bits per channel.
	TexFmt4444

	// TexFmt8888 is direct 32-bit color, 8 bits per channel.
	TexFmt8888

	// TexFmtClut4 is 4-bit indexed color (two pixels per byte).
	TexFmtClut4

	// TexFmtClut8 is 8-bit indexed color.
	TexFmtClut8

	// TexFmtClut16 is 16-bit indexed color.
	TexFmtClut16

	// TexFmtClut32 is 32-bit indexed color.
	TexFmtClut32

	// TexFmtDXT1 is block-compressed color, 4x4 blocks, 4 bits per pixel.
	TexFmtDXT1

	// TexFmtDXT3 adds a 4-bit explicit alpha plane to DXT1 color blocks.
	TexFmtDXT3

	// TexFmtDXT5 adds an interpolated 3-bit alpha plane to DXT1 color blocks.
	TexFmtDXT5

	texFmtCount
)

// bitsPerPixel indexes TexFormat codes, including the invalid tail of the
// 4-bit register field.
var bitsPerPixel = [16]uint32{
	16, 16, 16, 32, // 5650, 5551, 4444, 8888
	4, 8, 16, 32, // CLUT4..CLUT32
	4, 8, 8, // DXT1, DXT3, DXT5
	0, 0, 0, 0, 0,
}

// Valid reports whether f is a defined hardware format code.
func (f TexFormat) Valid() bool {
	return f < texFmtCount
}

// Indexed reports whether f is a paletted (CLUT) format.
func (f TexFormat) Indexed() bool {
	return f >= TexFmtClut4 && f <= TexFmtClut32
}

// Compressed reports whether f is a block-compressed format.
func (f TexFormat) Compressed() bool {
	return f >= TexFmtDXT1 && f <= TexFmtDXT5
}

// BitsPerPixel returns the storage density of f. Invalid codes return 0.
func (f TexFormat) BitsPerPixel() uint32 {
	return bitsPerPixel[f&0xF]
}

// String returns the register-documentation name of the format.
func (f TexFormat) String() string {
	switch f {
	case TexFmt5650:
		return "5650"
	case TexFmt5551:
		return "5551"
	case TexFmt4444:
		return "4444"
	case TexFmt8888:
		return "8888"
	case TexFmtClut4:
		return "CLUT4"
	case TexFmtClut8:
		return "CLUT8"
	case TexFmtClut16:
		return "CLUT16"
	case TexFmtClut32:
		return "CLUT32"
	case TexFmtDXT1:
		return "DXT1"
	case TexFmtDXT3:
		return "DXT3"
	case TexFmtDXT5:
		return "DXT5"
	default:
		return "invalid"
	}
}

// ClutFormat is the hardware palette-entry format code.
type ClutFormat uint8

const (
	// ClutFmt5650 stores 16-bit palette entries without alpha.
	ClutFmt5650 ClutFormat = iota

	// ClutFmt5551 stores 16-bit palette entries with 1-bit alpha.
	ClutFmt5551

	// ClutFmt4444 stores 16-bit palette entries with 4-bit alpha.
	ClutFmt4444

	// ClutFmt8888 stores 32-bit palette entries.
	ClutFmt8888
)

// EntryBytes returns the storage size of one palette entry.
func (f ClutFormat) EntryBytes() uint32 {
	if f == ClutFmt8888 {
		return 4
	}
	return 2
}

// OutFormat returns the uniform output layout produced when decoding
// through a palette of this format.
func (f ClutFormat) OutFormat() OutFormat {
	switch f {
	case ClutFmt5650:
		return Out565
	case ClutFmt5551:
		return Out5551
	case ClutFmt4444:
		return Out4444
	default:
		return Out8888
	}
}

// OutFormat is one of the uniform pixel layouts the decoder hands to the
// backend. 16-bit layouts are packed RGBA with red in the high bits; Out8888
// is byte order R, G, B, A.
type OutFormat uint8

const (
	// Out4444 is packed 16-bit R4 G4 B4 A4.
	Out4444 OutFormat = iota

	// Out5551 is packed 16-bit R5 G5 B5 A1.
	Out5551

	// Out565 is packed 16-bit R5 G6 B5, fully opaque.
	Out565

	// Out8888 is 32-bit RGBA, 8 bits per channel.
	Out8888
)

// BytesPerPixel returns the storage size of one output pixel.
func (f OutFormat) BytesPerPixel() int {
	if f == Out8888 {
		return 4
	}
	return 2
}

// ByteAlign returns the row byte alignment the backend should assume.
func (f OutFormat) ByteAlign() int {
	if f == Out8888 {
		return 4
	}
	return 2
}

// HasAlpha reports whether the layout carries alpha bits at all.
func (f OutFormat) HasAlpha() bool {
	return f != Out565
}

// String returns a short name for the layout.
func (f OutFormat) String() string {
	switch f {
	case Out4444:
		return "RGBA4444"
	case Out5551:
		return "RGBA5551"
	case Out565:
		return "RGB565"
	default:
		return "RGBA8888"
	}
}

// BufFormat is the color format of a framebuffer / render target. The codes
// coincide with the direct-color TexFormat codes.
type BufFormat uint8

const (
	// BufFmt5650 is a 16-bit 5-6-5 color buffer.
	BufFmt5650 BufFormat = iota

	// BufFmt5551 is a 16-bit color buffer with 1-bit alpha.
	BufFmt5551

	// BufFmt4444 is a 16-bit color buffer with 4-bit alpha.
	BufFmt4444

	// BufFmt8888 is a 32-bit color buffer.
	BufFmt8888
)

// BytesPerPixel returns the storage size of one buffer pixel.
func (b BufFormat) BytesPerPixel() int {
	if b == BufFmt8888 {
		return 4
	}
	return 2
}

// MatchesTexFormat reports whether a texture of format t reads a buffer of
// format b without reinterpretation.
func (b BufFormat) MatchesTexFormat(t TexFormat) bool {
	return uint8(b) == uint8(t)
}

// CompatTexFormat reports whether a texture of format t reads a buffer of
// format b at the same pixel width, allowing indexed reinterpretation: CLUT32
// over 32-bit buffers, CLUT16 over 16-bit ones.
func (b BufFormat) CompatTexFormat(t TexFormat) bool {
	if b.MatchesTexFormat(t) {
		return true
	}
	if b == BufFmt8888 {
		return t == TexFmtClut32
	}
	return t == TexFmtClut16
}

// AlphaStatus classifies the alpha channel of a decoded texture.
type AlphaStatus uint8

const (
	// AlphaUnknown means partial alpha values may be present.
	AlphaUnknown AlphaStatus = iota

	// AlphaFull means every pixel is fully opaque.
	AlphaFull

	// AlphaSimple means every pixel is either fully opaque or fully
	// transparent.
	AlphaSimple
)

// String returns a short name for the classification.
func (a AlphaStatus) String() string {
	switch a {
	case AlphaFull:
		return "full"
	case AlphaSimple:
		return "simple"
	default:
		return "unknown"
	}
}
