// Package decode reconstructs linear pixel buffers from raw texture bytes in
// the emulated address space, driven by a gecore.State register snapshot.
//
// All decoding funnels through one Decoder instance whose scratch buffers are
// reused across calls. Only one decode is ever in flight under the cache's
// single-threaded contract, so the Decoder is deliberately not reentrant.
package decode

import (
	"errors"

	"github.com/gogpu/getex/gecore"
	"github.com/gogpu/getex/internal/texhash"
)

// Decode errors.
var (
	// ErrBadAddress is returned when a level's source range is unmapped.
	ErrBadAddress = errors.New("decode: texture address out of range")

	// ErrNoBuffer is returned when a decode path produced no pixels. This is
	// an internal contract violation; callers must not upload after it.
	ErrNoBuffer = errors.New("decode: decoder produced no buffer")
)

// Level is one decoded mip level in a uniform output layout. Pix aliases the
// Decoder's scratch arena (or, for the uncompressed 32-bit fast path, the
// emulated memory itself) and is only valid until the next decode call.
type Level struct {
	Pix       []byte
	Format    gecore.OutFormat
	Width     int
	Height    int
	ByteAlign int
}

// rawLevel is a decoded level before row repacking, still laid out with
// bufw texels per storage row.
type rawLevel struct {
	pix       []byte
	format    gecore.OutFormat
	w, h      int
	bufw      int
	byteAlign int
	shared    bool // pix aliases emulated memory; never repack in place
}

// Decoder turns source texture bytes into displayable buffers.
type Decoder struct {
	mem  gecore.Memory
	hash texhash.Strategy

	// Scratch arena. Each buffer has a single producer stage: unswizzled
	// holds tile-reordered source bytes, decoded holds format-decoder
	// output, rearranged holds rows regrown during repacking.
	unswizzled []byte
	decoded    []byte
	rearranged []byte

	clut clutState
}

// NewDecoder creates a decoder reading from mem. The hash strategy is used
// for palette change detection.
func NewDecoder(mem gecore.Memory, hash texhash.Strategy) *Decoder {
	d := &Decoder{mem: mem, hash: hash}
	d.clut.init()
	return d
}

// decodeFunc decodes one mip level of one format family.
type decodeFunc func(d *Decoder, st *gecore.State, level int) (rawLevel, error)

// decoders dispatches on the hardware format code.
var decoders = [...]decodeFunc{
	gecore.TexFmt5650:   (*Decoder).decodeDirect16,
	gecore.TexFmt5551:   (*Decoder).decodeDirect16,
	gecore.TexFmt4444:   (*Decoder).decodeDirect16,
	gecore.TexFmt8888:   (*Decoder).decodeDirect32,
	gecore.TexFmtClut4:  (*Decoder).decodeClut4,
	gecore.TexFmtClut8:  (*Decoder).decodeIndexed,
	gecore.TexFmtClut16: (*Decoder).decodeIndexed,
	gecore.TexFmtClut32: (*Decoder).decodeIndexed,
	gecore.TexFmtDXT1:   (*Decoder).decodeDXT,
	gecore.TexFmtDXT3:   (*Decoder).decodeDXT,
	gecore.TexFmtDXT5:   (*Decoder).decodeDXT,
}

// DecodeLevel decodes one mip level into a uniform output layout, running
// the unswizzle, palette and repack stages the format requires.
func (d *Decoder) DecodeLevel(st *gecore.State, level int) (Level, error) {
	if !st.Format.Valid() {
		return Level{}, ErrNoBuffer
	}
	if st.Format.Indexed() {
		d.ensureClut(st)
	}
	raw, err := decoders[st.Format](d, st, level)
	if err != nil {
		return Level{}, err
	}
	if len(raw.pix) == 0 {
		return Level{}, ErrNoBuffer
	}
	pix := d.repackRows(raw)
	return Level{
		Pix:       pix,
		Format:    raw.format,
		Width:     raw.w,
		Height:    raw.h,
		ByteAlign: raw.byteAlign,
	}, nil
}

// repackRows converts a buffer laid out with bufw texels per row into one
// with w texels per row, simulating a non-unit row length for the backend.
// Shrinking moves rows in place; growing copies into the rearrange buffer.
func (d *Decoder) repackRows(raw rawLevel) []byte {
	if raw.w == raw.bufw {
		return raw.pix
	}
	bpp := raw.format.BytesPerPixel()
	inRow := raw.bufw * bpp
	outRow := raw.w * bpp
	if raw.w < raw.bufw && !raw.shared {
		for y := 1; y < raw.h; y++ {
			copy(raw.pix[y*outRow:(y+1)*outRow], raw.pix[y*inRow:])
		}
		return raw.pix[:raw.h*outRow]
	}
	dst := grow(&d.rearranged, raw.h*outRow)
	for y := 0; y < raw.h; y++ {
		row := raw.pix[y*inRow:]
		if len(row) > outRow {
			row = row[:outRow]
		}
		copy(dst[y*outRow:(y+1)*outRow], row)
	}
	return dst
}

func (d *Decoder) decodeDirect16(st *gecore.State, level int) (rawLevel, error) {
	bufw := max(stride(st, level), 8)
	w, h := st.Width(level), st.Height(level)
	n := bufw * h

	var out gecore.OutFormat
	switch st.Format {
	case gecore.TexFmt4444:
		out = gecore.Out4444
	case gecore.TexFmt5551:
		out = gecore.Out5551
	default:
		out = gecore.Out565
	}

	src, err := d.levelSource(st, level, bufw*2, h, uint32(n*2))
	if err != nil {
		return rawLevel{}, err
	}
	dst := grow(&d.decoded, n*2)
	convertColors(dst, src, out, n)
	return rawLevel{pix: dst, format: out, w: w, h: h, bufw: bufw, byteAlign: 2}, nil
}

func (d *Decoder) decodeDirect32(st *gecore.State, level int) (rawLevel, error) {
	bufw := max(stride(st, level), 4)
	w, h := st.Width(level), st.Height(level)
	n := bufw * h

	if !st.Swizzled {
		src := d.mem.Bytes(st.LevelAddr[level], uint32(n*4))
		if src == nil {
			return rawLevel{}, ErrBadAddress
		}
		if w == bufw {
			// Already in the output channel order and densely packed: hand
			// the emulated memory straight to the upload path.
			return rawLevel{pix: src, format: gecore.Out8888, w: w, h: h, bufw: bufw, byteAlign: 4, shared: true}, nil
		}
		dst := grow(&d.decoded, n*4)
		copy(dst, src)
		return rawLevel{pix: dst, format: gecore.Out8888, w: w, h: h, bufw: bufw, byteAlign: 4}, nil
	}

	pix, err := d.unswizzle(st.LevelAddr[level], bufw*4, h)
	if err != nil {
		return rawLevel{}, err
	}
	return rawLevel{pix: pix, format: gecore.Out8888, w: w, h: h, bufw: bufw, byteAlign: 4}, nil
}

func (d *Decoder) decodeClut4(st *gecore.State, level int) (rawLevel, error) {
	// Keep rows at least 16 source bytes wide (32 texels at 4bpp).
	bufw := max(stride(st, level), 32)
	w, h := st.Width(level), st.Height(level)
	n := bufw * h

	idx, err := d.levelSource(st, level, bufw/2, h, uint32(n/2))
	if err != nil {
		return rawLevel{}, err
	}

	// Mip levels may each address their own 16-entry slice of the CLUT.
	clutOff := 0
	if !st.MipShareClut {
		clutOff = level * 16
	}

	if st.ClutFormat == gecore.ClutFmt8888 {
		dst := grow(&d.decoded, n*4)
		deindex4To32(dst, idx, n, d.clut.entries32[clutOff:], st)
		return rawLevel{pix: dst, format: gecore.Out8888, w: w, h: h, bufw: bufw, byteAlign: 4}, nil
	}

	dst := grow(&d.decoded, n*2)
	if d.clut.alphaLinear && st.MipShareClut {
		deindex4AlphaLinear(dst, idx, n, d.clut.alphaLinearColor)
	} else {
		deindex4To16(dst, idx, n, d.clut.entries16[clutOff:], st)
	}
	return rawLevel{pix: dst, format: st.ClutFormat.OutFormat(), w: w, h: h, bufw: bufw, byteAlign: 2}, nil
}

func (d *Decoder) decodeIndexed(st *gecore.State, level int) (rawLevel, error) {
	var bpi, minBufw int
	switch st.Format {
	case gecore.TexFmtClut8:
		bpi, minBufw = 1, 8
	case gecore.TexFmtClut16:
		bpi, minBufw = 2, 8
	default:
		bpi, minBufw = 4, 4
	}
	bufw := max(stride(st, level), minBufw)
	w, h := st.Width(level), st.Height(level)
	n := bufw * h

	idx, err := d.levelSource(st, level, bufw*bpi, h, uint32(n*bpi))
	if err != nil {
		return rawLevel{}, err
	}

	out := st.ClutFormat.OutFormat()
	if st.ClutFormat == gecore.ClutFmt8888 {
		dst := grow(&d.decoded, n*4)
		deindexTo32(dst, idx, bpi, n, d.clut.entries32, st)
		return rawLevel{pix: dst, format: out, w: w, h: h, bufw: bufw, byteAlign: 4}, nil
	}
	dst := grow(&d.decoded, n*2)
	deindexTo16(dst, idx, bpi, n, d.clut.entries16, st)
	return rawLevel{pix: dst, format: out, w: w, h: h, bufw: bufw, byteAlign: 2}, nil
}

// levelSource returns the level's source bytes in linear order, running the
// unswizzle pass when the register state asks for the tiled layout.
func (d *Decoder) levelSource(st *gecore.State, level, rowBytes, h int, need uint32) ([]byte, error) {
	if st.Swizzled {
		return d.unswizzle(st.LevelAddr[level], rowBytes, h)
	}
	src := d.mem.Bytes(st.LevelAddr[level], need)
	if src == nil {
		return nil, ErrBadAddress
	}
	return src, nil
}

// stride returns a level's storage width in texels, masked to the bits the
// hardware honors for its address.
func stride(st *gecore.State, level int) int {
	return int(gecore.MaskStride(st.LevelAddr[level], st.LevelStride[level]))
}

// grow resizes a scratch buffer to n bytes, reusing capacity.
func grow(buf *[]byte, n int) []byte {
	if cap(*buf) < n {
		*buf = make([]byte, n)
	}
	*buf = (*buf)[:n]
	return *buf
}
