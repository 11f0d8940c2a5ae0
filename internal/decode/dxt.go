package decode

import (
	"encoding/binary"

	"github.com/gogpu/getex/gecore"
)

// The hardware's DXT blocks put the 2-bit index lines before the color
// references, unlike the PC layout. DXT1 blocks are 8 bytes:
//
//	0..3  index lines, one byte per row
//	4..7  the two 565 reference colors
//
// DXT3 and DXT5 blocks are 16 bytes with the color block last.

// decodeDXT decodes one compressed mip level to RGBA bytes.
func (d *Decoder) decodeDXT(st *gecore.State, level int) (rawLevel, error) {
	bufw := max(stride(st, level), 4)
	w, h := st.Width(level), st.Height(level)
	minw := min(bufw, w)

	blockBytes := 8
	if st.Format != gecore.TexFmtDXT1 {
		blockBytes = 16
	}
	blocksPerRow := bufw / 4
	blockRows := (h + 3) / 4

	src := d.mem.Bytes(st.LevelAddr[level], uint32(blocksPerRow*blockRows*blockBytes))
	if src == nil {
		return rawLevel{}, ErrBadAddress
	}
	// Blocks always write four rows, so heights 1-3 still fill a whole block
	// row in the scratch; only the logical rows are handed back.
	hAligned := (h + 3) &^ 3
	dst := grow(&d.decoded, max(bufw, w)*hAligned*4)

	for y := 0; y < h; y += 4 {
		bi := (y / 4) * blocksPerRow
		for x := 0; x < minw; x += 4 {
			block := src[bi*blockBytes:]
			base := y*bufw + x
			switch st.Format {
			case gecore.TexFmtDXT1:
				decodeDXT1Block(dst, base, bufw, block, false)
			case gecore.TexFmtDXT3:
				decodeDXT3Block(dst, base, bufw, block)
			default:
				decodeDXT5Block(dst, base, bufw, block)
			}
			bi++
		}
	}

	// Blocks are 4x4; narrower logical widths round up for the upload.
	w = (w + 3) &^ 3
	return rawLevel{pix: dst[:max(bufw, w)*h*4], format: gecore.Out8888, w: w, h: h, bufw: bufw, byteAlign: 4}, nil
}

// decodeDXT1Block expands one color block into dst at pixel offset base with
// the given pixel pitch. ignore1bitAlpha selects the four-color mode
// unconditionally, as the DXT3/5 color blocks require.
func decodeDXT1Block(dst []byte, base, pitch int, b []byte, ignore1bitAlpha bool) {
	c1 := binary.LittleEndian.Uint16(b[4:])
	c2 := binary.LittleEndian.Uint16(b[6:])

	r1 := int(gecore.Convert5To8(uint32(c1) & 0x1F))
	g1 := int(gecore.Convert6To8((uint32(c1) >> 5) & 0x3F))
	b1 := int(gecore.Convert5To8((uint32(c1) >> 11) & 0x1F))
	r2 := int(gecore.Convert5To8(uint32(c2) & 0x1F))
	g2 := int(gecore.Convert6To8((uint32(c2) >> 5) & 0x3F))
	b2 := int(gecore.Convert5To8((uint32(c2) >> 11) & 0x1F))

	var colors [4][4]byte
	colors[0] = [4]byte{byte(r1), byte(g1), byte(b1), 255}
	colors[1] = [4]byte{byte(r2), byte(g2), byte(b2), 255}
	if c1 > c2 || ignore1bitAlpha {
		// 3/8ths interpolation instead of the usual thirds, matching the
		// hardware sampler.
		eighths := func(a, b int) int {
			diff := b - a
			return (diff >> 1) - (diff >> 3)
		}
		dr, dg, db := eighths(r1, r2), eighths(g1, g2), eighths(b1, b2)
		colors[2] = [4]byte{byte(r1 + dr), byte(g1 + dg), byte(b1 + db), 255}
		colors[3] = [4]byte{byte(r2 - dr), byte(g2 - dg), byte(b2 - db), 255}
	} else {
		colors[2] = [4]byte{byte((r1 + r2 + 1) / 2), byte((g1 + g2 + 1) / 2), byte((b1 + b2 + 1) / 2), 255}
		colors[3] = [4]byte{byte(r2), byte(g2), byte(b2), 0}
	}

	for y := 0; y < 4; y++ {
		line := b[y]
		for x := 0; x < 4; x++ {
			o := (base + y*pitch + x) * 4
			copy(dst[o:o+4], colors[line&3][:])
			line >>= 2
		}
	}
}

// decodeDXT3Block expands one block with explicit 4-bit alpha.
func decodeDXT3Block(dst []byte, base, pitch int, b []byte) {
	decodeDXT1Block(dst, base, pitch, b, true)
	for y := 0; y < 4; y++ {
		line := binary.LittleEndian.Uint16(b[8+y*2:])
		for x := 0; x < 4; x++ {
			a := byte(line & 0xF)
			dst[(base+y*pitch+x)*4+3] = a | a<<4
			line >>= 4
		}
	}
}

// decodeDXT5Block expands one block with interpolated alpha.
func decodeDXT5Block(dst []byte, base, pitch int, b []byte) {
	decodeDXT1Block(dst, base, pitch, b, true)

	a1 := b[14]
	a2 := b[15]
	var alpha [8]byte
	alpha[0] = a1
	alpha[1] = a2
	if a1 > a2 {
		for n := 1; n <= 6; n++ {
			alpha[n+1] = byte(float32(a1) + float32(int(a2)-int(a1))*float32(n)/7)
		}
	} else {
		for n := 1; n <= 4; n++ {
			alpha[n+1] = byte(float32(a1) + float32(int(a2)-int(a1))*float32(n)/5)
		}
		alpha[6] = 0
		alpha[7] = 255
	}

	sel := uint64(binary.LittleEndian.Uint16(b[12:]))<<32 |
		uint64(binary.LittleEndian.Uint32(b[8:]))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dst[(base+y*pitch+x)*4+3] = alpha[sel&7]
			sel >>= 3
		}
	}
}
