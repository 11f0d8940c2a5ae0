package decode

// Swizzled textures are stored as 16x8-byte tiles laid out left to right,
// then top to bottom. unswizzle linearizes rowBytes*h bytes starting at addr
// into the unswizzle scratch buffer.
//
// Rows narrower than a tile interleave with their horizontal neighbours
// inside each tile, so the narrow cases pick the surviving byte runs out of
// consecutive tiles by hand.
func (d *Decoder) unswizzle(addr uint32, rowBytes, h int) ([]byte, error) {
	tileRows := (h + 7) / 8
	if tileRows == 0 {
		tileRows = 1
	}
	size := rowBytes * tileRows * 8
	// Narrow rows still occupy full 16-byte-wide tiles in memory.
	srcSize := size
	if rowBytes < 16 {
		srcSize = 16 * tileRows * 8
	}
	src, err := d.tileSource(addr, uint32(srcSize))
	if err != nil {
		return nil, err
	}
	dst := grow(&d.unswizzled, size)

	switch {
	case rowBytes >= 16:
		pitch := rowBytes * 8
		tiles := rowBytes / 16
		s := 0
		for by := 0; by < tileRows; by++ {
			base := by * pitch
			for bx := 0; bx < tiles; bx++ {
				o := base + bx*16
				for row := 0; row < 8; row++ {
					copy(dst[o:o+16], src[s:s+16])
					s += 16
					o += rowBytes
				}
			}
		}
	case rowBytes == 8:
		s := 0
		o := 0
		for by := 0; by < tileRows; by++ {
			for row := 0; row < 8; row++ {
				copy(dst[o:o+8], src[s:s+8])
				s += 16
				o += 8
			}
		}
	case rowBytes == 4:
		s := 0
		o := 0
		for by := 0; by < tileRows; by++ {
			for row := 0; row < 8; row++ {
				copy(dst[o:o+4], src[s:s+4])
				s += 16
				o += 4
			}
		}
	case rowBytes == 2:
		// Two rows survive per 32 source bytes.
		s := 0
		for o := 0; o < size; o += 4 {
			dst[o] = src[s]
			dst[o+1] = src[s+1]
			dst[o+2] = src[s+16]
			dst[o+3] = src[s+17]
			s += 32
		}
	case rowBytes == 1:
		// Four rows survive per 64 source bytes.
		s := 0
		for o := 0; o < size; o += 4 {
			dst[o] = src[s]
			dst[o+1] = src[s+16]
			dst[o+2] = src[s+32]
			dst[o+3] = src[s+48]
			s += 64
		}
	}
	return dst, nil
}

func (d *Decoder) tileSource(addr uint32, size uint32) ([]byte, error) {
	src := d.mem.Bytes(addr, size)
	if src == nil {
		return nil, ErrBadAddress
	}
	return src, nil
}
