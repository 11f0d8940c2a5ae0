package decode

import (
	"encoding/binary"

	"github.com/gogpu/getex/gecore"
)

// ClassifyAlpha scans n decoded texels and reports whether the alpha channel
// is fully opaque, binary (only 0 or full), or arbitrary. The renderer uses
// the result to skip blending and alpha testing.
func ClassifyAlpha(pix []byte, f gecore.OutFormat, n int) gecore.AlphaStatus {
	zero := false
	switch f {
	case gecore.Out565:
		return gecore.AlphaFull
	case gecore.Out4444:
		for i := 0; i < n; i++ {
			a := binary.LittleEndian.Uint16(pix[i*2:]) & 0xF
			if a != 0xF {
				if a != 0 {
					return gecore.AlphaUnknown
				}
				zero = true
			}
		}
	case gecore.Out5551:
		// One alpha bit, so there is never a partial value.
		for i := 0; i < n; i++ {
			if binary.LittleEndian.Uint16(pix[i*2:])&1 == 0 {
				zero = true
			}
		}
	default:
		for i := 0; i < n; i++ {
			a := pix[i*4+3]
			if a != 0xFF {
				if a != 0 {
					return gecore.AlphaUnknown
				}
				zero = true
			}
		}
	}
	if zero {
		return gecore.AlphaSimple
	}
	return gecore.AlphaFull
}
