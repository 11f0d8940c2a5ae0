package decode

import (
	"encoding/binary"

	"github.com/gogpu/getex/gecore"
)

// The 16-bit source formats store their channels in the reverse order of the
// output layouts, so every 16-bit texel gets its fields mirrored on decode.

func convert4444(v uint16) uint16 {
	return (v>>12)&0x000F | (v>>4)&0x00F0 | (v<<4)&0x0F00 | (v<<12)&0xF000
}

func convert5551(v uint16) uint16 {
	return (v>>15)&0x0001 | (v>>9)&0x003E | (v<<1)&0x07C0 | (v<<11)&0xF800
}

func convert565(v uint16) uint16 {
	return (v>>11)&0x001F | v&0x07E0 | (v<<11)&0xF800
}

// convertColors rewrites n texels of src into dst in the output channel
// order. Out8888 needs no channel work and is copied through.
func convertColors(dst, src []byte, f gecore.OutFormat, n int) {
	switch f {
	case gecore.Out4444:
		for i := 0; i < n; i++ {
			v := binary.LittleEndian.Uint16(src[i*2:])
			binary.LittleEndian.PutUint16(dst[i*2:], convert4444(v))
		}
	case gecore.Out5551:
		for i := 0; i < n; i++ {
			v := binary.LittleEndian.Uint16(src[i*2:])
			binary.LittleEndian.PutUint16(dst[i*2:], convert5551(v))
		}
	case gecore.Out565:
		for i := 0; i < n; i++ {
			v := binary.LittleEndian.Uint16(src[i*2:])
			binary.LittleEndian.PutUint16(dst[i*2:], convert565(v))
		}
	default:
		copy(dst[:n*4], src[:n*4])
	}
}

// convertColors16 is convertColors into a decoded []uint16, used for
// palette entries.
func convertColors16(dst []uint16, src []byte, f gecore.OutFormat, n int) {
	switch f {
	case gecore.Out4444:
		for i := 0; i < n; i++ {
			dst[i] = convert4444(binary.LittleEndian.Uint16(src[i*2:]))
		}
	case gecore.Out5551:
		for i := 0; i < n; i++ {
			dst[i] = convert5551(binary.LittleEndian.Uint16(src[i*2:]))
		}
	default:
		for i := 0; i < n; i++ {
			dst[i] = convert565(binary.LittleEndian.Uint16(src[i*2:]))
		}
	}
}
