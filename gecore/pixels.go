package gecore

import "encoding/binary"

// Convert4To8 expands a 4-bit channel value to 8 bits.
func Convert4To8(v uint32) uint8 {
	return uint8(v * 17)
}

// Convert5To8 expands a 5-bit channel value to 8 bits.
func Convert5To8(v uint32) uint8 {
	return uint8((v << 3) | (v >> 2))
}

// Convert6To8 expands a 6-bit channel value to 8 bits.
func Convert6To8(v uint32) uint8 {
	return uint8((v << 2) | (v >> 4))
}

// ExpandRGBA8888 converts n pixels of src in layout f into 8-bit RGBA bytes
// in dst. dst must hold at least n*4 bytes. Out8888 input is copied as-is.
func ExpandRGBA8888(dst, src []byte, f OutFormat, n int) {
	switch f {
	case Out4444:
		for i := 0; i < n; i++ {
			v := uint32(binary.LittleEndian.Uint16(src[i*2:]))
			dst[i*4+0] = Convert4To8((v >> 12) & 0xF)
			dst[i*4+1] = Convert4To8((v >> 8) & 0xF)
			dst[i*4+2] = Convert4To8((v >> 4) & 0xF)
			dst[i*4+3] = Convert4To8(v & 0xF)
		}
	case Out5551:
		for i := 0; i < n; i++ {
			v := uint32(binary.LittleEndian.Uint16(src[i*2:]))
			dst[i*4+0] = Convert5To8((v >> 11) & 0x1F)
			dst[i*4+1] = Convert5To8((v >> 6) & 0x1F)
			dst[i*4+2] = Convert5To8((v >> 1) & 0x1F)
			dst[i*4+3] = uint8(v&1) * 255
		}
	case Out565:
		for i := 0; i < n; i++ {
			v := uint32(binary.LittleEndian.Uint16(src[i*2:]))
			dst[i*4+0] = Convert5To8((v >> 11) & 0x1F)
			dst[i*4+1] = Convert6To8((v >> 5) & 0x3F)
			dst[i*4+2] = Convert5To8(v & 0x1F)
			dst[i*4+3] = 0xFF
		}
	default:
		copy(dst[:n*4], src[:n*4])
	}
}
