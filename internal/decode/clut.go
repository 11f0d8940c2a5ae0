package decode

import (
	"encoding/binary"

	"github.com/gogpu/getex/gecore"
)

// clutMaxBytes is the size of the hardware palette load buffer.
const clutMaxBytes = 16384

// clutDirty is a ClutFormatRaw value no register write can produce, used to
// force reconversion.
const clutDirty = ^uint32(0)

// clutState is the loaded palette and its converted forms. Raw bytes are
// kept so the palette can be reconverted when only the format register
// changes, without another load.
type clutState struct {
	raw        []byte
	totalBytes uint32

	// Converted entries in output channel order. entries16 is used for the
	// three 16-bit palette formats, entries32 for the 32-bit one.
	entries16 []uint16
	entries32 []uint32

	hash       uint32
	lastFormat uint32

	// alphaLinear is set when a shared 4444 palette stores the entry index
	// in its alpha nibble, enabling the deindex fast path.
	alphaLinear      bool
	alphaLinearColor uint16
}

func (c *clutState) init() {
	c.raw = make([]byte, clutMaxBytes)
	c.entries16 = make([]uint16, clutMaxBytes/2)
	c.entries32 = make([]uint32, clutMaxBytes/4)
	c.lastFormat = clutDirty
}

// LoadClut captures a palette load of the given byte length. Loads from
// unmapped memory read back as all-ones, like the hardware bus. Conversion
// is deferred to the next indexed decode since the format register may still
// change before then.
func (d *Decoder) LoadClut(addr, bytes uint32) {
	if bytes > clutMaxBytes {
		bytes = clutMaxBytes
	}
	d.clut.totalBytes = bytes
	src := d.mem.Bytes(addr, bytes)
	if src != nil {
		copy(d.clut.raw[:bytes], src)
	} else {
		for i := range d.clut.raw[:bytes] {
			d.clut.raw[i] = 0xFF
		}
	}
	d.clut.lastFormat = clutDirty
}

// ClutHash returns the hash of the palette bytes an indexed texture under st
// would read, converting the palette first if the format changed.
func (d *Decoder) ClutHash(st *gecore.State) uint32 {
	d.ensureClut(st)
	return d.clut.hash
}

// ensureClut reconverts the loaded palette if the palette registers changed
// since the last conversion.
func (d *Decoder) ensureClut(st *gecore.State) {
	if d.clut.lastFormat == st.ClutFormatRaw {
		return
	}
	d.updateClut(st)
}

func (d *Decoder) updateClut(st *gecore.State) {
	c := &d.clut

	// An index base shifts reads past the loaded region, so the extra tail
	// participates in both the hash and the conversion.
	extended := c.totalBytes + st.ClutIndexBase*uint32(st.ClutFormat.EntryBytes())
	if extended > clutMaxBytes {
		extended = clutMaxBytes
	}
	c.hash = d.hash.Clut(c.raw[:extended])

	c.alphaLinear = false
	if st.ClutFormat == gecore.ClutFmt8888 {
		for i := 0; i < int(extended/4); i++ {
			c.entries32[i] = binary.LittleEndian.Uint32(c.raw[i*4:])
		}
	} else {
		convertColors16(c.entries16, c.raw, st.ClutFormat.OutFormat(), int(extended/2))
		if st.ClutFormat == gecore.ClutFmt4444 && st.ClutIndexSimple() {
			c.detectAlphaLinear()
		}
	}
	c.lastFormat = st.ClutFormatRaw
}

// detectAlphaLinear checks for the common palette where entry i carries
// alpha i in a 4444 palette and all entries share one color, which lets
// 4-bit deindexing skip the table lookup entirely.
func (c *clutState) detectAlphaLinear() {
	clut := c.entries16[:16]
	color := clut[15] & 0xFFF0
	for i, v := range clut {
		if v&0xF != uint16(i) {
			return
		}
		if i != 0 && v&0xFFF0 != color {
			return
		}
	}
	c.alphaLinear = true
	c.alphaLinearColor = color
}

// deindex4AlphaLinear expands n 4-bit indices through an alpha-linear 4444
// palette: the index is the alpha nibble.
func deindex4AlphaLinear(dst, idx []byte, n int, color uint16) {
	for i := 0; i < n/2; i++ {
		v := idx[i]
		binary.LittleEndian.PutUint16(dst[i*4:], color|uint16(v&0xF))
		binary.LittleEndian.PutUint16(dst[i*4+2:], color|uint16(v>>4))
	}
}

// deindex4To16 expands n 4-bit indices through a 16-bit palette.
func deindex4To16(dst, idx []byte, n int, clut []uint16, st *gecore.State) {
	if st.ClutIndexSimple() {
		for i := 0; i < n/2; i++ {
			v := idx[i]
			binary.LittleEndian.PutUint16(dst[i*4:], clut[v&0xF])
			binary.LittleEndian.PutUint16(dst[i*4+2:], clut[v>>4])
		}
		return
	}
	for i := 0; i < n/2; i++ {
		v := idx[i]
		binary.LittleEndian.PutUint16(dst[i*4:], clut[st.TransformClutIndex(uint32(v&0xF))])
		binary.LittleEndian.PutUint16(dst[i*4+2:], clut[st.TransformClutIndex(uint32(v>>4))])
	}
}

// deindex4To32 expands n 4-bit indices through a 32-bit palette.
func deindex4To32(dst, idx []byte, n int, clut []uint32, st *gecore.State) {
	if st.ClutIndexSimple() {
		for i := 0; i < n/2; i++ {
			v := idx[i]
			binary.LittleEndian.PutUint32(dst[i*8:], clut[v&0xF])
			binary.LittleEndian.PutUint32(dst[i*8+4:], clut[v>>4])
		}
		return
	}
	for i := 0; i < n/2; i++ {
		v := idx[i]
		binary.LittleEndian.PutUint32(dst[i*8:], clut[st.TransformClutIndex(uint32(v&0xF))])
		binary.LittleEndian.PutUint32(dst[i*8+4:], clut[st.TransformClutIndex(uint32(v>>4))])
	}
}

// readIndex pulls the i-th index value from a buffer of bpi-byte indices.
func readIndex(idx []byte, bpi, i int) uint32 {
	switch bpi {
	case 1:
		return uint32(idx[i])
	case 2:
		return uint32(binary.LittleEndian.Uint16(idx[i*2:]))
	default:
		return binary.LittleEndian.Uint32(idx[i*4:])
	}
}

// deindexTo16 expands n indices of bpi bytes each through a 16-bit palette.
// Wide indices with the identity transform still only address the low byte.
func deindexTo16(dst, idx []byte, bpi, n int, clut []uint16, st *gecore.State) {
	simple := st.ClutIndexSimple()
	for i := 0; i < n; i++ {
		v := readIndex(idx, bpi, i)
		if simple {
			v &= 0xFF
		} else {
			v = st.TransformClutIndex(v)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], clut[v])
	}
}

// deindexTo32 expands n indices of bpi bytes each through a 32-bit palette.
func deindexTo32(dst, idx []byte, bpi, n int, clut []uint32, st *gecore.State) {
	simple := st.ClutIndexSimple()
	for i := 0; i < n; i++ {
		v := readIndex(idx, bpi, i)
		if simple {
			v &= 0xFF
		} else {
			v = st.TransformClutIndex(v)
		}
		binary.LittleEndian.PutUint32(dst[i*4:], clut[v])
	}
}
