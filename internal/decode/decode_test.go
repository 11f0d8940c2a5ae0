package decode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gogpu/getex/gecore"
	"github.com/gogpu/getex/internal/texhash"
)

const (
	memBase  = 0x04000000
	clutAddr = memBase
	texAddr  = memBase + 0x10000
)

// fakeMem is a single mapped region starting at memBase.
type fakeMem struct {
	data []byte
}

func newFakeMem(size int) *fakeMem {
	return &fakeMem{data: make([]byte, size)}
}

func (m *fakeMem) IsValid(addr uint32) bool {
	return addr >= memBase && addr < memBase+uint32(len(m.data))
}

func (m *fakeMem) Bytes(addr, size uint32) []byte {
	if addr < memBase || addr+size > memBase+uint32(len(m.data)) {
		return nil
	}
	o := addr - memBase
	return m.data[o : o+size]
}

func (m *fakeMem) at(addr uint32) []byte { return m.data[addr-memBase:] }

func testState(format gecore.TexFormat, wlog, hlog uint16, strideTexels uint32) *gecore.State {
	st := &gecore.State{
		Format:        format,
		MipShareClut:  true,
		ClutIndexMask: 0xFF,
	}
	st.LevelAddr[0] = texAddr
	st.LevelStride[0] = strideTexels
	st.LevelDim[0] = hlog<<8 | wlog
	return st
}

func newTestDecoder(mem *fakeMem) *Decoder {
	return NewDecoder(mem, texhash.Scalar{})
}

func TestConvertColors(t *testing.T) {
	if got := convert4444(0x1234); got != 0x4321 {
		t.Errorf("convert4444(0x1234) = %#x, want 0x4321", got)
	}
	if got := convert5551(0x8001); got != 0x0801 {
		t.Errorf("convert5551(0x8001) = %#x, want 0x0801", got)
	}
	if got := convert565(0xF800); got != 0x001F {
		t.Errorf("convert565(0xF800) = %#x, want 0x001F", got)
	}
	if got := convert565(0x07E0); got != 0x07E0 {
		t.Errorf("convert565(0x07E0) = %#x, want 0x07E0", got)
	}
}

func TestDecodeCLUT8Naked(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	// 256-entry 32-bit palette with distinct values.
	for i := 0; i < 256; i++ {
		binary.LittleEndian.PutUint32(mem.at(clutAddr)[i*4:], 0xFF000000|uint32(i)*0x010101)
	}
	d.LoadClut(clutAddr, 1024)

	// 8x2 indices.
	idx := []byte{0, 1, 2, 3, 4, 5, 6, 7, 255, 254, 10, 11, 12, 13, 14, 15}
	copy(mem.at(texAddr), idx)

	st := testState(gecore.TexFmtClut8, 3, 1, 8)
	st.ClutFormat = gecore.ClutFmt8888
	st.ClutFormatRaw = 3

	lv, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if lv.Format != gecore.Out8888 || lv.Width != 8 || lv.Height != 2 {
		t.Fatalf("got %v %dx%d", lv.Format, lv.Width, lv.Height)
	}
	for i, want := range idx {
		got := binary.LittleEndian.Uint32(lv.Pix[i*4:])
		if got != 0xFF000000|uint32(want)*0x010101 {
			t.Errorf("pixel %d = %#x, want palette[%d]", i, got, want)
		}
	}
}

func TestDecodeCLUTTransform(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	for i := 0; i < 256; i++ {
		binary.LittleEndian.PutUint32(mem.at(clutAddr)[i*4:], uint32(i))
	}
	d.LoadClut(clutAddr, 1024)

	mem.at(texAddr)[0] = 0xA3 // (0xA3 >> 4) & 0xF = 10
	st := testState(gecore.TexFmtClut8, 3, 0, 8)
	st.ClutFormat = gecore.ClutFmt8888
	st.ClutFormatRaw = 0x1403
	st.ClutIndexShift = 4
	st.ClutIndexMask = 0x0F

	lv, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if got := binary.LittleEndian.Uint32(lv.Pix); got != 10 {
		t.Errorf("transformed pixel = %d, want palette[10]", got)
	}
}

func TestDecodeCLUT4PixelOrder(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	// 16-entry 32-bit palette, entry i = i.
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(mem.at(clutAddr)[i*4:], uint32(i))
	}
	d.LoadClut(clutAddr, 64)

	// One byte holds two pixels: low nibble first.
	mem.at(texAddr)[0] = 0x21
	st := testState(gecore.TexFmtClut4, 5, 0, 32)
	st.ClutFormat = gecore.ClutFmt8888
	st.ClutFormatRaw = 3

	lv, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if p0 := binary.LittleEndian.Uint32(lv.Pix[0:]); p0 != 1 {
		t.Errorf("pixel 0 = %d, want 1 (low nibble)", p0)
	}
	if p1 := binary.LittleEndian.Uint32(lv.Pix[4:]); p1 != 2 {
		t.Errorf("pixel 1 = %d, want 2 (high nibble)", p1)
	}
}

func TestAlphaLinearDetection(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	// Converted entry i must be color|i; conversion is a nibble reversal,
	// which is its own inverse.
	const color = 0x5A30
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint16(mem.at(clutAddr)[i*2:], convert4444(color|uint16(i)))
	}
	d.LoadClut(clutAddr, 32)

	st := testState(gecore.TexFmtClut4, 5, 0, 32)
	st.ClutFormat = gecore.ClutFmt4444
	st.ClutFormatRaw = 2
	d.ensureClut(st)

	if !d.clut.alphaLinear {
		t.Fatal("alpha-linear palette not detected")
	}
	if d.clut.alphaLinearColor != color {
		t.Errorf("shared color = %#x, want %#x", d.clut.alphaLinearColor, color)
	}

	// Breaking the ramp at one entry defeats detection.
	binary.LittleEndian.PutUint16(mem.at(clutAddr)[7*2:], convert4444(color|9))
	d.LoadClut(clutAddr, 32)
	d.ensureClut(st)
	if d.clut.alphaLinear {
		t.Error("broken ramp still detected as alpha-linear")
	}
}

func TestLoadClutSentinel(t *testing.T) {
	mem := newFakeMem(1 << 12)
	d := newTestDecoder(mem)
	d.LoadClut(0x09000000, 64) // unmapped
	for i := 0; i < 64; i++ {
		if d.clut.raw[i] != 0xFF {
			t.Fatalf("raw[%d] = %#x, want sentinel 0xFF", i, d.clut.raw[i])
		}
	}
}

func TestDXT1Interpolated(t *testing.T) {
	// c1 = 0xFFFF > c2 = 0, indices 0,1,2,3 across the first row.
	b := make([]byte, 8)
	b[0] = 0xE4
	binary.LittleEndian.PutUint16(b[4:], 0xFFFF)
	binary.LittleEndian.PutUint16(b[6:], 0x0000)

	dst := make([]byte, 4*4*4)
	decodeDXT1Block(dst, 0, 4, b, false)

	want := [4][4]byte{
		{255, 255, 255, 255},
		{0, 0, 0, 255},
		{159, 159, 159, 255},
		{96, 96, 96, 255},
	}
	for x := 0; x < 4; x++ {
		got := [4]byte(dst[x*4 : x*4+4])
		if got != want[x] {
			t.Errorf("pixel %d = %v, want %v", x, got, want[x])
		}
	}
}

func TestDXT1MidpointTransparent(t *testing.T) {
	// c1 <= c2 selects the midpoint + transparent convention.
	b := make([]byte, 8)
	b[0] = 0xE4
	binary.LittleEndian.PutUint16(b[4:], 0x0000)
	binary.LittleEndian.PutUint16(b[6:], 0xFFFF)

	dst := make([]byte, 4*4*4)
	decodeDXT1Block(dst, 0, 4, b, false)

	if got := [4]byte(dst[2*4 : 2*4+4]); got != [4]byte{128, 128, 128, 255} {
		t.Errorf("midpoint pixel = %v, want 128s", got)
	}
	if got := [4]byte(dst[3*4 : 3*4+4]); got != [4]byte{255, 255, 255, 0} {
		t.Errorf("fourth pixel = %v, want transparent white", got)
	}
}

func TestDecodeDXTShortHeight(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	// 16x2: the single block row extends past the logical height, and only
	// the logical rows come back.
	block := mem.at(texAddr)
	block[0] = 0x00 // row 0: color 0
	block[1] = 0x55 // row 1: color 1
	binary.LittleEndian.PutUint16(block[4:], 0xFFFF)
	binary.LittleEndian.PutUint16(block[6:], 0x0000)

	st := testState(gecore.TexFmtDXT1, 4, 1, 16)
	lv, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel 16x2: %v", err)
	}
	if lv.Width != 16 || lv.Height != 2 {
		t.Fatalf("dims = %dx%d, want 16x2", lv.Width, lv.Height)
	}
	if len(lv.Pix) != 16*2*4 {
		t.Fatalf("pix length = %d, want %d", len(lv.Pix), 16*2*4)
	}
	if got := [4]byte(lv.Pix[0:4]); got != [4]byte{255, 255, 255, 255} {
		t.Errorf("pixel (0,0) = %v, want white", got)
	}
	if got := [4]byte(lv.Pix[16*4 : 16*4+4]); got != [4]byte{0, 0, 0, 255} {
		t.Errorf("pixel (0,1) = %v, want black", got)
	}

	// 4x1: the shortest legal height.
	st = testState(gecore.TexFmtDXT1, 2, 0, 4)
	lv, err = d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel 4x1: %v", err)
	}
	if lv.Width != 4 || lv.Height != 1 || len(lv.Pix) != 4*4 {
		t.Fatalf("4x1 level = %dx%d len %d", lv.Width, lv.Height, len(lv.Pix))
	}
}

func TestDXT3ExplicitAlpha(t *testing.T) {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[8:], 0x321F) // row 0 nibbles F,1,2,3

	dst := make([]byte, 4*4*4)
	decodeDXT3Block(dst, 0, 4, b)

	want := []byte{0xFF, 0x11, 0x22, 0x33}
	for x := 0; x < 4; x++ {
		if dst[x*4+3] != want[x] {
			t.Errorf("alpha %d = %#x, want %#x", x, dst[x*4+3], want[x])
		}
	}
}

func TestDXT5AlphaRamps(t *testing.T) {
	tests := []struct {
		name   string
		a1, a2 byte
		want   [8]byte
	}{
		{"interpolated7", 255, 0, [8]byte{255, 0, 218, 182, 145, 109, 72, 36}},
		{"interpolated5", 0, 255, [8]byte{0, 255, 51, 102, 153, 204, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 16)
			b[14] = tt.a1
			b[15] = tt.a2
			// Pixel n of row 0 selects slot n&7; 3-bit indices packed LSB-first.
			var sel uint32
			for n := 0; n < 4; n++ {
				sel |= uint32(n) << (3 * n)
			}
			binary.LittleEndian.PutUint32(b[8:], sel)

			dst := make([]byte, 4*4*4)
			decodeDXT5Block(dst, 0, 4, b)
			for n := 0; n < 4; n++ {
				if dst[n*4+3] != tt.want[n] {
					t.Errorf("slot %d alpha = %d, want %d", n, dst[n*4+3], tt.want[n])
				}
			}
		})
	}
}

func TestRowRepackShrink(t *testing.T) {
	// stride=8, width=4, height=2, 2-byte elements.
	pix := make([]byte, 8*2*2)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint16(pix[i*2:], uint16(i))
	}
	d := newTestDecoder(newFakeMem(16))
	out := d.repackRows(rawLevel{pix: pix, format: gecore.Out4444, w: 4, h: 2, bufw: 8})

	want := []uint16{0, 1, 2, 3, 8, 9, 10, 11}
	if len(out) != len(want)*2 {
		t.Fatalf("repacked length = %d, want %d", len(out), len(want)*2)
	}
	for i, w := range want {
		if got := binary.LittleEndian.Uint16(out[i*2:]); got != w {
			t.Errorf("element %d = %d, want %d", i, got, w)
		}
	}
}

func TestUnswizzleWideRows(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	// Two 16-byte tiles across, one 8-row band: linear row r is tile0 row r
	// followed by tile1 row r.
	src := mem.at(texAddr)
	for i := 0; i < 256; i++ {
		src[i] = byte(i)
	}
	out, err := d.unswizzle(texAddr, 32, 8)
	if err != nil {
		t.Fatalf("unswizzle: %v", err)
	}
	for r := 0; r < 8; r++ {
		if !bytes.Equal(out[r*32:r*32+16], src[r*16:r*16+16]) {
			t.Errorf("row %d left half misplaced", r)
		}
		if !bytes.Equal(out[r*32+16:r*32+32], src[128+r*16:128+r*16+16]) {
			t.Errorf("row %d right half misplaced", r)
		}
	}
}

func TestDecodeSwizzled8888MatchesLinear(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)

	const w, h = 8, 8 // 32 bytes per row: two tiles wide
	linear := make([]byte, w*h*4)
	for i := range linear {
		linear[i] = byte(i * 3)
	}
	// Swizzle by hand: 16-byte runs row-major within each 16x8 tile.
	sw := mem.at(texAddr)
	rowBytes := w * 4
	tiles := rowBytes / 16
	s := 0
	for bx := 0; bx < tiles; bx++ {
		for row := 0; row < 8; row++ {
			copy(sw[s:s+16], linear[row*rowBytes+bx*16:])
			s += 16
		}
	}

	st := testState(gecore.TexFmt8888, 3, 3, w)
	st.Swizzled = true
	lv, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if !bytes.Equal(lv.Pix, linear) {
		t.Error("swizzled decode does not match linear source")
	}
}

func TestDecodeRepeatedIsIdentical(t *testing.T) {
	mem := newFakeMem(1 << 17)
	d := newTestDecoder(mem)
	src := mem.at(texAddr)
	for i := 0; i < 16*16*2; i++ {
		src[i] = byte(i * 5)
	}
	st := testState(gecore.TexFmt5650, 4, 4, 16)

	lv1, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	first := append([]byte(nil), lv1.Pix...)
	lv2, err := d.DecodeLevel(st, 0)
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if !bytes.Equal(first, lv2.Pix) {
		t.Error("decoding unchanged source twice differs")
	}
}

func TestDecodeBadAddress(t *testing.T) {
	mem := newFakeMem(1 << 12)
	d := newTestDecoder(mem)
	st := testState(gecore.TexFmt8888, 8, 8, 256) // way past the mapped region
	if _, err := d.DecodeLevel(st, 0); err != ErrBadAddress {
		t.Fatalf("err = %v, want ErrBadAddress", err)
	}
}

func TestClassifyAlpha(t *testing.T) {
	u16s := func(vals ...uint16) []byte {
		p := make([]byte, len(vals)*2)
		for i, v := range vals {
			binary.LittleEndian.PutUint16(p[i*2:], v)
		}
		return p
	}
	tests := []struct {
		name string
		pix  []byte
		f    gecore.OutFormat
		n    int
		want gecore.AlphaStatus
	}{
		{"565 always full", u16s(0x1234, 0xFFFF), gecore.Out565, 2, gecore.AlphaFull},
		{"4444 opaque", u16s(0x123F, 0xFFFF), gecore.Out4444, 2, gecore.AlphaFull},
		{"4444 binary", u16s(0x123F, 0x1230), gecore.Out4444, 2, gecore.AlphaSimple},
		{"4444 partial", u16s(0x1237), gecore.Out4444, 1, gecore.AlphaUnknown},
		{"5551 opaque", u16s(0x8001), gecore.Out5551, 1, gecore.AlphaFull},
		{"5551 binary", u16s(0x8001, 0x8000), gecore.Out5551, 2, gecore.AlphaSimple},
		{"8888 opaque", []byte{1, 2, 3, 255}, gecore.Out8888, 1, gecore.AlphaFull},
		{"8888 binary", []byte{1, 2, 3, 255, 1, 2, 3, 0}, gecore.Out8888, 2, gecore.AlphaSimple},
		{"8888 partial", []byte{1, 2, 3, 100}, gecore.Out8888, 1, gecore.AlphaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAlpha(tt.pix, tt.f, tt.n); got != tt.want {
				t.Errorf("ClassifyAlpha = %v, want %v", got, tt.want)
			}
		})
	}
}
