package gecore

import "testing"

func TestTexFormatProperties(t *testing.T) {
	tests := []struct {
		f          TexFormat
		bpp        uint32
		indexed    bool
		compressed bool
	}{
		{TexFmt5650, 16, false, false},
		{TexFmt5551, 16, false, false},
		{TexFmt4444, 16, false, false},
		{TexFmt8888, 32, false, false},
		{TexFmtClut4, 4, true, false},
		{TexFmtClut8, 8, true, false},
		{TexFmtClut16, 16, true, false},
		{TexFmtClut32, 32, true, false},
		{TexFmtDXT1, 4, false, true},
		{TexFmtDXT3, 8, false, true},
		{TexFmtDXT5, 8, false, true},
	}
	for _, tt := range tests {
		if !tt.f.Valid() {
			t.Errorf("%v not valid", tt.f)
		}
		if got := tt.f.BitsPerPixel(); got != tt.bpp {
			t.Errorf("%v bpp = %d, want %d", tt.f, got, tt.bpp)
		}
		if tt.f.Indexed() != tt.indexed {
			t.Errorf("%v indexed = %v", tt.f, tt.f.Indexed())
		}
		if tt.f.Compressed() != tt.compressed {
			t.Errorf("%v compressed = %v", tt.f, tt.f.Compressed())
		}
	}
	// The 4-bit register field has invalid tail codes.
	for code := TexFormat(11); code < 16; code++ {
		if code.Valid() {
			t.Errorf("code %d reported valid", code)
		}
		if code.BitsPerPixel() != 0 {
			t.Errorf("code %d bpp = %d, want 0", code, code.BitsPerPixel())
		}
	}
}

func TestBufFormatCompat(t *testing.T) {
	if !BufFmt5650.MatchesTexFormat(TexFmt5650) {
		t.Error("5650 buffer should match 5650 texture")
	}
	if BufFmt8888.MatchesTexFormat(TexFmt5650) {
		t.Error("8888 buffer should not match 5650 texture")
	}
	if !BufFmt8888.CompatTexFormat(TexFmtClut32) {
		t.Error("CLUT32 should be compatible with a 32-bit buffer")
	}
	if !BufFmt5551.CompatTexFormat(TexFmtClut16) {
		t.Error("CLUT16 should be compatible with a 16-bit buffer")
	}
	if BufFmt8888.CompatTexFormat(TexFmtClut16) {
		t.Error("CLUT16 should not be compatible with a 32-bit buffer")
	}
}

func TestStateDimensions(t *testing.T) {
	var st State
	st.LevelDim[0] = 0x0504 // 16 wide, 32 high
	if st.Width(0) != 16 || st.Height(0) != 32 {
		t.Errorf("dims = %dx%d, want 16x32", st.Width(0), st.Height(0))
	}
	st.LevelDim[0] = 0xF5F4 // garbage in the unused nibbles
	if st.Dim(0) != 0x0504 {
		t.Errorf("Dim = %#x, want masked 0x0504", st.Dim(0))
	}
}

func TestClutIndexTransform(t *testing.T) {
	st := State{ClutIndexShift: 0, ClutIndexMask: 0xFF}
	if !st.ClutIndexSimple() {
		t.Error("identity transform not detected as simple")
	}
	st = State{ClutIndexShift: 4, ClutIndexMask: 0x0F, ClutIndexBase: 0x10}
	if st.ClutIndexSimple() {
		t.Error("non-identity transform reported simple")
	}
	if got := st.TransformClutIndex(0xA7); got != 0x1A {
		t.Errorf("TransformClutIndex(0xA7) = %#x, want 0x1A", got)
	}
}

func TestMaskStride(t *testing.T) {
	if got := MaskStride(0x04000000, 0x1800); got != 0 {
		t.Errorf("user stride = %d, want masked to 0", got)
	}
	if got := MaskStride(0x04000000, 0x07FF); got != 0x7FF {
		t.Errorf("user stride = %#x, want 0x7FF", got)
	}
	// The kernel window keeps more bits.
	if got := MaskStride(0x08200000, 0x1800); got != 0x1800 {
		t.Errorf("kernel stride = %#x, want 0x1800", got)
	}
	if got := MaskStride(0x08400000, 0x1800); got != 0 {
		t.Errorf("past kernel window = %#x, want 0", got)
	}
}

func TestChannelExpansion(t *testing.T) {
	if Convert4To8(0xF) != 255 || Convert4To8(0) != 0 {
		t.Error("4-bit expansion endpoints wrong")
	}
	if Convert5To8(0x1F) != 255 || Convert5To8(0x10) != 0x84 {
		t.Error("5-bit expansion wrong")
	}
	if Convert6To8(0x3F) != 255 {
		t.Error("6-bit expansion endpoint wrong")
	}
}

func TestExpandRGBA8888(t *testing.T) {
	// R5 G6 B5: red 31, green 0, blue 31 -> magenta, forced opaque.
	src := []byte{0x1F, 0xF8}
	dst := make([]byte, 4)
	ExpandRGBA8888(dst, src, Out565, 1)
	if [4]byte(dst) != [4]byte{255, 0, 255, 255} {
		t.Errorf("565 expand = %v", dst)
	}

	// A1 in the low bit.
	src = []byte{0x00, 0xF8} // red 31, alpha 0
	ExpandRGBA8888(dst, src, Out5551, 1)
	if [4]byte(dst) != [4]byte{255, 0, 0, 0} {
		t.Errorf("5551 expand = %v", dst)
	}

	src = []byte{1, 2, 3, 4}
	ExpandRGBA8888(dst, src, Out8888, 1)
	if [4]byte(dst) != [4]byte{1, 2, 3, 4} {
		t.Errorf("8888 expand = %v", dst)
	}
}
