package soft

import (
	"errors"
	"testing"

	"github.com/gogpu/getex"
	"github.com/gogpu/getex/gecore"
)

func TestUploadExpands4444(t *testing.T) {
	b := New()
	id, err := b.CreateImage(2, 1, gecore.Out4444)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	// Two texels: pure green opaque, then magenta transparent.
	pix := []byte{0x0F, 0x0F, 0xF0, 0xF0}
	if err := b.Upload(id, getex.UploadSpec{
		Width: 2, Height: 1, Format: gecore.Out4444, ByteAlign: 2, Pix: pix,
	}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	lv := b.Level(id, 0)
	if lv == nil {
		t.Fatal("level 0 missing")
	}
	want := []byte{0, 255, 0, 255, 255, 0, 255, 0}
	for i, w := range want {
		if lv.Pix[i] != w {
			t.Errorf("pix[%d] = %d, want %d", i, lv.Pix[i], w)
		}
	}
}

func TestSubUpload(t *testing.T) {
	b := New()
	id, err := b.CreateImage(4, 4, gecore.Out8888)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	full := make([]byte, 4*4*4)
	if err := b.Upload(id, getex.UploadSpec{
		Width: 4, Height: 4, Format: gecore.Out8888, ByteAlign: 4, Pix: full,
	}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	sub := make([]byte, 2*2*4)
	for i := range sub {
		sub[i] = 0xCC
	}
	if err := b.Upload(id, getex.UploadSpec{
		X: 1, Y: 1, Width: 2, Height: 2,
		Format: gecore.Out8888, ByteAlign: 4, Pix: sub, Sub: true,
	}); err != nil {
		t.Fatalf("sub Upload: %v", err)
	}

	lv := b.Level(id, 0)
	if got := lv.Pix[lv.PixOffset(1, 1)]; got != 0xCC {
		t.Errorf("patched texel = %#x, want 0xCC", got)
	}
	if got := lv.Pix[lv.PixOffset(0, 0)]; got != 0 {
		t.Errorf("untouched texel = %#x, want 0", got)
	}
	if got := lv.Pix[lv.PixOffset(3, 3)]; got != 0 {
		t.Errorf("untouched texel = %#x, want 0", got)
	}
}

func TestGenerateMipmaps(t *testing.T) {
	b := New()
	id, err := b.CreateImage(8, 4, gecore.Out8888)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	pix := make([]byte, 8*4*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = 40
		pix[i+1] = 80
		pix[i+2] = 120
		pix[i+3] = 255
	}
	if err := b.Upload(id, getex.UploadSpec{
		Width: 8, Height: 4, Format: gecore.Out8888, ByteAlign: 4, Pix: pix,
	}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := b.GenerateMipmaps(id); err != nil {
		t.Fatalf("GenerateMipmaps: %v", err)
	}

	// 8x4 -> 4x2 -> 2x1 -> 1x1.
	sizes := [][2]int{{8, 4}, {4, 2}, {2, 1}, {1, 1}}
	for level, s := range sizes {
		lv := b.Level(id, level)
		if lv == nil {
			t.Fatalf("level %d missing", level)
		}
		if lv.Rect.Dx() != s[0] || lv.Rect.Dy() != s[1] {
			t.Errorf("level %d = %dx%d, want %dx%d",
				level, lv.Rect.Dx(), lv.Rect.Dy(), s[0], s[1])
		}
	}
	if b.Level(id, 4) != nil {
		t.Error("chain longer than expected")
	}
	// A constant image downsamples to itself.
	tail := b.Level(id, 3)
	if got := [4]byte(tail.Pix[:4]); got != [4]byte{40, 80, 120, 255} {
		t.Errorf("1x1 level = %v, want the constant color", got)
	}
}

func TestMaxImagesBudget(t *testing.T) {
	b := New()
	b.MaxImages = 1
	id, err := b.CreateImage(4, 4, gecore.Out8888)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	if _, err := b.CreateImage(4, 4, gecore.Out8888); !errors.Is(err, getex.ErrOOM) {
		t.Fatalf("over-budget error = %v, want ErrOOM", err)
	}
	b.DestroyImage(id)
	if _, err := b.CreateImage(4, 4, gecore.Out8888); err != nil {
		t.Fatalf("CreateImage after release: %v", err)
	}
}

func TestBindTracking(t *testing.T) {
	b := New()
	id, err := b.CreateImage(4, 4, gecore.Out8888)
	if err != nil {
		t.Fatalf("CreateImage: %v", err)
	}
	b.Bind(id)
	if b.Bound() != id || b.BindCalls() != 1 {
		t.Errorf("bound = %d calls = %d", b.Bound(), b.BindCalls())
	}
	rt := &getex.RenderTarget{Address: 0x04000000, Stride: 16}
	b.BindTargetColor(rt)
	if b.BoundTarget() != rt || b.Bound() != getex.NoImage {
		t.Error("target bind did not supersede the image bind")
	}
	b.DestroyImage(id)
	if b.ImageCount() != 0 {
		t.Errorf("images = %d, want 0", b.ImageCount())
	}
}
