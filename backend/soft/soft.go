// Package soft is a pure-CPU getex.Backend. Images are plain RGBA buffers,
// mipmaps are scaled on the CPU and sampler state is only recorded. It backs
// the integration tests and headless tools; nothing here touches a GPU.
package soft

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/getex"
	"github.com/gogpu/getex/gecore"
)

// texture is one image and its mip chain.
type texture struct {
	levels  []*image.RGBA
	sampler getex.SamplerState
}

// Backend implements getex.Backend in software.
type Backend struct {
	// MaxImages caps how many images may live at once; CreateImage beyond
	// it fails with getex.ErrOOM. Zero means unlimited. Used by tests to
	// exercise the cache's low-memory recovery.
	MaxImages int

	images      map[getex.ImageID]*texture
	nextID      uint64
	bound       getex.ImageID
	boundTarget *getex.RenderTarget
	bindCalls   int
}

// New creates an empty software backend.
func New() *Backend {
	return &Backend{images: make(map[getex.ImageID]*texture)}
}

// CreateImage allocates an RGBA buffer of the given size.
func (b *Backend) CreateImage(width, height int, format gecore.OutFormat) (getex.ImageID, error) {
	if b.MaxImages > 0 && len(b.images) >= b.MaxImages {
		return getex.NoImage, fmt.Errorf("soft: image budget exhausted: %w", getex.ErrOOM)
	}
	b.nextID++
	id := getex.ImageID(b.nextID)
	b.images[id] = &texture{
		levels: []*image.RGBA{image.NewRGBA(image.Rect(0, 0, width, height))},
	}
	return id, nil
}

// DestroyImage releases an image.
func (b *Backend) DestroyImage(id getex.ImageID) {
	delete(b.images, id)
	if b.bound == id {
		b.bound = getex.NoImage
	}
}

// Upload converts the uniform-layout pixels to RGBA and stores them.
func (b *Backend) Upload(id getex.ImageID, spec getex.UploadSpec) error {
	t, ok := b.images[id]
	if !ok {
		return fmt.Errorf("soft: upload to unknown image %d", id)
	}
	if spec.Level >= len(t.levels) {
		return fmt.Errorf("soft: upload to missing level %d of image %d", spec.Level, id)
	}
	dst := t.levels[spec.Level]

	n := spec.Width * spec.Height
	rgba := make([]byte, n*4)
	gecore.ExpandRGBA8888(rgba, spec.Pix, spec.Format, n)

	x0, y0 := 0, 0
	if spec.Sub {
		x0, y0 = spec.X, spec.Y
	}
	for y := 0; y < spec.Height; y++ {
		row := rgba[y*spec.Width*4 : (y+1)*spec.Width*4]
		off := dst.PixOffset(x0, y0+y)
		copy(dst.Pix[off:off+len(row)], row)
	}
	return nil
}

// GenerateMipmaps rebuilds the mip chain from level 0 by successive
// half-size bilinear downscales.
func (b *Backend) GenerateMipmaps(id getex.ImageID) error {
	t, ok := b.images[id]
	if !ok {
		return fmt.Errorf("soft: mipmaps for unknown image %d", id)
	}
	t.levels = t.levels[:1]
	src := t.levels[0]
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for w > 1 || h > 1 {
		w = max(1, w/2)
		h = max(1, h/2)
		next := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(next, next.Rect, src, src.Rect, draw.Src, nil)
		t.levels = append(t.levels, next)
		src = next
	}
	return nil
}

// SetSampler records the sampler state.
func (b *Backend) SetSampler(id getex.ImageID, s getex.SamplerState) {
	if t, ok := b.images[id]; ok {
		t.sampler = s
	}
}

// MaxAnisotropy reports the backend limit. Software sampling is isotropic,
// so anything above 1 is recorded but ignored.
func (b *Backend) MaxAnisotropy() float32 { return 1 }

// Bind records the active image.
func (b *Backend) Bind(id getex.ImageID) {
	b.bound = id
	b.boundTarget = nil
	b.bindCalls++
}

// BindTargetColor records the active render target.
func (b *Backend) BindTargetColor(rt *getex.RenderTarget) {
	b.boundTarget = rt
	b.bound = getex.NoImage
	b.bindCalls++
}

// Bound returns the active image handle.
func (b *Backend) Bound() getex.ImageID { return b.bound }

// BoundTarget returns the active render target, if any.
func (b *Backend) BoundTarget() *getex.RenderTarget { return b.boundTarget }

// BindCalls returns how many bind calls reached the backend, counting
// suppression by the cache.
func (b *Backend) BindCalls() int { return b.bindCalls }

// ImageCount returns the number of live images.
func (b *Backend) ImageCount() int { return len(b.images) }

// Level returns one stored mip level, or nil.
func (b *Backend) Level(id getex.ImageID, level int) *image.RGBA {
	t, ok := b.images[id]
	if !ok || level >= len(t.levels) {
		return nil
	}
	return t.levels[level]
}

// Sampler returns the last sampler state applied to an image.
func (b *Backend) Sampler(id getex.ImageID) getex.SamplerState {
	if t, ok := b.images[id]; ok {
		return t.sampler
	}
	return getex.SamplerState{}
}
