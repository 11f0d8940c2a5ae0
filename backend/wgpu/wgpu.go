// Package wgpu implements getex.Backend on gogpu/wgpu's HAL layer: textures
// are created on a hal.Device and filled through hal.Queue.WriteTexture.
//
// The GE's 16-bit output layouts are expanded to RGBA8 on upload; WebGPU has
// no packed 16-bit sampled formats with matching channel order. Mip levels
// are downsampled on the CPU from a retained copy of level 0 and written
// level by level, since the HAL exposes no mipmap generation pass.
package wgpu

import (
	"fmt"
	"math/bits"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/getex"
	"github.com/gogpu/getex/gecore"
)

// texture is one live HAL texture plus the retained level-0 pixels used for
// CPU mipmap generation.
type texture struct {
	tex     hal.Texture
	w, h    int
	mips    uint32
	rgba    []byte
	sampler getex.SamplerState
}

// Backend implements getex.Backend over a HAL device and queue.
type Backend struct {
	device hal.Device
	queue  hal.Queue

	limits types.Limits

	images map[getex.ImageID]*texture
	nextID uint64

	active       hal.Texture
	activeTarget *getex.RenderTarget

	maxAnisotropy float32
}

// New creates a backend over the given device and queue. limits may be nil,
// in which case default limits are assumed.
func New(device hal.Device, queue hal.Queue, limits *types.Limits) *Backend {
	var lim types.Limits
	if limits != nil {
		lim = *limits
	} else {
		lim = types.DefaultLimits()
	}
	return &Backend{
		device:        device,
		queue:         queue,
		limits:        lim,
		images:        make(map[getex.ImageID]*texture),
		maxAnisotropy: 16,
	}
}

// mipCount returns the full chain length for a surface.
func mipCount(w, h int) uint32 {
	return uint32(bits.Len(uint(max(w, h))))
}

// CreateImage allocates a sampleable, copy-destination RGBA8 texture with a
// full mip chain.
func (b *Backend) CreateImage(width, height int, format gecore.OutFormat) (getex.ImageID, error) {
	mips := mipCount(width, height)
	desc := &hal.TextureDescriptor{
		Label: "getex",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: mips,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageCopyDst | types.TextureUsageTextureBinding,
	}
	tex, err := b.device.CreateTexture(desc)
	if err != nil {
		return getex.NoImage, fmt.Errorf("wgpu: create texture: %w", err)
	}
	b.nextID++
	id := getex.ImageID(b.nextID)
	b.images[id] = &texture{
		tex: tex, w: width, h: height, mips: mips,
		rgba: make([]byte, width*height*4),
	}
	return id, nil
}

// DestroyImage releases a texture.
func (b *Backend) DestroyImage(id getex.ImageID) {
	t, ok := b.images[id]
	if !ok {
		return
	}
	delete(b.images, id)
	b.device.DestroyTexture(t.tex)
	if b.active == t.tex {
		b.active = nil
	}
}

// Upload expands the pixels to RGBA8 and writes them into the texture.
func (b *Backend) Upload(id getex.ImageID, spec getex.UploadSpec) error {
	t, ok := b.images[id]
	if !ok {
		return fmt.Errorf("wgpu: upload to unknown image %d", id)
	}

	x, y := 0, 0
	if spec.Sub {
		x, y = spec.X, spec.Y
	}
	n := spec.Width * spec.Height
	rgba := make([]byte, n*4)
	gecore.ExpandRGBA8888(rgba, spec.Pix, spec.Format, n)

	if spec.Level == 0 {
		// Retain level 0 for CPU mipmap generation.
		for row := 0; row < spec.Height; row++ {
			off := ((y+row)*t.w + x) * 4
			copy(t.rgba[off:off+spec.Width*4], rgba[row*spec.Width*4:])
		}
	}
	b.write(t, spec.Level, x, y, spec.Width, spec.Height, rgba)
	return nil
}

func (b *Backend) write(t *texture, level, x, y, w, h int, rgba []byte) {
	dst := &hal.ImageCopyTexture{
		Texture:  t.tex,
		MipLevel: uint32(level),
		Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w * 4),
		RowsPerImage: uint32(h),
	}
	size := &hal.Extent3D{
		Width:              uint32(w),
		Height:             uint32(h),
		DepthOrArrayLayers: 1,
	}
	b.queue.WriteTexture(dst, rgba, layout, size)
}

// GenerateMipmaps downsamples the retained level 0 with a box filter and
// writes each level.
func (b *Backend) GenerateMipmaps(id getex.ImageID) error {
	t, ok := b.images[id]
	if !ok {
		return fmt.Errorf("wgpu: mipmaps for unknown image %d", id)
	}
	src := t.rgba
	w, h := t.w, t.h
	for level := uint32(1); level < t.mips; level++ {
		src, w, h = downsample(src, w, h)
		b.write(t, int(level), 0, 0, w, h, src)
	}
	return nil
}

// downsample halves an RGBA buffer with a 2x2 average.
func downsample(src []byte, w, h int) ([]byte, int, int) {
	dw, dh := max(1, w/2), max(1, h/2)
	dst := make([]byte, dw*dh*4)
	for y := 0; y < dh; y++ {
		y0 := min(2*y, h-1)
		y1 := min(2*y+1, h-1)
		for x := 0; x < dw; x++ {
			x0 := min(2*x, w-1)
			x1 := min(2*x+1, w-1)
			for ch := 0; ch < 4; ch++ {
				sum := int(src[(y0*w+x0)*4+ch]) + int(src[(y0*w+x1)*4+ch]) +
					int(src[(y1*w+x0)*4+ch]) + int(src[(y1*w+x1)*4+ch])
				dst[(y*dw+x)*4+ch] = byte((sum + 2) / 4)
			}
		}
	}
	return dst, dw, dh
}

// SetSampler records the sampler state; the render pipeline owns the actual
// hal sampler objects and reads this when building bind groups.
func (b *Backend) SetSampler(id getex.ImageID, s getex.SamplerState) {
	if t, ok := b.images[id]; ok {
		t.sampler = s
	}
}

// MaxAnisotropy reports the device limit.
func (b *Backend) MaxAnisotropy() float32 { return b.maxAnisotropy }

// Bind selects the active texture for the next draw.
func (b *Backend) Bind(id getex.ImageID) {
	b.activeTarget = nil
	if t, ok := b.images[id]; ok {
		b.active = t.tex
		return
	}
	b.active = nil
}

// BindTargetColor selects a render target's color texture.
func (b *Backend) BindTargetColor(rt *getex.RenderTarget) {
	b.active = nil
	b.activeTarget = rt
}

// ActiveTexture returns the HAL texture to sample from, or nil.
func (b *Backend) ActiveTexture() hal.Texture { return b.active }

// ActiveTarget returns the aliased render target to draw with, or nil.
func (b *Backend) ActiveTarget() *getex.RenderTarget { return b.activeTarget }

// Sampler returns the last sampler state applied to an image.
func (b *Backend) Sampler(id getex.ImageID) getex.SamplerState {
	if t, ok := b.images[id]; ok {
		return t.sampler
	}
	return getex.SamplerState{}
}
