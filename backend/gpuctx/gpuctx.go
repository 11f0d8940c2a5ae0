// Package gpuctx adapts a gpucontext texture creator to getex.Backend.
//
// gpucontext exposes one-shot texture creation (NewTextureFromRGBA) rather
// than separate allocate/upload steps, so images here are created lazily on
// the first Upload and recreated on replacement uploads. The host draws with
// the texture returned by ActiveTexture.
package gpuctx

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/getex"
	"github.com/gogpu/getex/gecore"
)

// textureDestroyer is the interface for destroying textures.
// This matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// texture is one cached image: retained RGBA pixels plus the live GPU
// texture built from them.
type texture struct {
	w, h    int
	rgba    []byte
	tex     any
	sampler getex.SamplerState
}

// Backend implements getex.Backend over a gpucontext.TextureCreator.
type Backend struct {
	creator gpucontext.TextureCreator

	images map[getex.ImageID]*texture
	nextID uint64

	active       any
	activeTarget *getex.RenderTarget
}

// New creates a backend uploading through creator.
func New(creator gpucontext.TextureCreator) *Backend {
	return &Backend{
		creator: creator,
		images:  make(map[getex.ImageID]*texture),
	}
}

// PixelFormat reports the GPU format of every texture this backend creates.
func (b *Backend) PixelFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// CreateImage registers an image; the GPU texture is created on first
// Upload since gpucontext couples creation with pixel data.
func (b *Backend) CreateImage(width, height int, format gecore.OutFormat) (getex.ImageID, error) {
	b.nextID++
	id := getex.ImageID(b.nextID)
	b.images[id] = &texture{
		w: width, h: height,
		rgba: make([]byte, width*height*4),
	}
	return id, nil
}

// DestroyImage releases the GPU texture if the creator's textures support
// destruction.
func (b *Backend) DestroyImage(id getex.ImageID) {
	t, ok := b.images[id]
	if !ok {
		return
	}
	delete(b.images, id)
	if d, ok := t.tex.(textureDestroyer); ok {
		d.Destroy()
	}
	if b.active == t.tex {
		b.active = nil
	}
}

// Upload expands the pixels into the retained RGBA copy and (re)creates the
// GPU texture from it. Sub-region uploads patch the retained copy first.
func (b *Backend) Upload(id getex.ImageID, spec getex.UploadSpec) error {
	t, ok := b.images[id]
	if !ok {
		return fmt.Errorf("gpuctx: upload to unknown image %d", id)
	}
	if spec.Level != 0 {
		// Levels beyond 0 are produced by GenerateMipmaps; gpucontext
		// owns filtering internally.
		return nil
	}

	if spec.Sub {
		row := make([]byte, spec.Width*4)
		for y := 0; y < spec.Height; y++ {
			gecore.ExpandRGBA8888(row, spec.Pix[y*spec.Width*spec.Format.BytesPerPixel():], spec.Format, spec.Width)
			off := ((spec.Y+y)*t.w + spec.X) * 4
			copy(t.rgba[off:off+len(row)], row)
		}
	} else {
		gecore.ExpandRGBA8888(t.rgba, spec.Pix, spec.Format, spec.Width*spec.Height)
	}

	if d, ok := t.tex.(textureDestroyer); ok {
		d.Destroy()
	}
	tex, err := b.creator.NewTextureFromRGBA(t.w, t.h, t.rgba)
	if err != nil {
		return fmt.Errorf("gpuctx: NewTextureFromRGBA failed: %w", err)
	}
	t.tex = tex
	return nil
}

// GenerateMipmaps is a no-op; the context filters from level 0.
func (b *Backend) GenerateMipmaps(id getex.ImageID) error { return nil }

// SetSampler records the sampler state for the host's draw path.
func (b *Backend) SetSampler(id getex.ImageID, s getex.SamplerState) {
	if t, ok := b.images[id]; ok {
		t.sampler = s
	}
}

// MaxAnisotropy reports the backend limit.
func (b *Backend) MaxAnisotropy() float32 { return 1 }

// Bind selects the active texture for the host's next draw.
func (b *Backend) Bind(id getex.ImageID) {
	b.activeTarget = nil
	if t, ok := b.images[id]; ok {
		b.active = t.tex
		return
	}
	b.active = nil
}

// BindTargetColor selects a render target's color texture. The target's
// Image handle is owned by the render-target manager, which also maps it to
// a gpucontext texture; the host resolves it through ActiveTarget.
func (b *Backend) BindTargetColor(rt *getex.RenderTarget) {
	b.active = nil
	b.activeTarget = rt
}

// ActiveTexture returns the texture the host should draw with, or nil.
func (b *Backend) ActiveTexture() any { return b.active }

// ActiveTarget returns the aliased render target to draw with, or nil.
func (b *Backend) ActiveTarget() *getex.RenderTarget { return b.activeTarget }

// Sampler returns the last sampler state applied to an image.
func (b *Backend) Sampler(id getex.ImageID) getex.SamplerState {
	if t, ok := b.images[id]; ok {
		return t.sampler
	}
	return getex.SamplerState{}
}
