package getex

import "github.com/gogpu/getex/gecore"

// ImageID is an opaque handle to a backend image object. The zero value
// NoImage means no image.
type ImageID uint64

// NoImage is the absent image handle.
const NoImage ImageID = 0

// Filter selects a texel filter.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

// MipFilter selects filtering between mip levels.
type MipFilter uint8

const (
	MipNone MipFilter = iota
	MipNearest
	MipLinear
)

// Wrap selects texture addressing along one axis.
type Wrap uint8

const (
	WrapRepeat Wrap = iota
	WrapClamp
)

// SamplerState is the full per-image sampling configuration. The cache
// tracks the last state applied per entry and suppresses redundant
// SetSampler calls.
type SamplerState struct {
	Min, Mag     Filter
	Mip          MipFilter
	WrapS, WrapT Wrap
	Anisotropy   float32
	LODBias      float32
}

// UploadSpec describes one mip level's pixels for Backend.Upload. When Sub
// is set, the pixels replace the (X, Y, Width, Height) region of an existing
// level; otherwise they define the whole level.
type UploadSpec struct {
	Level         int
	X, Y          int
	Width, Height int
	Format        gecore.OutFormat
	ByteAlign     int
	Pix           []byte
	Sub           bool
}

// Backend is the host graphics interface the cache drives. The cache owns
// the images it creates and balances every CreateImage with DestroyImage.
// Implementations are not required to be safe for concurrent use; the cache
// calls them from its single-threaded bind path only.
type Backend interface {
	// CreateImage allocates an image. Allocation failure is reported with an
	// error satisfying errors.Is(err, ErrOOM).
	CreateImage(width, height int, format gecore.OutFormat) (ImageID, error)

	// DestroyImage releases an image and its levels.
	DestroyImage(id ImageID)

	// Upload stores pixels into an image per spec.
	Upload(id ImageID, spec UploadSpec) error

	// GenerateMipmaps fills levels 1..n of an image from level 0.
	GenerateMipmaps(id ImageID) error

	// SetSampler applies sampling parameters to an image.
	SetSampler(id ImageID, s SamplerState)

	// MaxAnisotropy reports the largest anisotropy level the backend
	// supports; 1 disables anisotropic filtering.
	MaxAnisotropy() float32

	// Bind makes an image the active texture. Bind(NoImage) unbinds.
	Bind(id ImageID)

	// BindTargetColor makes a render target's color image the active
	// texture without the cache owning it.
	BindTargetColor(rt *RenderTarget)
}

// RenderingMode mirrors the emulator's global framebuffer strategy. It
// gates the approximate sub-region render-target attachment.
type RenderingMode int

const (
	ModeNonBuffered RenderingMode = iota
	ModeBuffered
	ModeReadback
)

// FilterMode optionally overrides the register-selected texture filtering.
type FilterMode int

const (
	FilterAuto FilterMode = iota
	FilterForceNearest
	FilterForceLinear
)

// BindResult reports what a Bind resolved to.
type BindResult struct {
	// Bound is false when the bind resolved to no texture (invalid source
	// address or failed decode); the backend was told to bind nothing.
	Bound bool

	// Width and Height are the texels the draw should address.
	Width, Height int

	// FlipTexture is set when the bound image is a render target stored
	// upside-down relative to decoded textures.
	FlipTexture bool

	// Alpha is the decoded buffer's alpha classification. Aliased render
	// targets without an alpha channel report AlphaFull.
	Alpha gecore.AlphaStatus

	// SkipDraw is set when the draw would sample undefined contents (an
	// aliased target with no live image) and should be dropped.
	SkipDraw bool
}
