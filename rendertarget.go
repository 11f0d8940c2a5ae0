package getex

import "github.com/gogpu/getex/gecore"

// RenderTarget is a live framebuffer owned by the render-target manager.
// The cache only holds non-owning references; destroying a target detaches
// it from any aliased entries but never frees anything.
type RenderTarget struct {
	// Address and Stride locate the target's color buffer in the emulated
	// address space. Stride is in texels.
	Address uint32
	Stride  uint32

	// Format is the color buffer's pixel format.
	Format gecore.BufFormat

	// Width and Height in texels.
	Width, Height int

	// Image is the backend image holding the rendered color, or NoImage
	// before the first render.
	Image ImageID

	// LastFrameRender is stamped by the render-target manager when the
	// target is drawn to; newer targets win attachment conflicts.
	LastFrameRender uint32

	// LastFrameUsed is stamped by the cache when an aliased entry binds.
	LastFrameUsed uint32
}

// RenderTargetEvent is a render-target manager notification.
type RenderTargetEvent int

const (
	TargetCreated RenderTargetEvent = iota
	TargetUpdated
	TargetDestroyed
)

// aliasInvalid marks an entry aliased to a target whose format does not
// match; drawing with it would sample garbage, so the bind skips the draw.
const aliasInvalid = -1

// maxSubareaRows bounds how far below a target's base address a texture may
// start and still be treated as a sub-region of it.
const maxSubareaRows = 32

// NotifyRenderTarget registers, refreshes or withdraws a render target.
// Created and Updated scan cache entries within the target's footprint and
// attach it where compatible; Destroyed detaches it from aliased entries
// without deleting them.
func (c *Cache) NotifyRenderTarget(ev RenderTargetEvent, rt *RenderTarget) {
	switch ev {
	case TargetCreated, TargetUpdated:
		if ev == TargetCreated {
			c.targets = append(c.targets, rt)
		}
		c.attachCandidates(rt)
	case TargetDestroyed:
		for i, t := range c.targets {
			if t == rt {
				c.targets = append(c.targets[:i], c.targets[i+1:]...)
				break
			}
		}
		for _, e := range c.cache {
			if e.target == rt {
				e.target = nil
				if e.invalidHint == aliasInvalid {
					e.invalidHint = 0
				}
			}
		}
	}
}

// attachCandidates scans entries whose address falls inside the target's
// footprint, padded by a generous row count to catch sub-region rendering.
func (c *Cache) attachCandidates(rt *RenderTarget) {
	base := rt.Address & addrMask
	span := rt.Stride * uint32(rt.Format.BytesPerPixel()) * maxSubareaRows
	for _, e := range c.cache {
		if e.addr < base || e.addr >= base+span {
			continue
		}
		c.attachTarget(e, rt, e.addr == base && e.key == uint64(base)<<32)
	}
}

// attachTarget applies the attachment rules for one entry. Exact matches
// (same address, non-paletted key) always attach, degrading to an invalid
// alias on format mismatch. Offset sub-regions attach only under buffered
// rendering modes, only at equal stride with a compatible format, and are
// knowingly approximate: the row offset is not tracked.
func (c *Cache) attachTarget(e *entry, rt *RenderTarget, exact bool) {
	if exact {
		if rt.Format.MatchesTexFormat(e.format) {
			c.attachValid(e, rt)
			return
		}
		c.warnOnce("alias-format",
			"render target format differs from texture format; aliasing anyway",
			"target", rt.Address, "texformat", e.format.String())
		c.attachInvalid(e, rt)
		return
	}
	if c.mode != ModeNonBuffered && c.mode != ModeBuffered {
		return
	}
	if rt.Stride != e.bufw || !rt.Format.CompatTexFormat(e.format) {
		c.warnOnce("alias-subarea-mismatch",
			"texture overlaps render target but stride or format differs; not aliasing",
			"target", rt.Address, "texaddr", e.addr)
		return
	}
	c.warnOnce("alias-subarea",
		"texture aliases a sub-region of a render target; row offset is approximated",
		"target", rt.Address, "texaddr", e.addr)
	c.attachValid(e, rt)
}

// attachValid attaches rt if the entry has no attachment, an invalidated
// one, or one strictly older by last-render frame.
func (c *Cache) attachValid(e *entry, rt *RenderTarget) {
	if e.target != nil && e.invalidHint != aliasInvalid &&
		e.target.LastFrameRender >= rt.LastFrameRender {
		return
	}
	c.alias(e, rt)
	e.invalidHint = 0
}

// attachInvalid records the alias but poisons it so binds skip the draw.
func (c *Cache) attachInvalid(e *entry, rt *RenderTarget) {
	if e.target != nil && e.invalidHint != aliasInvalid {
		return
	}
	c.alias(e, rt)
	e.invalidHint = aliasInvalid
}

// alias points the entry at the target. An aliased entry never holds a
// decoded image, so any owned one is destroyed here.
func (c *Cache) alias(e *entry, rt *RenderTarget) {
	if e.image != NoImage {
		c.destroyImage(e.image)
		e.image = NoImage
	}
	e.target = rt
}

// bindTarget resolves a bind against an aliased entry: no decoding, the
// target's color image is the texture.
func (c *Cache) bindTarget(e *entry, st *gecore.State) BindResult {
	rt := e.target
	e.lastFrame = c.frame
	rt.LastFrameUsed = c.frame
	c.stats.AliasBinds++

	res := BindResult{
		Bound:       true,
		Width:       rt.Width,
		Height:      rt.Height,
		FlipTexture: true,
		Alpha:       gecore.AlphaUnknown,
	}
	if rt.Format == gecore.BufFmt5650 {
		res.Alpha = gecore.AlphaFull
	}
	if rt.Image == NoImage || e.invalidHint == aliasInvalid {
		// Never sample a target that has not been rendered (or whose
		// format lies): that would read undefined memory.
		res.SkipDraw = true
		c.bindImage(NoImage)
		return res
	}
	c.backend.BindTargetColor(rt)
	c.lastBound = unknownBound
	return res
}

// warnOnce logs a warning the first time a cause is seen.
func (c *Cache) warnOnce(cause, msg string, args ...any) {
	if c.warned[cause] {
		return
	}
	c.warned[cause] = true
	Logger().Warn(msg, args...)
}
