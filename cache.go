package getex

import (
	"errors"

	"github.com/gogpu/getex/gecore"
	"github.com/gogpu/getex/internal/decode"
	"github.com/gogpu/getex/internal/texhash"
)

// addrMask folds mirrored address ranges onto the physical ones.
const addrMask = 0x0FFFFFFF

// Cache policy constants, tuned on real workloads.
const (
	// killAge and killAgeLowMem are the primary-tier eviction ages in
	// frames; the short age applies in low-memory mode.
	killAge       = 200
	killAgeLowMem = 60

	// secondKillAge is the secondary-tier eviction age.
	secondKillAge = 100

	// decimateInterval spaces out decimation sweeps. Prime, so it does not
	// sync up with other periodic work.
	decimateInterval = 13

	// maxFootprint is the largest plausible single-texture footprint in
	// bytes; invalidation ranges are padded by it.
	maxFootprint = 512 * 512 * 4

	// maxFullHashBackoff caps the full-hash countdown. Long-stable
	// textures are statistically unlikely to change soon, but not never.
	maxFullHashBackoff = 2048

	// hintThreshold and hintThresholdSmall are the soft-invalidation
	// counts that force a recheck; small textures (dim code <= 0x909,
	// both extents at most 512) recheck much sooner since rehashing them
	// is cheap.
	hintThreshold      = 180
	hintThresholdSmall = 15
	smallDim           = 0x909

	// regainTrust is how many bind-frames an Unreliable entry must survive
	// without another failure before it may try for Reliable again.
	regainTrust = 1000

	// reliableAfter is how many bind-frames of matching scheduled checksums
	// promote a Hashing entry to Reliable, after which only the cheap probe
	// and explicit invalidation can dethrone it.
	reliableAfter = 32

	// Secondary-cache window: entries consult and feed the secondary tier
	// only after a few failures (content actually cycles) and before
	// pathological thrashing.
	secondMinInvalidated = 2
	secondMaxInvalidated = 128
	secondDiscountAbove  = 8
)

// unknownBound forces the next bindImage call through to the backend.
const unknownBound = ^ImageID(0)

// Cache is the texture cache and decode pipeline. It is not safe for
// concurrent use; see the package documentation for the threading contract.
type Cache struct {
	backend Backend
	mem     gecore.Memory
	dec     *decode.Decoder
	hash    texhash.Strategy
	stats   *Stats

	cache  map[uint64]*entry
	second map[uint64]*entry

	targets []*RenderTarget
	warned  map[string]bool

	mode       RenderingMode
	filter     FilterMode
	anisotropy float32
	mipmaps    bool

	frame       uint32
	lastBound   ImageID
	lowMemory   bool
	clearNext   bool
	decimateCtr int
}

// New creates a texture cache over the given backend and emulated memory.
func New(backend Backend, mem gecore.Memory, opts ...Option) *Cache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.stats == nil {
		o.stats = &Stats{}
	}
	return &Cache{
		backend:    backend,
		mem:        mem,
		dec:        decode.NewDecoder(mem, o.hash),
		hash:       o.hash,
		stats:      o.stats,
		cache:      make(map[uint64]*entry),
		second:     make(map[uint64]*entry),
		warned:     make(map[string]bool),
		mode:       o.mode,
		filter:     o.filter,
		anisotropy: o.anisotropy,
		mipmaps:    o.mipmaps,
		lastBound:  unknownBound,
	}
}

// Stats returns the cache's stats collector.
func (c *Cache) Stats() *Stats { return c.stats }

// LoadClut captures a hardware palette load. The palette is converted lazily
// on the next indexed bind, since the format registers may still change.
func (c *Cache) LoadClut(addr, bytes uint32) {
	c.dec.LoadClut(addr, bytes)
}

// StartFrame marks a frame boundary: advances the frame counter, runs the
// deferred full clear if one was requested, otherwise decimates.
func (c *Cache) StartFrame() {
	c.frame++
	c.lastBound = unknownBound
	if c.clearNext {
		c.clearNext = false
		c.Clear(true)
		return
	}
	c.decimate(false)
}

// ClearNextFrame schedules a full clear at the next StartFrame. Used when a
// backend context change is about to invalidate every image handle.
func (c *Cache) ClearNextFrame() {
	c.clearNext = true
}

// Clear drops both cache tiers. When releaseImages is false the backend
// handles are assumed already dead (context loss) and are not destroyed.
func (c *Cache) Clear(releaseImages bool) {
	if releaseImages {
		for _, e := range c.cache {
			c.releaseEntry(e)
		}
		for _, e := range c.second {
			c.releaseEntry(e)
		}
	}
	if len(c.cache) > 0 || len(c.second) > 0 {
		Logger().Info("texture cache cleared",
			"primary", len(c.cache), "secondary", len(c.second))
	}
	clear(c.cache)
	clear(c.second)
	c.lastBound = unknownBound
}

// decimate sweeps both tiers for entries unused beyond their age threshold.
// Sweeps are spaced out by decimateInterval calls unless forced.
func (c *Cache) decimate(force bool) {
	if !force {
		c.decimateCtr++
		if c.decimateCtr < decimateInterval {
			return
		}
	}
	c.decimateCtr = 0

	age := uint32(killAge)
	if c.lowMemory {
		age = killAgeLowMem
	}
	for key, e := range c.cache {
		if c.frame-e.lastFrame <= age {
			continue
		}
		c.releaseEntry(e)
		delete(c.cache, key)
		c.stats.Evictions++
	}
	for key, e := range c.second {
		if !c.lowMemory && c.frame-e.lastFrame <= secondKillAge {
			continue
		}
		c.releaseEntry(e)
		delete(c.second, key)
		c.stats.Evictions++
	}
}

// releaseEntry destroys the entry's owned image, if any. Aliased targets
// are never owned and are left alone.
func (c *Cache) releaseEntry(e *entry) {
	if e.image != NoImage {
		c.destroyImage(e.image)
		e.image = NoImage
	}
}

func (c *Cache) destroyImage(id ImageID) {
	if c.lastBound == id {
		c.lastBound = unknownBound
	}
	c.backend.DestroyImage(id)
}

// bindImage binds id, suppressing the call if it is already bound.
func (c *Cache) bindImage(id ImageID) {
	if c.lastBound == id {
		return
	}
	c.backend.Bind(id)
	c.lastBound = id
}

// Bind resolves the texture described by st to a backend image, decoding and
// uploading on a miss. Decode-time anomalies are contained: they produce an
// unbound result and log lines, never an error. The returned error is
// reserved for unrecoverable backend failures.
func (c *Cache) Bind(st *gecore.State) (BindResult, error) {
	c.stats.Binds++

	addr := st.LevelAddr[0] & addrMask
	if !c.mem.IsValid(st.LevelAddr[0]) {
		Logger().Debug("texture address invalid, binding nothing", "addr", st.LevelAddr[0])
		c.bindImage(NoImage)
		return BindResult{}, nil
	}

	if !st.Format.Valid() {
		// Degrade, don't abort: substitute a direct 16-bit read so the
		// frame still renders.
		c.warnOnce("bad-format", "unsupported texture format code, substituting 5650",
			"format", uint8(st.Format))
		sub := *st
		sub.Format = gecore.TexFmt5650
		st = &sub
	}

	bufw := gecore.MaskStride(addr, st.LevelStride[0])
	w, h := st.Width(0), st.Height(0)

	var clutHash uint32
	if st.Format.Indexed() {
		clutHash = c.dec.ClutHash(st)
	}
	key := uint64(addr) << 32
	if st.Format.Indexed() {
		// XOR in the raw format register so equal-hash palettes in
		// different formats do not collide.
		key |= uint64(clutHash ^ st.ClutFormatRaw)
	}

	if e, ok := c.cache[key]; ok && e.target != nil {
		return c.bindTarget(e, st), nil
	}

	mini := c.miniHash(addr)
	maxLevel := c.mipLevels(st)

	e, ok := c.cache[key]
	var (
		replaceImage  bool
		fullHash      uint32
		fullHashValid bool
	)
	if ok {
		match := e.matches(st.Dim(0), st.Format, maxLevel)
		doDelete := true

		if match {
			rehash := e.status == statusUnreliable

			if e.lastFrame != c.frame {
				diff := int(c.frame - e.lastFrame)
				e.numFrames++
				if e.nextFullHash < diff {
					e.nextFullHash = min(maxFullHashBackoff, e.numFrames)
					rehash = true
				} else {
					e.nextFullHash -= diff
				}
			}

			if e.invalidHint > hintThreshold ||
				(e.invalidHint > hintThresholdSmall && st.Dim(0) <= smallDim) {
				e.invalidHint = 0
				rehash = true
			}

			hashFail := false
			if mini != e.miniHash {
				fullHash = c.fullHash(st, addr, bufw, h)
				fullHashValid = true
				if fullHash != e.fullHash {
					hashFail = true
				} else {
					// Only the first word wobbled; remember it so the next
					// bind doesn't repeat the full checksum.
					e.miniHash = mini
				}
			} else if rehash && e.status != statusReliable {
				fullHash = c.fullHash(st, addr, bufw, h)
				fullHashValid = true
				if fullHash != e.fullHash {
					hashFail = true
				} else if e.status == statusUnreliable && e.numFrames > regainTrust {
					e.status = statusHashing
				} else if e.status == statusHashing && e.numFrames > reliableAfter {
					e.status = statusReliable
				}
			}

			if hashFail {
				match = false
				e.status = statusUnreliable
				e.numFrames = 0
				c.stats.HashFails++

				// Don't give up yet: the content may be one we've decoded
				// before, parked in the secondary tier.
				if e.numInvalidated > secondMinInvalidated &&
					e.numInvalidated < secondMaxInvalidated && !c.lowMemory {
					secondKey := uint64(fullHash) | uint64(clutHash)<<32
					if s, found := c.second[secondKey]; found {
						if s.matches(st.Dim(0), st.Format, maxLevel) {
							if e.numInvalidated > secondDiscountAbove {
								e.numInvalidated--
							}
							s.lastFrame = c.frame
							c.stats.SecondaryHits++
							c.bindImage(s.image)
							c.updateSampler(s, st, false)
							return c.result(s, w, h), nil
						}
					} else {
						// Archive the current contents before overwriting;
						// a future return to them is then a cheap hit. The
						// image moves to the archived copy, and any entry
						// already parked under the same key is released
						// rather than leaked.
						archived := *e
						archived.target = nil
						archiveKey := uint64(e.fullHash) | uint64(e.clutHash)<<32
						if prev, found := c.second[archiveKey]; found {
							c.releaseEntry(prev)
						}
						c.second[archiveKey] = &archived
						e.image = NoImage
						doDelete = false
					}
				}
			}
		}

		if match && e.image == NoImage {
			// A target detach can leave a matching entry with no image;
			// there is nothing to bind, so fall through to a reload.
			match = false
		}

		if match {
			e.lastFrame = c.frame
			c.stats.Hits++
			c.bindImage(e.image)
			c.updateSampler(e, st, false)
			return c.result(e, w, h), nil
		}

		Logger().Debug("texture changed, reloading", "addr", addr, "format", st.Format.String())
		e.numInvalidated++
		if doDelete {
			if e.matches(st.Dim(0), st.Format, maxLevel) && e.image != NoImage {
				// Same shape: replace the pixels in place instead of
				// destroying and reallocating.
				replaceImage = true
			} else {
				c.releaseEntry(e)
			}
		}
		if e.status == statusReliable {
			e.status = statusHashing
		}
	} else {
		e = &entry{key: key, status: statusHashing}
		c.cache[key] = e
	}

	e.addr = addr
	e.bufw = bufw
	e.format = st.Format
	e.dim = st.Dim(0)
	e.maxLevel = maxLevel
	e.miniHash = mini
	e.clutHash = clutHash
	if !fullHashValid {
		fullHash = c.fullHash(st, addr, bufw, h)
	}
	e.fullHash = fullHash
	e.sizeInRAM = st.Format.BitsPerPixel() * bufw * uint32(h) / 2 / 8
	e.lastFrame = c.frame

	if err := c.load(e, st, replaceImage); err != nil {
		return BindResult{}, err
	}
	if e.image == NoImage {
		c.bindImage(NoImage)
		return BindResult{}, nil
	}
	c.bindImage(e.image)
	c.updateSampler(e, st, true)
	return c.result(e, w, h), nil
}

func (c *Cache) result(e *entry, w, h int) BindResult {
	return BindResult{Bound: true, Width: w, Height: h, Alpha: e.alpha}
}

// load decodes level 0 and uploads it, classifying alpha along the way.
// A backend OOM flips low-memory mode, forces a decimation and retries once.
func (c *Cache) load(e *entry, st *gecore.State, replace bool) error {
	lv, err := c.dec.DecodeLevel(st, 0)
	switch {
	case errors.Is(err, decode.ErrBadAddress):
		Logger().Debug("texture level out of range, binding nothing", "addr", e.addr)
		c.releaseEntry(e)
		return nil
	case errors.Is(err, decode.ErrNoBuffer):
		Logger().Error("decode produced no buffer", "addr", e.addr, "format", st.Format.String())
		c.releaseEntry(e)
		return nil
	case err != nil:
		return err
	}
	c.stats.Decodes++

	if e.invalidatedFrame == c.frame {
		// Known stale this frame; don't trust a scan of bytes that may
		// still be mid-write.
		e.alpha = gecore.AlphaUnknown
	} else {
		e.alpha = decode.ClassifyAlpha(lv.Pix, lv.Format, lv.Width*lv.Height)
	}

	err = c.upload(e, lv, replace)
	if errors.Is(err, ErrOOM) {
		Logger().Info("backend out of memory, entering low-memory mode", "addr", e.addr)
		c.lowMemory = true
		c.decimate(true)
		err = c.upload(e, lv, false)
	}
	if err != nil {
		c.releaseEntry(e)
		return err
	}

	if c.mipmaps && e.maxLevel > 0 {
		if err := c.backend.GenerateMipmaps(e.image); err != nil {
			Logger().Warn("mipmap generation failed", "addr", e.addr, "err", err)
			e.maxLevel = 0
		}
	}
	return nil
}

func (c *Cache) upload(e *entry, lv decode.Level, replace bool) error {
	if replace && e.image != NoImage {
		return c.backend.Upload(e.image, UploadSpec{
			Width: lv.Width, Height: lv.Height,
			Format: lv.Format, ByteAlign: lv.ByteAlign,
			Pix: lv.Pix, Sub: true,
		})
	}
	if e.image == NoImage {
		id, err := c.backend.CreateImage(lv.Width, lv.Height, lv.Format)
		if err != nil {
			return err
		}
		e.image = id
	}
	return c.backend.Upload(e.image, UploadSpec{
		Width: lv.Width, Height: lv.Height,
		Format: lv.Format, ByteAlign: lv.ByteAlign,
		Pix: lv.Pix,
	})
}

// mipLevels returns the usable mip count: the register value clamped at the
// first level with an unmapped address, and 0 when the level registers are
// pinned (mipmapping off).
func (c *Cache) mipLevels(st *gecore.State) int {
	if !st.MipEnabled || !c.mipmaps {
		return 0
	}
	maxLevel := st.MaxLevel
	if maxLevel >= gecore.MaxMipLevels {
		maxLevel = gecore.MaxMipLevels - 1
	}
	for i := 1; i <= maxLevel; i++ {
		if st.LevelAddr[i] == 0 || !c.mem.IsValid(st.LevelAddr[i]) {
			return i - 1
		}
	}
	return maxLevel
}

// miniHash probes the first source word.
func (c *Cache) miniHash(addr uint32) uint32 {
	src := c.mem.Bytes(addr, 4)
	if src == nil {
		return 0
	}
	return c.hash.Mini(src)
}

// fullHash checksums the level-0 source bytes.
func (c *Cache) fullHash(st *gecore.State, addr, bufw uint32, h int) uint32 {
	size := st.Format.BitsPerPixel() * bufw * uint32(h) / 8
	src := c.mem.Bytes(addr, size)
	if src == nil {
		return 0
	}
	return c.hash.Full(src)
}

// updateSampler applies sampling parameters, suppressing redundant backend
// calls. force pushes through after fresh uploads.
func (c *Cache) updateSampler(e *entry, st *gecore.State, force bool) {
	s := c.samplerFor(st, e.maxLevel)
	if !force && e.samplerValid && s == e.sampler {
		return
	}
	e.sampler = s
	e.samplerValid = true
	c.backend.SetSampler(e.image, s)
}

func (c *Cache) samplerFor(st *gecore.State, maxLevel int) SamplerState {
	s := SamplerState{
		Min:        Filter(st.MinFilter & 1),
		Mag:        Filter(st.MagFilter & 1),
		Anisotropy: 1,
		LODBias:    st.LODBias,
	}
	if maxLevel > 0 && st.MinFilter&4 != 0 {
		if st.MinFilter&2 != 0 {
			s.Mip = MipLinear
		} else {
			s.Mip = MipNearest
		}
	}
	switch c.filter {
	case FilterForceNearest:
		s.Min, s.Mag = FilterNearest, FilterNearest
	case FilterForceLinear:
		s.Min, s.Mag = FilterLinear, FilterLinear
	}
	if st.ClampS {
		s.WrapS = WrapClamp
	}
	if st.ClampT {
		s.WrapT = WrapClamp
	}
	if c.anisotropy > 1 && s.Min == FilterLinear {
		s.Anisotropy = min(c.anisotropy, c.backend.MaxAnisotropy())
	}
	return s
}

// DecodePreview decodes one mip level straight to 8-bit RGBA without
// touching the cache or the backend. Debugger and test helper.
func (c *Cache) DecodePreview(st *gecore.State, level int) ([]byte, int, int, error) {
	lv, err := c.dec.DecodeLevel(st, level)
	if err != nil {
		return nil, 0, 0, err
	}
	n := lv.Width * lv.Height
	out := make([]byte, n*4)
	gecore.ExpandRGBA8888(out, lv.Pix, lv.Format, n)
	return out, lv.Width, lv.Height, nil
}
