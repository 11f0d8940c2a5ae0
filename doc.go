// Package getex emulates the texture unit of the GE, the GPU of a classic
// handheld console.
//
// # Overview
//
// getex reconstructs displayable images from raw texture bytes in an emulated
// address space plus a hardware register snapshot, and manages image lifetime
// for a host rendering backend across thousands of binds per frame.
//
// # Quick Start
//
//	import "github.com/gogpu/getex"
//
//	cache := getex.New(backend, mem)
//
//	// Once per draw call with texturing enabled:
//	res, err := cache.Bind(&st)
//
//	// Once per frame boundary:
//	cache.StartFrame()
//
//	// From the memory subsystem's write barrier:
//	cache.Invalidate(addr, size, getex.InvalidateDefault)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Cache, Backend, RenderTarget, Stats
//   - gecore: register snapshot (State) and format vocabulary
//   - internal/decode: unswizzle, palette, block decompression, repacking
//   - internal/texhash: change-detection hash strategies
//   - Backends: backend/soft (CPU), backend/gpuctx, backend/wgpu
//
// A cache hit revalidates cheaply by hashing the first word of the source; a
// miss decodes and uploads. Live render targets alias into the cache so
// render-to-texture reads never see stale memory.
//
// # Concurrency
//
// The cache is single-threaded by contract: one Bind resolves completely
// before the next begins, and invalidation calls must be sequenced before the
// next overlapping bind. Only SetLogger is safe for concurrent use.
package getex

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
