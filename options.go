package getex

import "github.com/gogpu/getex/internal/texhash"

// Option configures a Cache during creation.
// Use functional options to customize Cache behavior.
//
// Example:
//
//	// Default configuration
//	cache := getex.New(backend, mem)
//
//	// Custom stats collector and forced nearest filtering
//	cache := getex.New(backend, mem,
//		getex.WithStats(stats),
//		getex.WithFilterMode(getex.FilterForceNearest))
type Option func(*cacheOptions)

// cacheOptions holds optional configuration for Cache creation.
type cacheOptions struct {
	hash       texhash.Strategy
	stats      *Stats
	mode       RenderingMode
	filter     FilterMode
	anisotropy float32
	mipmaps    bool
}

// defaultOptions returns the default cache options.
func defaultOptions() cacheOptions {
	return cacheOptions{
		hash:       texhash.Best(),
		stats:      nil, // Will be created if nil
		mode:       ModeBuffered,
		filter:     FilterAuto,
		anisotropy: 1,
		mipmaps:    true,
	}
}

// WithHashStrategy sets the change-detection hash implementation. The
// default is the best strategy for the host; inject a custom one for
// deterministic tests or platform-specific acceleration.
func WithHashStrategy(s texhash.Strategy) Option {
	return func(o *cacheOptions) {
		if s != nil {
			o.hash = s
		}
	}
}

// WithStats injects a stats collector shared with the caller's diagnostics.
func WithStats(s *Stats) Option {
	return func(o *cacheOptions) {
		o.stats = s
	}
}

// WithRenderingMode sets the framebuffer strategy the emulator runs under,
// which gates sub-region render-target aliasing.
func WithRenderingMode(m RenderingMode) Option {
	return func(o *cacheOptions) {
		o.mode = m
	}
}

// WithFilterMode overrides register-selected texture filtering.
func WithFilterMode(m FilterMode) Option {
	return func(o *cacheOptions) {
		o.filter = m
	}
}

// WithAnisotropy requests anisotropic filtering up to the given level. The
// cache clamps it to the backend's maximum.
func WithAnisotropy(level float32) Option {
	return func(o *cacheOptions) {
		if level >= 1 {
			o.anisotropy = level
		}
	}
}

// WithMipmaps enables or disables mipmap generation and mip filtering.
// Enabled by default.
func WithMipmaps(enabled bool) Option {
	return func(o *cacheOptions) {
		o.mipmaps = enabled
	}
}
