// Package gecore models the texture-related register state of a PSP-class
// embedded GPU ("GE") as plain Go values.
//
// The emulated hardware configures textures through memory-mapped registers:
// per-mip-level base addresses and storage strides, a pixel-format code, CLUT
// (palette) load and index-transform parameters, and sampling settings.
// Instead of reading that state from globals, the cache and decoder receive
// an immutable State snapshot per call, so every decode is a pure function of
// its inputs.
//
// gecore also defines the fixed format vocabulary of the hardware contract:
// texture formats (TexFormat), palette formats (ClutFormat), the uniform
// output layouts produced by the decoder (OutFormat), and render-target color
// formats (BufFormat). These are hardware codes, not an extensible codec
// registry.
package gecore
