package gecore

// Memory is the read-only view of the emulated address space the texture
// unit consumes. The memory subsystem owns the backing storage; slices
// returned by Bytes alias it and must not be written or retained across
// emulated writes.
type Memory interface {
	// IsValid reports whether addr maps to readable emulated memory.
	IsValid(addr uint32) bool

	// Bytes returns size bytes starting at addr, or nil if any byte of the
	// range is unmapped.
	Bytes(addr, size uint32) []byte
}
