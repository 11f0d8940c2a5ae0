package getex

import "errors"

// Errors returned by cache operations and recognized from backends.
var (
	// ErrOOM reports that the backend could not allocate an image. Backends
	// return it (or wrap it) from CreateImage and Upload; the cache reacts by
	// entering low-memory mode, decimating and retrying the upload once.
	ErrOOM = errors.New("getex: backend out of memory")
)
