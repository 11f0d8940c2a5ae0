package getex

// Stats counts cache activity. A collector is injected with WithStats so
// diagnostics are explicit collaborators rather than ambient globals; the
// cache always writes to one (a private collector by default).
//
// Counters are plain fields updated from the single-threaded bind path; read
// them between frames.
type Stats struct {
	// Binds counts Bind calls.
	Binds uint64

	// Hits counts binds resolved from the primary tier without decoding.
	Hits uint64

	// AliasBinds counts binds resolved to a live render target.
	AliasBinds uint64

	// Decodes counts full texture decodes (misses and reloads).
	Decodes uint64

	// HashFails counts full-checksum mismatches on existing entries.
	HashFails uint64

	// SecondaryHits counts hash failures recovered from the secondary tier.
	SecondaryHits uint64

	// Invalidations counts entries hit by Invalidate calls (All excluded).
	Invalidations uint64

	// Evictions counts entries removed by decimation.
	Evictions uint64
}
