package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of ids kept in memory.
// If maxSize > 0 the oldest id is evicted when full.
// If maxSize <= 0 the set is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// WithOnEvict registers fn to be called with each id dropped to make room.
// An evicted id is accepted again if it is resubmitted, so callers usually
// log it. fn runs with the deduper locked and must not call back into it.
func WithOnEvict(fn func(id string)) Option {
	return func(d *inMemoryDeduper) {
		d.onEvict = fn
	}
}
