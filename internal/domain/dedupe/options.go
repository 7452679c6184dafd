package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*windowDeduper)

// WithMaxSize sets how many recent ids are remembered.
// If maxSize <= 0 the deduper is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *windowDeduper) {
		d.maxSize = maxSize
	}
}
