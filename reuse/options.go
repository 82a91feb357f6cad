package reuse

// Accumulator receives every Result produced by an Engine.
// *histogram.Histogram is the standard implementation.
type Accumulator interface {
	Observe(r Result)
}

// Metrics exposes engine-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit(distance int)
	Cold()
	Beyond()
	Evict()
	Size(tracked int)
}

// EvictedFilter configures the Bloom filter that remembers keys dropped by
// the MaxSize bound.
type EvictedFilter struct {
	// ExpectedKeys sizes the filter (0 => 4*MaxSize, at least 1024).
	ExpectedKeys uint
	// FalsePositiveRate is the target false positive probability
	// (0 => 0.01). Must be in (0, 1).
	FalsePositiveRate float64
}

// Options configures an Engine. Zero values are safe; defaults applied in New():
//   - MaxSize 0      => unbounded, exact distances
//   - nil Metrics    => NoopMetrics
//   - nil Accumulator => results are only returned
type Options struct {
	// MaxSize bounds the number of tracked keys (0 = unbounded).
	// Values above MaxTracked fail with an allocation failure.
	MaxSize int

	// Accumulator aggregates results (e.g. a histogram). Its lifecycle is
	// independent of Engine.Reset.
	Accumulator Accumulator

	// EvictedFilter distinguishes evicted keys from new ones. Requires
	// MaxSize > 0; nil disables it.
	EvictedFilter *EvictedFilter

	// Observability
	Metrics Metrics
}
