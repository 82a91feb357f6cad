// Package reuse measures reuse distance (LRU stack distance) over a stream
// of 64-bit keys.
//
// For every access, Engine.Add reports how many distinct keys were accessed
// since the previous access to the same key. A key seen for the first time
// is Cold (infinite distance). Histograms of these distances give the miss
// ratio of an LRU cache of any size in a single pass (see package histogram).
//
// Design
//
//   - Recency order: a size-augmented splay tree over an index-addressed
//     arena (internal/ranktree). The node of each key sits at the position
//     of its latest access; the number of nodes newer than it is the
//     distance. Add is O(log n) amortized.
//
//   - Key index: a map from key to arena handle. The engine is its only
//     writer and pairs every tree insert/evict with exactly one index update.
//
//   - Bounded mode: with Options.MaxSize = m > 0 at most m keys are tracked.
//     The least recent key is evicted when a new key pushes the set past m.
//     Distances >= m are then reported as Cold, never as a wrong finite
//     value, and finite results are always < m.
//
//   - Evicted-key filter: Options.EvictedFilter adds a Bloom filter of keys
//     dropped by the bound. Re-accesses to those keys report Beyond instead
//     of Cold. False positives may label a new key Beyond.
//
//   - Accumulator and Metrics: each result is passed to Options.Accumulator
//     (e.g. *histogram.Histogram) and to Options.Metrics (NoopMetrics by
//     default; metrics/prom exports to Prometheus).
//
// Basic usage
//
//	e, err := reuse.New(reuse.Options{})
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//	for _, k := range []reuse.Key{1, 2, 1} {
//	    r, _ := e.Add(k) // Cold, Cold, 1
//	    fmt.Println(r)
//	}
//
// Bounded, with a histogram
//
//	h := histogram.New(0)
//	e, _ := reuse.New(reuse.Options{MaxSize: 1 << 20, Accumulator: h})
//	...
//	fmt.Println(h.MissRatio(4096))
//
// Lifecycle & thread-safety
//
// An Engine is single-writer: it has no internal locking, and Add, Reset
// and Close must not be called concurrently on the same Engine. Separate
// engines share nothing and may be used from different goroutines. After
// Close every method that mutates or measures returns an InvalidHandle
// error; a nil *Engine behaves the same way. Broken internal invariants
// panic, since continuing would report silently wrong distances.
package reuse
