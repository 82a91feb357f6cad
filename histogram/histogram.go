// Package histogram aggregates reuse distances into counts from which a
// miss ratio curve (MRC) is derived.
//
// Distances below the resolution limit are counted exactly; larger ones
// fall into power-of-two buckets [2^i, 2^(i+1)). A Histogram is owned by a
// single writer (the engine feeding it); workers that measure in parallel
// each keep their own and combine them with Merge.
package histogram

import (
	"math"

	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/util"
	"github.com/IvanBrykalov/reusedist/reuse"
)

const (
	// DefaultExact is the resolution limit used when New receives 0.
	DefaultExact = 1024
	// MaxExact caps the resolution limit (128 MiB of exact counters).
	MaxExact = 1 << 24
)

// Histogram counts reuse distances. It implements reuse.Accumulator.
type Histogram struct {
	exact   []uint64 // exact[d] for d < len(exact); len is a power of two
	shift   int      // log2(len(exact))
	buckets []uint64 // buckets[i] counts d in [len(exact)<<i, len(exact)<<(i+1))

	total  uint64
	cold   uint64
	beyond uint64
	maxD   int
}

// New returns an empty histogram with exact counts below exact (rounded up
// to a power of two; <= 0 => DefaultExact, clamped to MaxExact).
func New(exact int) *Histogram {
	if exact <= 0 {
		exact = DefaultExact
	}
	exact = min(exact, MaxExact)
	n := util.NextPow2(uint64(exact))
	return &Histogram{
		exact: make([]uint64, n),
		shift: util.Log2Floor(n),
	}
}

// Compile-time check: Histogram is a reuse.Accumulator.
var _ reuse.Accumulator = (*Histogram)(nil)

// Observe adds one result.
func (h *Histogram) Observe(r reuse.Result) {
	h.total++
	switch r {
	case reuse.Cold:
		h.cold++
		return
	case reuse.Beyond:
		h.beyond++
		return
	}
	d, ok := r.Distance()
	if !ok {
		// negative values are error codes, not accesses
		h.total--
		return
	}
	h.add(d, 1)
}

// Reset zeroes every counter, keeping the resolution.
func (h *Histogram) Reset() {
	clear(h.exact)
	h.buckets = h.buckets[:0]
	h.total, h.cold, h.beyond, h.maxD = 0, 0, 0, 0
}

// Exact returns the resolution limit.
func (h *Histogram) Exact() int { return len(h.exact) }

// Total returns the number of observed accesses.
func (h *Histogram) Total() uint64 { return h.total }

// Cold returns the number of Cold results.
func (h *Histogram) Cold() uint64 { return h.cold }

// Beyond returns the number of Beyond results.
func (h *Histogram) Beyond() uint64 { return h.beyond }

// Hits returns the number of finite distances.
func (h *Histogram) Hits() uint64 { return h.total - h.cold - h.beyond }

// MaxDistance returns the largest finite distance observed.
func (h *Histogram) MaxDistance() int { return h.maxD }

// Count returns the exact number of occurrences of distance d, or false
// when d lies above the resolution limit.
func (h *Histogram) Count(d int) (uint64, bool) {
	if d < 0 || d >= len(h.exact) {
		return 0, false
	}
	return h.exact[d], true
}

// Merge adds other's counts into h. Both must share the same resolution.
func (h *Histogram) Merge(other *Histogram) error {
	if other == nil {
		return nil
	}
	if len(other.exact) != len(h.exact) {
		return errs.InvalidConfig("Histogram.Merge", len(other.exact),
			"resolution differs from the destination histogram")
	}
	for d, c := range other.exact {
		h.exact[d] += c
	}
	h.growTo(len(other.buckets))
	for i, c := range other.buckets {
		h.buckets[i] += c
	}
	h.total += other.total
	h.cold += other.cold
	h.beyond += other.beyond
	h.maxD = max(h.maxD, other.maxD)
	return nil
}

// Quantile returns the smallest distance d such that at least q of the
// finite distances are <= d. Above the resolution limit the answer is the
// lower bound of the bucket. ok is false when nothing finite was observed.
func (h *Histogram) Quantile(q float64) (d int, ok bool) {
	hits := h.Hits()
	if hits == 0 {
		return 0, false
	}
	q = min(max(q, 0), 1)
	// rank of the q-th distance, rounded up; the epsilon absorbs products
	// like 0.99*100 landing just above an integer
	target := uint64(math.Ceil(q*float64(hits) - 1e-9))
	if target == 0 {
		target = 1
	}
	var seen uint64
	for i, c := range h.exact {
		seen += c
		if seen >= target {
			return i, true
		}
	}
	for i, c := range h.buckets {
		seen += c
		if seen >= target {
			lo, _ := h.bucketBounds(i)
			return lo, true
		}
	}
	return h.maxD, true
}

// -------------------- internals --------------------

func (h *Histogram) add(d int, n uint64) {
	if d > h.maxD {
		h.maxD = d
	}
	if d < len(h.exact) {
		h.exact[d] += n
		return
	}
	i := util.Log2Floor(uint64(d)) - h.shift
	h.growTo(i + 1)
	h.buckets[i] += n
}

func (h *Histogram) growTo(n int) {
	for len(h.buckets) < n {
		h.buckets = append(h.buckets, 0)
	}
}

// bucketBounds returns the half-open distance range [lo, hi) of bucket i.
func (h *Histogram) bucketBounds(i int) (lo, hi int) {
	lo = len(h.exact) << i
	return lo, lo << 1
}
