package histogram

import "github.com/IvanBrykalov/reusedist/internal/util"

// Point is one sample of a miss ratio curve.
type Point struct {
	Size      int     `json:"size" yaml:"size"`
	MissRatio float64 `json:"miss_ratio" yaml:"miss_ratio"`
}

// MissRatio estimates the miss ratio of an LRU cache holding size entries:
// an access hits iff its distance is < size. Cold and Beyond accesses
// always miss. Inside a power-of-two bucket hits are interpolated linearly,
// so the value is exact for size <= Exact(). An empty histogram yields 0.
func (h *Histogram) MissRatio(size int) float64 {
	if h.total == 0 {
		return 0
	}
	return 1 - h.hitsBelow(size)/float64(h.total)
}

// Curve samples MissRatio at each size.
func (h *Histogram) Curve(sizes []int) []Point {
	out := make([]Point, len(sizes))
	for i, s := range sizes {
		out[i] = Point{Size: s, MissRatio: h.MissRatio(s)}
	}
	return out
}

// DefaultSizes returns 1, 2, 4, ... up to the first power of two >= limit.
func DefaultSizes(limit int) []int {
	if limit < 1 {
		limit = 1
	}
	top := int(util.NextPow2(uint64(limit)))
	var sizes []int
	for s := 1; s <= top; s <<= 1 {
		sizes = append(sizes, s)
	}
	return sizes
}

func (h *Histogram) hitsBelow(size int) float64 {
	if size <= 0 {
		return 0
	}
	var hits uint64
	for d := 0; d < min(size, len(h.exact)); d++ {
		hits += h.exact[d]
	}
	if size <= len(h.exact) {
		return float64(hits)
	}
	total := float64(hits)
	for i, c := range h.buckets {
		lo, hi := h.bucketBounds(i)
		if hi <= size {
			total += float64(c)
			continue
		}
		if lo < size {
			total += float64(c) * float64(size-lo) / float64(hi-lo)
		}
		break
	}
	return total
}
