package histogram

// Bucket is a non-empty distance range in a Snapshot.
type Bucket struct {
	Lo    int    `json:"lo" yaml:"lo"` // inclusive
	Hi    int    `json:"hi" yaml:"hi"` // exclusive
	Count uint64 `json:"count" yaml:"count"`
}

// Snapshot is a serializable copy of a Histogram.
type Snapshot struct {
	Total       uint64   `json:"total" yaml:"total"`
	Hits        uint64   `json:"hits" yaml:"hits"`
	Cold        uint64   `json:"cold" yaml:"cold"`
	Beyond      uint64   `json:"beyond" yaml:"beyond"`
	MaxDistance int      `json:"max_distance" yaml:"max_distance"`
	P50         int      `json:"p50" yaml:"p50"`
	P90         int      `json:"p90" yaml:"p90"`
	P99         int      `json:"p99" yaml:"p99"`
	Buckets     []Bucket `json:"buckets" yaml:"buckets"`
}

// Snapshot returns the non-empty ranges of h. Exact distances appear as
// single-width buckets.
func (h *Histogram) Snapshot() Snapshot {
	s := Snapshot{
		Total:       h.total,
		Hits:        h.Hits(),
		Cold:        h.cold,
		Beyond:      h.beyond,
		MaxDistance: h.maxD,
	}
	s.P50, _ = h.Quantile(0.50)
	s.P90, _ = h.Quantile(0.90)
	s.P99, _ = h.Quantile(0.99)
	for d, c := range h.exact {
		if c > 0 {
			s.Buckets = append(s.Buckets, Bucket{Lo: d, Hi: d + 1, Count: c})
		}
	}
	for i, c := range h.buckets {
		if c > 0 {
			lo, hi := h.bucketBounds(i)
			s.Buckets = append(s.Buckets, Bucket{Lo: lo, Hi: hi, Count: c})
		}
	}
	return s
}
