package reuse

import (
	"math"
	"strconv"
)

// Key identifies an accessed item. Only equality matters.
type Key = uint64

// Result is the outcome of one access: a finite distance >= 0, or one of
// the sentinels Cold and Beyond.
type Result int64

const (
	// Cold marks a first access (infinite distance). In bounded mode it also
	// covers keys whose distance reached the bound, unless the evicted-key
	// filter is enabled.
	Cold Result = math.MaxInt64
	// Beyond marks a key that was tracked earlier but evicted by the bound;
	// its distance is >= MaxSize. Only reported with Options.EvictedFilter.
	Beyond Result = math.MaxInt64 - 1
)

// Finite reports whether r is a measured distance.
func (r Result) Finite() bool { return r >= 0 && r < Beyond }

// Distance returns the measured distance and true, or 0 and false for a
// sentinel.
func (r Result) Distance() (int, bool) {
	if !r.Finite() {
		return 0, false
	}
	return int(r), true
}

func (r Result) String() string {
	switch r {
	case Cold:
		return "cold"
	case Beyond:
		return "beyond"
	default:
		return strconv.FormatInt(int64(r), 10)
	}
}

// Stats are cumulative counters of an Engine. They survive Reset.
type Stats struct {
	Accesses  uint64 `json:"accesses" yaml:"accesses"` // every successful Add
	Hits      uint64 `json:"hits" yaml:"hits"`         // finite distances
	Cold      uint64 `json:"cold" yaml:"cold"`
	Beyond    uint64 `json:"beyond" yaml:"beyond"`
	Evictions uint64 `json:"evictions" yaml:"evictions"` // keys dropped by the MaxSize bound
	Resets    uint64 `json:"resets" yaml:"resets"`
}
