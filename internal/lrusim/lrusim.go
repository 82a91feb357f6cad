// Package lrusim runs real LRU caches next to a reuse distance measurement
// so that histogram-predicted miss ratios can be checked against an actual
// cache of each size.
package lrusim

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/IvanBrykalov/reusedist/internal/errs"
)

// Check compares the simulated miss ratio at one cache size.
type Check struct {
	Size      int     `json:"size" yaml:"size"`
	Simulated float64 `json:"simulated" yaml:"simulated"`
	Predicted float64 `json:"predicted" yaml:"predicted"`
}

// Simulator feeds every access into one LRU cache per size.
// Not safe for concurrent use.
type Simulator struct {
	sizes  []int
	caches []*lru.Cache[uint64, struct{}]
	misses []uint64
	total  uint64
}

// New builds a simulator for the given cache sizes (each > 0).
func New(sizes []int) (*Simulator, error) {
	s := &Simulator{
		sizes:  append([]int(nil), sizes...),
		caches: make([]*lru.Cache[uint64, struct{}], len(sizes)),
		misses: make([]uint64, len(sizes)),
	}
	for i, size := range sizes {
		c, err := lru.New[uint64, struct{}](size)
		if err != nil {
			return nil, errs.InvalidConfig("sizes", size, err.Error())
		}
		s.caches[i] = c
	}
	return s, nil
}

// Access replays one access in every cache.
func (s *Simulator) Access(key uint64) {
	s.total++
	for i, c := range s.caches {
		if _, ok := c.Get(key); !ok {
			s.misses[i]++
			c.Add(key, struct{}{})
		}
	}
}

// Reset empties every cache but keeps the miss counters, matching an
// engine Reset in windowed measurement.
func (s *Simulator) Reset() {
	for _, c := range s.caches {
		c.Purge()
	}
}

// MissRatio returns the simulated miss ratio of the i-th size.
func (s *Simulator) MissRatio(i int) float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.misses[i]) / float64(s.total)
}

// Compare pairs each simulated miss ratio with predict(size).
func (s *Simulator) Compare(predict func(size int) float64) []Check {
	out := make([]Check, len(s.sizes))
	for i, size := range s.sizes {
		out[i] = Check{Size: size, Simulated: s.MissRatio(i), Predicted: predict(size)}
	}
	return out
}
