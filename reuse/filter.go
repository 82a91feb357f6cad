package reuse

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/IvanBrykalov/reusedist/internal/errs"
)

const (
	defaultFilterFP      = 0.01
	minFilterExpectation = 1024
)

// evictedFilter remembers keys dropped by the bound.
type evictedFilter struct {
	bf  *bloom.BloomFilter
	buf [8]byte
}

func newEvictedFilter(cfg EvictedFilter, maxSize int) (*evictedFilter, error) {
	if maxSize <= 0 {
		return nil, errs.InvalidConfig("EvictedFilter", cfg, "requires MaxSize > 0")
	}
	fp := cfg.FalsePositiveRate
	if fp == 0 {
		fp = defaultFilterFP
	}
	if fp <= 0 || fp >= 1 {
		return nil, errs.InvalidConfig("EvictedFilter.FalsePositiveRate", fp, "must be in (0, 1)")
	}
	n := cfg.ExpectedKeys
	if n == 0 {
		n = max(uint(4*maxSize), minFilterExpectation)
	}
	return &evictedFilter{bf: bloom.NewWithEstimates(n, fp)}, nil
}

func (f *evictedFilter) add(k Key) {
	binary.LittleEndian.PutUint64(f.buf[:], k)
	f.bf.Add(f.buf[:])
}

func (f *evictedFilter) test(k Key) bool {
	binary.LittleEndian.PutUint64(f.buf[:], k)
	return f.bf.Test(f.buf[:])
}

func (f *evictedFilter) reset() { f.bf.ClearAll() }
