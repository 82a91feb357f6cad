// Package abi is the narrow integer-coded boundary over package reuse, for
// callers (foreign function interfaces, scripting bridges) that cannot
// carry Go errors or pointers.
//
// Handles are opaque non-zero integers issued by a Table. The zero Handle
// is null. Every function accepts null, finalized and foreign handles and
// answers CodeInvalidHandle instead of faulting.
//
// The Table lock only guards the handle map. Each engine remains
// single-writer: calls for the same handle must not overlap, while
// different handles may be driven from different goroutines.
package abi

import (
	"math"
	"sync"

	"github.com/IvanBrykalov/reusedist/reuse"
)

// Handle identifies an engine inside a Table. Zero is the null handle.
type Handle uint64

// Result codes. Non-negative values are distances or sentinels; negative
// values are errors.
const (
	ResultCold   int64 = int64(reuse.Cold)
	ResultBeyond int64 = int64(reuse.Beyond)

	CodeOK                int64 = 0
	CodeInvalidHandle     int64 = -1
	CodeAllocationFailure int64 = -2
	CodeInvalidConfig     int64 = -3
)

// Table issues handles and owns the engines behind them.
// The zero value is ready to use.
type Table struct {
	mu      sync.Mutex
	next    Handle
	engines map[Handle]*reuse.Engine
}

// Init allocates an engine tracking at most maxsize keys (0 = unbounded).
// It returns the null handle when the engine cannot be allocated.
func (t *Table) Init(maxsize uint) Handle {
	h, _ := t.InitWith(maxsize, reuse.Options{})
	return h
}

// InitWith is Init with extra engine options (accumulator, metrics,
// evicted filter); opt.MaxSize is overridden by maxsize. The returned code
// is CodeOK, CodeAllocationFailure, or CodeInvalidConfig when opt is
// rejected (e.g. a bad EvictedFilter).
func (t *Table) InitWith(maxsize uint, opt reuse.Options) (Handle, int64) {
	if uint64(maxsize) > reuse.MaxTracked {
		return 0, CodeAllocationFailure
	}
	opt.MaxSize = int(maxsize)
	e, err := reuse.New(opt)
	if err != nil {
		if reuse.IsInvalidConfig(err) {
			return 0, CodeInvalidConfig
		}
		return 0, CodeAllocationFailure
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.engines == nil {
		t.engines = make(map[Handle]*reuse.Engine)
	}
	if t.next == math.MaxUint64 {
		return 0, CodeAllocationFailure
	}
	t.next++
	t.engines[t.next] = e
	return t.next, CodeOK
}

// Add records an access and returns a distance, ResultCold, ResultBeyond,
// or CodeInvalidHandle.
func (t *Table) Add(h Handle, key uint64) int64 {
	e := t.lookup(h)
	r, err := e.Add(key)
	if err != nil {
		return CodeInvalidHandle
	}
	return int64(r)
}

// Reset clears the engine's tracked keys. Returns CodeOK or CodeInvalidHandle.
func (t *Table) Reset(h Handle) int64 {
	if err := t.lookup(h).Reset(); err != nil {
		return CodeInvalidHandle
	}
	return CodeOK
}

// Fini releases the engine. The handle is invalid afterwards, and a second
// Fini returns CodeInvalidHandle.
func (t *Table) Fini(h Handle) int64 {
	t.mu.Lock()
	e, ok := t.engines[h]
	delete(t.engines, h)
	t.mu.Unlock()
	if !ok {
		return CodeInvalidHandle
	}
	if err := e.Close(); err != nil {
		return CodeInvalidHandle
	}
	return CodeOK
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.engines)
}

// lookup returns the engine for h, or nil (which every reuse.Engine method
// reports as an invalid handle).
func (t *Table) lookup(h Handle) *reuse.Engine {
	if h == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engines[h]
}
