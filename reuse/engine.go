package reuse

import (
	"fmt"
	"iter"

	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/ranktree"
)

// MaxTracked is the largest MaxSize an Engine can address.
const MaxTracked = ranktree.MaxLen

type state uint8

const (
	active state = iota
	finalized
)

// Engine computes reuse distances for a stream of keys.
// It is single-writer: see the package documentation.
type Engine struct {
	tree   *ranktree.Tree
	index  keyIndex
	filter *evictedFilter // nil when disabled

	opt   Options
	stats Stats
	state state
}

// New constructs an Engine with the provided Options.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - MaxSize == 0 -> unbounded
func New(opt Options) (*Engine, error) {
	if opt.MaxSize < 0 {
		return nil, errs.InvalidConfig("MaxSize", opt.MaxSize, "must be >= 0")
	}
	if opt.MaxSize > MaxTracked {
		return nil, errs.AllocationFailure(uint64(opt.MaxSize), MaxTracked)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	e := &Engine{
		tree:  ranktree.New(opt.MaxSize),
		index: newKeyIndex(opt.MaxSize),
		opt:   opt,
	}
	if opt.EvictedFilter != nil {
		f, err := newEvictedFilter(*opt.EvictedFilter, opt.MaxSize)
		if err != nil {
			return nil, err
		}
		e.filter = f
	}
	return e, nil
}

// Add records an access to k and returns its reuse distance.
// It fails only with an InvalidHandle error on a nil or closed Engine.
func (e *Engine) Add(k Key) (Result, error) {
	if !e.usable() {
		return 0, errs.InvalidHandle("Add")
	}
	e.stats.Accesses++

	// Known key: its rank before the move is the distance. The handle is
	// reused in place, so the index entry stays valid.
	if h, ok := e.index.get(k); ok {
		d := e.tree.MoveToFront(h)
		e.stats.Hits++
		e.opt.Metrics.Hit(d)
		return e.observe(Result(d)), nil
	}

	res := Cold
	if e.filter != nil && e.filter.test(k) {
		res = Beyond
	}
	e.index.set(k, e.tree.PushFront(k))
	if e.opt.MaxSize > 0 && e.tree.Len() > e.opt.MaxSize {
		e.evictOldest()
	}

	if res == Beyond {
		e.stats.Beyond++
		e.opt.Metrics.Beyond()
	} else {
		e.stats.Cold++
		e.opt.Metrics.Cold()
	}
	e.opt.Metrics.Size(e.tree.Len())
	return e.observe(res), nil
}

// Reset forgets every tracked key and rewinds logical time to zero.
// MaxSize, Stats and the Accumulator are left untouched, which allows
// windowed measurement into one histogram.
func (e *Engine) Reset() error {
	if !e.usable() {
		return errs.InvalidHandle("Reset")
	}
	e.tree.Reset()
	e.index.reset()
	if e.filter != nil {
		e.filter.reset()
	}
	e.stats.Resets++
	e.opt.Metrics.Size(0)
	return nil
}

// Close releases the tree, index and filter. The Engine is unusable
// afterwards; a second Close returns an InvalidHandle error.
func (e *Engine) Close() error {
	if !e.usable() {
		return errs.InvalidHandle("Close")
	}
	e.tree = nil
	e.index = keyIndex{}
	e.filter = nil
	e.state = finalized
	e.opt.Metrics.Size(0)
	return nil
}

// Len returns the number of tracked keys (0 once closed).
func (e *Engine) Len() int {
	if !e.usable() {
		return 0
	}
	return e.tree.Len()
}

// MaxSize returns the configured bound (0 = unbounded).
func (e *Engine) MaxSize() int {
	if e == nil {
		return 0
	}
	return e.opt.MaxSize
}

// Now returns the logical time: the number of accesses since creation or
// the last Reset.
func (e *Engine) Now() uint64 {
	if !e.usable() {
		return 0
	}
	return e.tree.Now()
}

// Stats returns a copy of the cumulative counters.
func (e *Engine) Stats() Stats {
	if e == nil {
		return Stats{}
	}
	return e.stats
}

// Closed reports whether Close has been called (true for a nil Engine).
func (e *Engine) Closed() bool { return !e.usable() }

// Keys iterates tracked keys from the most to the least recent.
// The Engine must not be modified during iteration.
func (e *Engine) Keys() iter.Seq[Key] {
	if !e.usable() {
		return func(func(Key) bool) {}
	}
	return e.tree.NewestFirst()
}

// Verify checks the tree structure and the index/tree correspondence.
// It is O(n) and intended for tests and debugging.
func (e *Engine) Verify() error {
	if !e.usable() {
		return errs.InvalidHandle("Verify")
	}
	if err := e.tree.Verify(); err != nil {
		return err
	}
	if e.index.len() != e.tree.Len() {
		return errs.InternalInvariant("engine",
			fmt.Sprintf("index holds %d keys, tree holds %d", e.index.len(), e.tree.Len()))
	}
	for k, h := range e.index.m {
		if got := e.tree.Key(h); got != k {
			return errs.InternalInvariant("engine",
				fmt.Sprintf("index maps key %d to node of key %d", k, got))
		}
	}
	if e.opt.MaxSize > 0 && e.tree.Len() > e.opt.MaxSize {
		return errs.InternalInvariant("engine",
			fmt.Sprintf("tracking %d keys above bound %d", e.tree.Len(), e.opt.MaxSize))
	}
	return nil
}

// -------------------- internals --------------------

func (e *Engine) usable() bool { return e != nil && e.state == active }

func (e *Engine) observe(r Result) Result {
	if e.opt.Accumulator != nil {
		e.opt.Accumulator.Observe(r)
	}
	return r
}

// evictOldest drops the least recent key from tree and index together.
func (e *Engine) evictOldest() {
	key, ok := e.tree.EvictOldest()
	if !ok {
		panic(errs.InternalInvariant("engine", "eviction from an empty tree"))
	}
	if !e.index.remove(key) {
		panic(errs.InternalInvariant("engine", fmt.Sprintf("evicted key %d missing from index", key)))
	}
	if e.filter != nil {
		e.filter.add(key)
	}
	e.stats.Evictions++
	e.opt.Metrics.Evict()
}
