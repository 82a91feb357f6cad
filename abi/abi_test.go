package abi

import (
	"slices"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/reusedist/histogram"
	"github.com/IvanBrykalov/reusedist/reuse"
)

func addAll(tb *Table, h Handle, keys ...uint64) []int64 {
	out := make([]int64, len(keys))
	for i, k := range keys {
		out[i] = tb.Add(h, k)
	}
	return out
}

func TestTable_EndToEnd(t *testing.T) {
	t.Parallel()

	var tb Table
	h := tb.Init(0)
	if h == 0 {
		t.Fatal("Init returned the null handle")
	}
	t.Cleanup(func() { tb.Fini(h) })

	got := addAll(&tb, h, 1, 2, 3, 1, 2, 4, 1)
	want := []int64{ResultCold, ResultCold, ResultCold, 2, 2, ResultCold, 2}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTable_Bounded(t *testing.T) {
	t.Parallel()

	var tb Table
	h := tb.Init(2)
	t.Cleanup(func() { tb.Fini(h) })

	if got := addAll(&tb, h, 1, 2, 3, 1); got[3] != ResultCold {
		t.Fatalf("bounded re-access = %d, want cold", got[3])
	}
}

func TestTable_ResetMakesKeysCold(t *testing.T) {
	t.Parallel()

	var tb Table
	h := tb.Init(0)
	t.Cleanup(func() { tb.Fini(h) })

	addAll(&tb, h, 1, 2)
	if code := tb.Reset(h); code != CodeOK {
		t.Fatalf("Reset = %d", code)
	}
	if got := tb.Add(h, 1); got != ResultCold {
		t.Fatalf("Add after Reset = %d, want cold", got)
	}
}

// Null, finalized and foreign handles never fault.
func TestTable_InvalidHandles(t *testing.T) {
	t.Parallel()

	var tb Table
	h := tb.Init(0)
	if code := tb.Fini(h); code != CodeOK {
		t.Fatalf("Fini = %d", code)
	}

	for _, bad := range []Handle{0, h, h + 1000} {
		if got := tb.Add(bad, 1); got != CodeInvalidHandle {
			t.Fatalf("Add(%d) = %d, want CodeInvalidHandle", bad, got)
		}
		if got := tb.Reset(bad); got != CodeInvalidHandle {
			t.Fatalf("Reset(%d) = %d", bad, got)
		}
		if got := tb.Fini(bad); got != CodeInvalidHandle {
			t.Fatalf("Fini(%d) = %d", bad, got)
		}
	}
	if tb.Len() != 0 {
		t.Fatalf("Len = %d after Fini", tb.Len())
	}
}

func TestTable_AllocationFailure(t *testing.T) {
	t.Parallel()

	var tb Table
	if h := tb.Init(uint(reuse.MaxTracked) + 1); h != 0 {
		t.Fatalf("oversized Init returned handle %d", h)
	}
}

// Rejected options are reported apart from allocation failures.
func TestTable_InvalidOptions(t *testing.T) {
	t.Parallel()

	var tb Table
	for _, tc := range []struct {
		maxsize uint
		opt     reuse.Options
	}{
		{4, reuse.Options{EvictedFilter: &reuse.EvictedFilter{FalsePositiveRate: 2}}},
		{0, reuse.Options{EvictedFilter: &reuse.EvictedFilter{}}}, // filter needs a bound
	} {
		h, code := tb.InitWith(tc.maxsize, tc.opt)
		if code != CodeInvalidConfig || h != 0 {
			t.Fatalf("InitWith(%d, %+v) = %d, %d; want null handle, CodeInvalidConfig", tc.maxsize, tc.opt, h, code)
		}
	}
	if tb.Len() != 0 {
		t.Fatalf("rejected inits left %d handles", tb.Len())
	}
}

// Options flow through InitWith; the accumulator outlives Fini.
func TestTable_InitWithAccumulator(t *testing.T) {
	t.Parallel()

	var tb Table
	hist := histogram.New(0)
	h, code := tb.InitWith(0, reuse.Options{Accumulator: hist})
	if code != CodeOK {
		t.Fatalf("InitWith code %d", code)
	}
	addAll(&tb, h, 5, 5, 6, 5)
	tb.Fini(h)
	if hist.Total() != 4 || hist.Hits() != 2 {
		t.Fatalf("histogram total=%d hits=%d", hist.Total(), hist.Hits())
	}
}

// Distinct handles may be driven concurrently.
func TestTable_ConcurrentHandles(t *testing.T) {
	t.Parallel()

	var tb Table
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			h := tb.Init(16)
			defer tb.Fini(h)
			for i := 0; i < 1_000; i++ {
				if r := tb.Add(h, uint64(i%8)); r < 0 {
					t.Errorf("worker %d: Add = %d", w, r)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	if tb.Len() != 0 {
		t.Fatalf("Len = %d after all Fini", tb.Len())
	}
}
