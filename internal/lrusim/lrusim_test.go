package lrusim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/IvanBrykalov/reusedist/histogram"
	"github.com/IvanBrykalov/reusedist/reuse"
)

// The miss ratio predicted from one pass of reuse distances equals the miss
// ratio of a real LRU cache of every size within the exact resolution.
func TestSimulator_MatchesHistogramPrediction(t *testing.T) {
	t.Parallel()

	sizes := []int{1, 2, 3, 8, 50, 200, 1000}
	sim, err := New(sizes)
	if err != nil {
		t.Fatal(err)
	}
	h := histogram.New(2048)
	e, err := reuse.New(reuse.Options{Accumulator: h})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Close() })

	r := rand.New(rand.NewSource(11))
	zipf := rand.NewZipf(r, 1.05, 1, 1_500)
	for i := 0; i < 50_000; i++ {
		k := zipf.Uint64()
		if _, err := e.Add(k); err != nil {
			t.Fatal(err)
		}
		sim.Access(k)
	}

	for _, c := range sim.Compare(h.MissRatio) {
		if math.Abs(c.Simulated-c.Predicted) > 1e-12 {
			t.Fatalf("size %d: simulated %.6f, predicted %.6f", c.Size, c.Simulated, c.Predicted)
		}
	}
}

// A bounded engine still predicts exactly for sizes up to its bound.
func TestSimulator_BoundedEngine(t *testing.T) {
	t.Parallel()

	const bound = 64
	sizes := []int{4, 16, bound}
	sim, _ := New(sizes)
	h := histogram.New(0)
	e, _ := reuse.New(reuse.Options{MaxSize: bound, Accumulator: h})
	t.Cleanup(func() { _ = e.Close() })

	r := rand.New(rand.NewSource(5))
	for i := 0; i < 20_000; i++ {
		k := uint64(r.Intn(300))
		_, _ = e.Add(k)
		sim.Access(k)
	}
	for _, c := range sim.Compare(h.MissRatio) {
		if math.Abs(c.Simulated-c.Predicted) > 1e-12 {
			t.Fatalf("size %d: simulated %.6f, predicted %.6f", c.Size, c.Simulated, c.Predicted)
		}
	}
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	if _, err := New([]int{4, 0}); !reuse.IsInvalidConfig(err) {
		t.Fatalf("New with size 0: %v", err)
	}
}

func TestSimulator_ResetKeepsCounters(t *testing.T) {
	t.Parallel()

	sim, _ := New([]int{2})
	sim.Access(1)
	sim.Access(1)
	sim.Reset()
	sim.Access(1)
	if got := sim.MissRatio(0); math.Abs(got-2.0/3) > 1e-12 {
		t.Fatalf("MissRatio = %v, want 2/3", got)
	}
}
