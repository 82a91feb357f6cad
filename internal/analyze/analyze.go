// Package analyze runs traces through reuse distance engines, one engine
// and histogram per trace, optionally in parallel.
package analyze

import (
	"context"
	"io"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/reusedist/histogram"
	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/lrusim"
	"github.com/IvanBrykalov/reusedist/reuse"
)

// checkEvery is how many accesses pass between context checks.
const checkEvery = 1 << 16

// KeySource yields the keys of one trace (trace.Reader, trace.Zipf).
type KeySource interface {
	Next() bool
	Key() uint64
	Err() error
}

// Options configure every analysis of a run.
type Options struct {
	MaxSize    int
	Exact      int     // histogram resolution
	FilterFP   float64 // > 0 enables the evicted-key filter
	FilterKeys uint
	Window     uint64 // reset the engine every Window accesses (0 = never)

	// Verify lists cache sizes to simulate with a real LRU cache.
	Verify []int

	// Metrics returns the metrics sink for a named trace (nil => none).
	Metrics func(name string) reuse.Metrics
}

// Result is the outcome of one trace.
type Result struct {
	Name      string
	Stats     reuse.Stats
	Histogram *histogram.Histogram
	Checks    []lrusim.Check // nil unless Options.Verify is set
	Elapsed   time.Duration
}

// Job names a trace and opens it on demand.
type Job struct {
	Name string
	Open func() (KeySource, io.Closer, error)
}

// Run analyzes one trace.
func Run(ctx context.Context, name string, src KeySource, opt Options) (*Result, error) {
	start := time.Now()

	h := histogram.New(opt.Exact)
	eo := reuse.Options{MaxSize: opt.MaxSize, Accumulator: h}
	if opt.FilterFP > 0 {
		eo.EvictedFilter = &reuse.EvictedFilter{
			ExpectedKeys:      opt.FilterKeys,
			FalsePositiveRate: opt.FilterFP,
		}
	}
	if opt.Metrics != nil {
		eo.Metrics = opt.Metrics(name)
	}
	e, err := reuse.New(eo)
	if err != nil {
		return nil, err
	}
	defer func() { _ = e.Close() }()

	var sim *lrusim.Simulator
	if len(opt.Verify) > 0 {
		if sim, err = lrusim.New(opt.Verify); err != nil {
			return nil, err
		}
	}

	var n uint64
	for src.Next() {
		if n > 0 {
			if opt.Window > 0 && n%opt.Window == 0 {
				if err := e.Reset(); err != nil {
					return nil, err
				}
				if sim != nil {
					sim.Reset()
				}
			}
			if n%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
		}
		k := src.Key()
		if _, err := e.Add(k); err != nil {
			return nil, err
		}
		if sim != nil {
			sim.Access(k)
		}
		n++
	}
	if err := src.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Name:      name,
		Stats:     e.Stats(),
		Histogram: h,
		Elapsed:   time.Since(start),
	}
	if sim != nil {
		res.Checks = sim.Compare(h.MissRatio)
	}
	return res, nil
}

// RunAll analyzes jobs with at most workers in flight and returns results
// in job order. The first failure cancels the rest.
func RunAll(ctx context.Context, jobs []Job, opt Options, workers int) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, job := range jobs {
		g.Go(func() error {
			src, closer, err := job.Open()
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			res, err := Run(ctx, job.Name, src, opt)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge combines per-trace results into a total. Verify checks are merged
// by weighting each simulated miss ratio with its trace's access count;
// results without checks do not take part, and all results with checks
// must share the same sizes.
func Merge(name string, results []*Result) (*Result, error) {
	if len(results) == 0 {
		return &Result{Name: name, Histogram: histogram.New(0)}, nil
	}
	total := &Result{
		Name:      name,
		Histogram: histogram.New(results[0].Histogram.Exact()),
	}
	var (
		seed      []lrusim.Check // sizes of the first result with checks
		simMisses []float64
		simTotal  uint64
	)
	for _, r := range results {
		if err := total.Histogram.Merge(r.Histogram); err != nil {
			return nil, err
		}
		total.Stats.Accesses += r.Stats.Accesses
		total.Stats.Hits += r.Stats.Hits
		total.Stats.Cold += r.Stats.Cold
		total.Stats.Beyond += r.Stats.Beyond
		total.Stats.Evictions += r.Stats.Evictions
		total.Stats.Resets += r.Stats.Resets
		total.Elapsed = max(total.Elapsed, r.Elapsed)

		if r.Checks == nil {
			continue
		}
		if seed == nil {
			seed = r.Checks
			simMisses = make([]float64, len(seed))
		}
		if !sameSizes(seed, r.Checks) {
			return nil, errs.InvalidConfig("verify", r.Name, "verify sizes differ between results")
		}
		for i, c := range r.Checks {
			simMisses[i] += c.Simulated * float64(r.Stats.Accesses)
		}
		simTotal += r.Stats.Accesses
	}
	if seed != nil {
		total.Checks = make([]lrusim.Check, len(seed))
		for i, c := range seed {
			sim := 0.0
			if simTotal > 0 {
				sim = simMisses[i] / float64(simTotal)
			}
			total.Checks[i] = lrusim.Check{
				Size:      c.Size,
				Simulated: sim,
				Predicted: total.Histogram.MissRatio(c.Size),
			}
		}
	}
	return total, nil
}

func sameSizes(a, b []lrusim.Check) bool {
	return slices.EqualFunc(a, b, func(x, y lrusim.Check) bool { return x.Size == y.Size })
}
