// Command reusedist measures reuse distances of access traces (or of a
// synthetic Zipf stream) and prints histograms and LRU miss ratio curves.
// It exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/IvanBrykalov/reusedist/internal/analyze"
	"github.com/IvanBrykalov/reusedist/internal/config"
	"github.com/IvanBrykalov/reusedist/internal/report"
	"github.com/IvanBrykalov/reusedist/internal/trace"
	pmet "github.com/IvanBrykalov/reusedist/metrics/prom"
	"github.com/IvanBrykalov/reusedist/reuse"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	log.SetFlags(0)
	log.SetPrefix("reusedist: ")

	// ---- Config ----
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {

	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", cfg.PprofAddr)
			log.Println(http.ListenAndServe(cfg.PprofAddr, nil))
		}()
	}

	opt := analyze.Options{
		MaxSize:    cfg.MaxSize,
		Exact:      cfg.Exact,
		FilterFP:   cfg.FilterFP,
		FilterKeys: cfg.FilterKeys,
		Window:     cfg.Window,
	}
	if cfg.Verify {
		opt.Verify = cfg.Sizes
		if len(opt.Verify) == 0 {
			opt.Verify = defaultVerifySizes(cfg.MaxSize)
		}
	}

	// ---- Prometheus metrics (on DefaultServeMux), one label set per trace ----
	if cfg.HTTPAddr != "" {
		opt.Metrics = func(name string) reuse.Metrics {
			return pmet.New(nil, "reusedist", "", prometheus.Labels{"trace": name})
		}
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", cfg.HTTPAddr)
			log.Println(http.ListenAndServe(cfg.HTTPAddr, nil))
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := analyze.RunAll(ctx, jobs(cfg), opt, cfg.Workers)
	if err != nil {
		return err
	}

	// ---- Report ----
	rep, err := report.New(report.Settings{
		MaxSize:  cfg.MaxSize,
		Exact:    results[0].Histogram.Exact(),
		FilterFP: cfg.FilterFP,
		Window:   cfg.Window,
	}, results, cfg.Sizes)
	if err != nil {
		return err
	}
	return rep.Write(os.Stdout, cfg.Format)
}

// jobs turns the configured traces into analysis jobs. Without files a
// single synthetic Zipf job is returned.
func jobs(cfg *config.Config) []analyze.Job {
	if len(cfg.Files) == 0 {
		s := cfg.Synth
		name := "zipf(s=" + strconv.FormatFloat(s.ZipfS, 'g', -1, 64) +
			",keys=" + strconv.FormatUint(s.Keys, 10) +
			",seed=" + strconv.FormatInt(s.Seed, 10) + ")"
		return []analyze.Job{{
			Name: name,
			Open: func() (analyze.KeySource, io.Closer, error) {
				return trace.NewZipf(s.Seed, s.ZipfS, s.ZipfV, s.Keys, s.Accesses), nopCloser{}, nil
			},
		}}
	}

	out := make([]analyze.Job, 0, len(cfg.Files))
	for _, path := range cfg.Files {
		out = append(out, analyze.Job{
			Name: path,
			Open: func() (analyze.KeySource, io.Closer, error) {
				rc, err := trace.Open(path)
				if err != nil {
					return nil, nil, err
				}
				return trace.NewReader(rc, path, cfg.Field), rc, nil
			},
		})
	}
	return out
}

// defaultVerifySizes keeps the simulated caches within the bound, where
// predicted and simulated miss ratios are expected to agree.
func defaultVerifySizes(maxSize int) []int {
	sizes := []int{16, 256, 4096}
	if maxSize == 0 {
		return sizes
	}
	var out []int
	for _, s := range sizes {
		if s <= maxSize {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = []int{maxSize}
	}
	return out
}
