// Package report renders analysis results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/reusedist/histogram"
	"github.com/IvanBrykalov/reusedist/internal/analyze"
	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/lrusim"
	"github.com/IvanBrykalov/reusedist/reuse"
)

// Source is the rendered outcome of one trace (or of the merged total).
type Source struct {
	Name      string             `json:"name" yaml:"name"`
	Stats     reuse.Stats        `json:"stats" yaml:"stats"`
	Histogram histogram.Snapshot `json:"histogram" yaml:"histogram"`
	Curve     []histogram.Point  `json:"curve" yaml:"curve"`
	Verify    []lrusim.Check     `json:"verify,omitempty" yaml:"verify,omitempty"`
	Elapsed   time.Duration      `json:"elapsed_ns" yaml:"elapsed"`
}

// Settings echo the engine configuration of the run.
type Settings struct {
	MaxSize  int     `json:"maxsize" yaml:"maxsize"`
	Exact    int     `json:"exact" yaml:"exact"`
	FilterFP float64 `json:"filter_fp,omitempty" yaml:"filter_fp,omitempty"`
	Window   uint64  `json:"window,omitempty" yaml:"window,omitempty"`
}

// Report is the full output of a run. Total is set when more than one
// trace was analyzed.
type Report struct {
	Settings Settings `json:"settings" yaml:"settings"`
	Sources  []Source `json:"sources" yaml:"sources"`
	Total    *Source  `json:"total,omitempty" yaml:"total,omitempty"`
}

// New builds a report. sizes are the curve sample points; nil picks
// powers of two up to the largest observed distance.
func New(settings Settings, results []*analyze.Result, sizes []int) (*Report, error) {
	r := &Report{Settings: settings, Sources: make([]Source, 0, len(results))}
	for _, res := range results {
		r.Sources = append(r.Sources, source(res, sizes))
	}
	if len(results) > 1 {
		total, err := analyze.Merge("total", results)
		if err != nil {
			return nil, err
		}
		s := source(total, sizes)
		r.Total = &s
	}
	return r, nil
}

func source(res *analyze.Result, sizes []int) Source {
	if len(sizes) == 0 {
		sizes = histogram.DefaultSizes(res.Histogram.MaxDistance() + 1)
	}
	return Source{
		Name:      res.Name,
		Stats:     res.Stats,
		Histogram: res.Histogram.Snapshot(),
		Curve:     res.Histogram.Curve(sizes),
		Verify:    res.Checks,
		Elapsed:   res.Elapsed,
	}
}

// Write renders r in format ("text", "json" or "yaml").
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return r.writeText(w)
	default:
		return errs.InvalidConfig("format", format, "must be text, json or yaml")
	}
}

func (r *Report) writeText(w io.Writer) error {
	s := r.Settings
	fmt.Fprintf(w, "maxsize=%d exact=%d filter-fp=%g window=%d\n", s.MaxSize, s.Exact, s.FilterFP, s.Window)
	for i := range r.Sources {
		if err := writeSource(w, &r.Sources[i]); err != nil {
			return err
		}
	}
	if r.Total != nil {
		return writeSource(w, r.Total)
	}
	return nil
}

func writeSource(w io.Writer, s *Source) error {
	st := s.Stats
	fmt.Fprintf(w, "\n== %s (%v)\n", s.Name, s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "accesses=%d  hits=%d  cold=%d  beyond=%d  evictions=%d  resets=%d\n",
		st.Accesses, st.Hits, st.Cold, st.Beyond, st.Evictions, st.Resets)
	h := s.Histogram
	fmt.Fprintf(w, "distance: p50=%d  p90=%d  p99=%d  max=%d\n", h.P50, h.P90, h.P99, h.MaxDistance)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	if len(s.Verify) > 0 {
		fmt.Fprintln(tw, "size\tmiss ratio\tsimulated\tdelta\t")
		for _, c := range s.Verify {
			fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%+.4f\t\n", c.Size, c.Predicted, c.Simulated, c.Predicted-c.Simulated)
		}
	} else {
		fmt.Fprintln(tw, "size\tmiss ratio\t")
		for _, p := range s.Curve {
			fmt.Fprintf(tw, "%d\t%.4f\t\n", p.Size, p.MissRatio)
		}
	}
	return tw.Flush()
}
