// Package config loads reusedist command configuration from flags, an
// optional config file and REUSEDIST_* environment variables (flags win,
// then environment, then file, then defaults).
package config

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/IvanBrykalov/reusedist/histogram"
	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/util"
)

// Formats accepted by --format.
var Formats = []string{"text", "json", "yaml"}

// Config is the validated command configuration.
type Config struct {
	// Engine
	MaxSize    int
	Exact      int
	FilterFP   float64 // 0 disables the evicted-key filter
	FilterKeys uint
	Window     uint64 // reset the engine every Window accesses (0 = never)

	// Input
	Files  []string
	Field  int
	Synth  Synthetic
	Workers int

	// Output
	Format string
	Sizes  []int
	Verify bool

	// Observability
	HTTPAddr  string
	PprofAddr string
}

// Synthetic describes the Zipf stream used when no trace file is given.
type Synthetic struct {
	Keys     uint64
	Accesses uint64
	ZipfS    float64
	ZipfV    float64
	Seed     int64
}

// Load parses args (without the program name). output receives usage text.
// It returns pflag.ErrHelp when -h/--help was requested.
func Load(args []string, output io.Writer) (*Config, error) {
	fs := pflag.NewFlagSet("reusedist", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "usage: reusedist [flags] [trace files...]\n\n")
		fmt.Fprintf(output, "Without trace files a synthetic Zipf stream is analyzed. \"-\" reads stdin.\n\n")
		fs.PrintDefaults()
	}

	fs.String("config", "", "config file (yaml, json or toml)")

	fs.Int("maxsize", 0, "max tracked keys per engine (0 = unbounded, exact)")
	fs.Int("exact", 1024, "histogram resolution: distances below are counted exactly")
	fs.Float64("filter-fp", 0, "evicted-key filter false positive rate (0 = disabled; needs --maxsize)")
	fs.Uint("filter-keys", 0, "evicted-key filter expected keys (0 = 4*maxsize)")
	fs.Uint64("window", 0, "reset the engine every N accesses, keeping the histogram (0 = never)")

	fs.Int("field", 0, "whitespace-separated field holding the key (0-based)")
	fs.Int("workers", util.ReasonableWorkerCount(), "trace files analyzed in parallel")
	fs.Uint64("keys", 1_000_000, "synthetic keyspace size")
	fs.Uint64("accesses", 10_000_000, "synthetic stream length")
	fs.Float64("zipf-s", 1.1, "synthetic Zipf s > 1 (skew)")
	fs.Float64("zipf-v", 1.0, "synthetic Zipf v >= 1")
	fs.Int64("seed", time.Now().UnixNano(), "synthetic random seed")

	fs.String("format", "text", "output format: "+strings.Join(Formats, " | "))
	fs.IntSlice("sizes", nil, "cache sizes for the miss ratio curve (default: powers of two)")
	fs.Bool("verify", false, "simulate a real LRU cache at each size and compare")

	fs.String("http", "", "serve Prometheus metrics at addr (e.g. :8080); empty = disabled")
	fs.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("REUSEDIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		MaxSize:    v.GetInt("maxsize"),
		Exact:      v.GetInt("exact"),
		FilterFP:   v.GetFloat64("filter-fp"),
		FilterKeys: v.GetUint("filter-keys"),
		Window:     v.GetUint64("window"),
		Files:      fs.Args(),
		Field:      v.GetInt("field"),
		Workers:    v.GetInt("workers"),
		Synth: Synthetic{
			Keys:     v.GetUint64("keys"),
			Accesses: v.GetUint64("accesses"),
			ZipfS:    v.GetFloat64("zipf-s"),
			ZipfV:    v.GetFloat64("zipf-v"),
			Seed:     v.GetInt64("seed"),
		},
		Format:    strings.ToLower(v.GetString("format")),
		Sizes:     v.GetIntSlice("sizes"),
		Verify:    v.GetBool("verify"),
		HTTPAddr:  v.GetString("http"),
		PprofAddr: v.GetString("pprof"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and applies derived defaults.
func (c *Config) Validate() error {
	switch {
	case c.MaxSize < 0:
		return errs.InvalidConfig("maxsize", c.MaxSize, "must be >= 0")
	case c.Exact < 0 || c.Exact > histogram.MaxExact:
		return errs.InvalidConfig("exact", c.Exact, fmt.Sprintf("must be in [0, %d]", histogram.MaxExact))
	case c.FilterFP < 0 || c.FilterFP >= 1:
		return errs.InvalidConfig("filter-fp", c.FilterFP, "must be in [0, 1)")
	case c.FilterFP > 0 && c.MaxSize == 0:
		return errs.InvalidConfig("filter-fp", c.FilterFP, "requires --maxsize > 0")
	case c.Field < 0:
		return errs.InvalidConfig("field", c.Field, "must be >= 0")
	case !slices.Contains(Formats, c.Format):
		return errs.InvalidConfig("format", c.Format, "must be one of "+strings.Join(Formats, ", "))
	}
	if c.Workers <= 0 {
		c.Workers = util.ReasonableWorkerCount()
	}
	c.Files = dedupe(c.Files)
	for _, s := range c.Sizes {
		if s <= 0 {
			return errs.InvalidConfig("sizes", s, "cache sizes must be > 0")
		}
	}
	if len(c.Files) == 0 {
		switch {
		case c.Synth.Keys == 0:
			return errs.InvalidConfig("keys", c.Synth.Keys, "must be > 0")
		case c.Synth.ZipfS <= 1:
			return errs.InvalidConfig("zipf-s", c.Synth.ZipfS, "must be > 1")
		case c.Synth.ZipfV < 1:
			return errs.InvalidConfig("zipf-v", c.Synth.ZipfV, "must be >= 1")
		}
	}
	return nil
}

// dedupe drops repeated paths, keeping the first occurrence.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
