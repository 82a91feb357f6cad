package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/pflag"

	"github.com/IvanBrykalov/reusedist/internal/errs"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxSize != 0 || cfg.Exact != 1024 || cfg.Format != "text" || cfg.Workers < 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Synth.ZipfS != 1.1 || cfg.Synth.Keys != 1_000_000 {
		t.Fatalf("unexpected synthetic defaults: %+v", cfg.Synth)
	}
}

func TestLoad_FlagsAndFiles(t *testing.T) {
	cfg, err := Load([]string{"--maxsize=4096", "--sizes=16,256", "--format=JSON", "--verify", "a.trace", "b.trace", "a.trace"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxSize != 4096 || !cfg.Verify || cfg.Format != "json" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if !slices.Equal(cfg.Sizes, []int{16, 256}) {
		t.Fatalf("sizes = %v", cfg.Sizes)
	}
	if !slices.Equal(cfg.Files, []string{"a.trace", "b.trace"}) {
		t.Fatalf("files = %v", cfg.Files)
	}
}

// Config file values apply unless a flag overrides them.
func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reusedist.yaml")
	body := "maxsize: 128\nformat: yaml\nfilter-fp: 0.001\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load([]string{"--config", path, "--format", "text"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxSize != 128 || cfg.FilterFP != 0.001 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Format != "text" {
		t.Fatalf("flag must win over file, got %q", cfg.Format)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("REUSEDIST_MAXSIZE", "77")
	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxSize != 77 {
		t.Fatalf("MaxSize = %d, want 77 from env", cfg.MaxSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := [][]string{
		{"--maxsize=-1"},
		{"--format=xml"},
		{"--filter-fp=0.01"},
		{"--maxsize=8", "--filter-fp=1"},
		{"--zipf-s=1"},
		{"--sizes=0"},
		{"--field=-2"},
		{"--exact=-1"},
		{"--exact=1099511627776"},
	}
	for _, args := range cases {
		if _, err := Load(args, io.Discard); !errs.Has(err, errs.CodeInvalidConfig) {
			t.Fatalf("Load(%v) = %v, want invalid config", args, err)
		}
	}
}

func TestLoad_Help(t *testing.T) {
	if _, err := Load([]string{"--help"}, io.Discard); err != pflag.ErrHelp {
		t.Fatalf("--help returned %v", err)
	}
}
