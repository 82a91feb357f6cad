package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/reusedist/histogram"
	"github.com/IvanBrykalov/reusedist/internal/analyze"
	"github.com/IvanBrykalov/reusedist/internal/errs"
	"github.com/IvanBrykalov/reusedist/internal/lrusim"
	"github.com/IvanBrykalov/reusedist/reuse"
)

func result(name string, rs ...reuse.Result) *analyze.Result {
	h := histogram.New(0)
	var st reuse.Stats
	for _, r := range rs {
		h.Observe(r)
		st.Accesses++
		switch {
		case r == reuse.Cold:
			st.Cold++
		case r == reuse.Beyond:
			st.Beyond++
		default:
			st.Hits++
		}
	}
	return &analyze.Result{Name: name, Stats: st, Histogram: h}
}

func TestNew_SingleSourceHasNoTotal(t *testing.T) {
	t.Parallel()

	r, err := New(Settings{}, []*analyze.Result{result("a", reuse.Cold, 0)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Total != nil {
		t.Fatal("single source must not get a total")
	}
	// Default sizes cover the largest distance: [1].
	if got := r.Sources[0].Curve; len(got) != 1 || got[0].Size != 1 || got[0].MissRatio != 0.5 {
		t.Fatalf("curve = %+v", got)
	}
}

func TestNew_Total(t *testing.T) {
	t.Parallel()

	results := []*analyze.Result{
		result("a", reuse.Cold, 0),
		result("b", reuse.Cold, reuse.Cold, 3),
	}
	r, err := New(Settings{Exact: 1024}, results, []int{1, 4})
	if err != nil {
		t.Fatal(err)
	}
	if r.Total == nil || r.Total.Stats.Accesses != 5 || r.Total.Histogram.Cold != 3 {
		t.Fatalf("total = %+v", r.Total)
	}
	if got := r.Total.Curve[1]; got.Size != 4 || math.Abs(got.MissRatio-3.0/5) > 1e-12 {
		t.Fatalf("total curve = %+v", r.Total.Curve)
	}
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	res := result("trace.txt", reuse.Cold, 0)
	res.Checks = []lrusim.Check{{Size: 1, Simulated: 0.5, Predicted: 0.5}}
	r, err := New(Settings{MaxSize: 8}, []*analyze.Result{res}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, "json"); err != nil {
		t.Fatal(err)
	}
	var back Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if back.Settings.MaxSize != 8 || back.Sources[0].Name != "trace.txt" || len(back.Sources[0].Verify) != 1 {
		t.Fatalf("decoded = %+v", back)
	}
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	r, err := New(Settings{}, []*analyze.Result{result("y", reuse.Cold, reuse.Beyond)}, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, "yaml"); err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid yaml: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "beyond: 1") {
		t.Fatalf("yaml lacks beyond count:\n%s", buf.String())
	}
}

func TestWrite_Text(t *testing.T) {
	t.Parallel()

	res := result("t", reuse.Cold, 0)
	r, err := New(Settings{}, []*analyze.Result{res, res}, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, "text"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"== t", "== total", "miss ratio", "0.5000", "accesses=4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output lacks %q:\n%s", want, out)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	r := &Report{}
	if err := r.Write(&bytes.Buffer{}, "xml"); !errs.Has(err, errs.CodeInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}
