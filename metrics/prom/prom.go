package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/reusedist/reuse"
)

// Adapter implements reuse.Metrics and exports Prometheus counters, a
// distance histogram and a tracked-size gauge.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe,
// so several engines may share one Adapter.
type Adapter struct {
	accesses  *prometheus.CounterVec
	distance  prometheus.Histogram
	evictions prometheus.Counter
	tracked   prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
//
// Distance buckets are powers of two from 1 to 2^24.
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		accesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "accesses_total",
				Help:        "Accesses by outcome (hit, cold, beyond)",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		distance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "reuse_distance",
			Help:        "Finite reuse distances (distinct keys between accesses)",
			Buckets:     prometheus.ExponentialBuckets(1, 2, 25),
			ConstLabels: constLabels,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Keys dropped by the tracking bound",
			ConstLabels: constLabels,
		}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "tracked_keys",
			Help:        "Number of keys currently tracked",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.accesses, a.distance, a.evictions, a.tracked)
	return a
}

// Hit counts a finite distance and observes it.
func (a *Adapter) Hit(distance int) {
	a.accesses.WithLabelValues("hit").Inc()
	a.distance.Observe(float64(distance))
}

// Cold counts a first access.
func (a *Adapter) Cold() { a.accesses.WithLabelValues("cold").Inc() }

// Beyond counts a re-access to a key evicted by the bound.
func (a *Adapter) Beyond() { a.accesses.WithLabelValues("beyond").Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evictions.Inc() }

// Size updates the tracked-keys gauge.
func (a *Adapter) Size(tracked int) { a.tracked.Set(float64(tracked)) }

// Compile-time check: ensure Adapter implements reuse.Metrics.
var _ reuse.Metrics = (*Adapter)(nil)
