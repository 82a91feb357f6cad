// Package prom adapts reuse.Metrics to Prometheus.
//
//	m := prom.New(nil, "reusedist", "engine", nil)
//	e, _ := reuse.New(reuse.Options{Metrics: m})
//	http.Handle("/metrics", promhttp.Handler())
package prom
