package util

import "runtime"

// ReasonableWorkerCount picks a default number of concurrent analysis
// workers: GOMAXPROCS clamped to [1..64]. Each worker owns one engine, so
// the count also bounds how many engines are resident at once.
func ReasonableWorkerCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	if p > 64 {
		p = 64
	}
	return p
}
