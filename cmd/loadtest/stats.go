package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"
)

// recorder collects per-kind latencies and status counts from all workers.
type recorder struct {
	mu        sync.Mutex
	latencies map[string][]time.Duration
	statuses  map[int]int64
	failures  int64
	total     int64
}

func newRecorder() *recorder {
	return &recorder{
		latencies: make(map[string][]time.Duration),
		statuses:  make(map[int]int64),
	}
}

// record counts one request. Transport errors and 5xx responses are
// failures; 404 and 422 are valid answers for unknown titles and users
// without peers.
func (r *recorder) record(kind string, status int, elapsed time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	if err != nil {
		r.failures++
		return
	}
	if status >= 500 {
		r.failures++
	}
	r.statuses[status]++
	r.latencies[kind] = append(r.latencies[kind], elapsed)
}

type kindReport struct {
	Kind          string
	Count         int
	Min, P50, P95 time.Duration
	P99, Max      time.Duration
}

type report struct {
	Total    int64
	Failures int64
	Elapsed  time.Duration
	Statuses map[int]int64
	Kinds    []kindReport
}

func (r *recorder) report(elapsed time.Duration) report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := report{
		Total:    r.total,
		Failures: r.failures,
		Elapsed:  elapsed,
		Statuses: maps.Clone(r.statuses),
	}
	for _, kind := range slices.Sorted(maps.Keys(r.latencies)) {
		sorted := slices.Clone(r.latencies[kind])
		slices.Sort(sorted)
		out.Kinds = append(out.Kinds, kindReport{
			Kind:  kind,
			Count: len(sorted),
			Min:   sorted[0],
			P50:   percentile(sorted, 50),
			P95:   percentile(sorted, 95),
			P99:   percentile(sorted, 99),
			Max:   sorted[len(sorted)-1],
		})
	}
	return out
}

func (rp report) print(w io.Writer) {
	fmt.Fprintf(w, "\nrequests %d, failures %d", rp.Total, rp.Failures)
	if rp.Total > 0 && rp.Elapsed > 0 {
		fmt.Fprintf(w, " (%.2f%%), %.1f req/s",
			float64(rp.Failures)/float64(rp.Total)*100,
			float64(rp.Total)/rp.Elapsed.Seconds())
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\n%-8s %8s %10s %10s %10s %10s %10s\n", "kind", "count", "min", "p50", "p95", "p99", "max")
	for _, k := range rp.Kinds {
		fmt.Fprintf(w, "%-8s %8d %10s %10s %10s %10s %10s\n", k.Kind, k.Count,
			k.Min.Round(time.Microsecond), k.P50.Round(time.Microsecond), k.P95.Round(time.Microsecond),
			k.P99.Round(time.Microsecond), k.Max.Round(time.Microsecond))
	}

	fmt.Fprintln(w, "\nstatus codes:")
	for _, code := range slices.Sorted(maps.Keys(rp.Statuses)) {
		fmt.Fprintf(w, "  %d: %d\n", code, rp.Statuses[code])
	}
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p*len(sorted)+99)/100 - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}
