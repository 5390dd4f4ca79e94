// Package stats aggregates latency and outcome of session fetches.
package stats

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Recorder collects fetch latencies in microseconds, overall and per path.
// It implements session.Observer.
type Recorder struct {
	mu        sync.Mutex
	overall   *hdrhistogram.Histogram
	perPath   map[string]*pathStats
	total     int64
	errors    int64
	retried   int64
	startTime time.Time
}

type pathStats struct {
	histogram *hdrhistogram.Histogram
	total     int64
	errors    int64
}

// Summary is a point-in-time view of a Recorder.
type Summary struct {
	Name     string
	Total    int64
	Errors   int64
	Retried  int64
	Min      time.Duration
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
	Duration time.Duration
}

func newHistogram() *hdrhistogram.Histogram {
	// 1us to 60s range, 3 significant digits
	return hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)
}

func NewRecorder() *Recorder {
	return &Recorder{
		overall:   newHistogram(),
		perPath:   make(map[string]*pathStats),
		startTime: time.Now(),
	}
}

// Record adds one observation under name.
func (r *Recorder) Record(name string, d time.Duration, err error) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	_ = r.overall.RecordValue(us)

	ps, ok := r.perPath[name]
	if !ok {
		ps = &pathStats{histogram: newHistogram()}
		r.perPath[name] = ps
	}
	ps.total++
	_ = ps.histogram.RecordValue(us)

	if err != nil {
		r.errors++
		ps.errors++
	}
}

// ObserveFetch records a completed session fetch under its path without
// the query string.
func (r *Recorder) ObserveFetch(path string, attempts int, d time.Duration, err error) {
	name, _, _ := strings.Cut(path, "?")
	r.Record(name, d, err)
	if attempts > 1 {
		r.mu.Lock()
		r.retried++
		r.mu.Unlock()
	}
}

// Summary summarizes every observation so far.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := summarize("all", r.overall, r.total, r.errors)
	s.Retried = r.retried
	s.Duration = time.Since(r.startTime)
	return s
}

// PerPath summarizes observations per name, sorted by name.
func (r *Recorder) PerPath() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Summary, 0, len(r.perPath))
	for name, ps := range r.perPath {
		out = append(out, summarize(name, ps.histogram, ps.total, ps.errors))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func summarize(name string, h *hdrhistogram.Histogram, total, errors int64) Summary {
	s := Summary{Name: name, Total: total, Errors: errors}
	if h.TotalCount() == 0 {
		return s
	}
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	s.Min = us(h.Min())
	s.Max = us(h.Max())
	s.Mean = time.Duration(h.Mean() * float64(time.Microsecond))
	s.P50 = us(h.ValueAtQuantile(50))
	s.P95 = us(h.ValueAtQuantile(95))
	s.P99 = us(h.ValueAtQuantile(99))
	return s
}
