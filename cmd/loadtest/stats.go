package main

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Workload operations.
const (
	opRecommend = "recommend"
	opSearch    = "search"
	opResolve   = "resolve"
)

// requestFor picks the i-th request of the workload: seven in ten are
// recommendations, two searches and one a bare resolve.
func requestFor(cfg Config, i int) (op, target string) {
	title := cfg.Titles[i%len(cfg.Titles)]
	switch i % 10 {
	case 7, 8:
		return opSearch, fmt.Sprintf("%s/api/v1/search/?q=%s&limit=10", cfg.BaseURL, url.QueryEscape(title))
	case 9:
		return opResolve, fmt.Sprintf("%s/api/v1/resolve/?title=%s", cfg.BaseURL, url.QueryEscape(title))
	default:
		return opRecommend, fmt.Sprintf("%s/api/v1/recommend/?title=%s&k=%s", cfg.BaseURL, url.QueryEscape(title), strconv.Itoa(cfg.K))
	}
}

type opStats struct {
	total     int64
	errors    int64
	notFound  int64
	latencies []time.Duration
}

// Stats accumulates per-operation results. A 404 is an expected outcome
// for unresolvable titles and is counted apart from errors.
type Stats struct {
	mu          sync.Mutex
	ops         map[string]*opStats
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		ops:         make(map[string]*opStats),
		statusCodes: make(map[int]int64),
	}
}

func (s *Stats) Record(op string, took time.Duration, status int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.ops[op]
	if !ok {
		o = &opStats{latencies: make([]time.Duration, 0, 1024)}
		s.ops[op] = o
	}
	o.total++
	if err != nil {
		o.errors++
		return
	}
	s.statusCodes[status]++
	switch {
	case status == 404:
		o.notFound++
	case status < 200 || status >= 300:
		o.errors++
	}
	o.latencies = append(o.latencies, took)
}

// printReport writes the summary and reports whether any request was made.
func printReport(w io.Writer, s *Stats, duration time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	names := make([]string, 0, len(s.ops))
	for name, o := range s.ops {
		names = append(names, name)
		total += o.total
	}
	sort.Strings(names)

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	if total > 0 {
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}

	for _, name := range names {
		o := s.ops[name]
		fmt.Fprintln(w)
		fmt.Fprintf(w, "=== %s ===\n", name)
		fmt.Fprintf(w, "Requests:  %d\n", o.total)
		fmt.Fprintf(w, "Not found: %d\n", o.notFound)
		fmt.Fprintf(w, "Errors:    %d (%.2f%%)\n", o.errors, float64(o.errors)/float64(o.total)*100)
		if len(o.latencies) == 0 {
			continue
		}
		lat := append([]time.Duration(nil), o.latencies...)
		sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
		var sum time.Duration
		for _, l := range lat {
			sum += l
		}
		fmt.Fprintf(w, "Min:  %s\n", lat[0])
		fmt.Fprintf(w, "Avg:  %s\n", sum/time.Duration(len(lat)))
		fmt.Fprintf(w, "P50:  %s\n", percentile(lat, 50))
		fmt.Fprintf(w, "P95:  %s\n", percentile(lat, 95))
		fmt.Fprintf(w, "P99:  %s\n", percentile(lat, 99))
		fmt.Fprintf(w, "Max:  %s\n", lat[len(lat)-1])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	codes := make([]int, 0, len(s.statusCodes))
	for code := range s.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, s.statusCodes[code])
	}
	return total > 0
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
