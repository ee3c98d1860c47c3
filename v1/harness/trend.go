package harness

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Trend aggregates latency samples the way a load-test summary shows them.
// It is safe for concurrent use.
type Trend struct {
	mu      sync.Mutex
	samples []time.Duration
}

// TrendSummary is a snapshot of a Trend.
type TrendSummary struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Med   time.Duration
	P90   time.Duration
	P95   time.Duration
}

// Add records one sample.
func (t *Trend) Add(d time.Duration) {
	t.mu.Lock()
	t.samples = append(t.samples, d)
	t.mu.Unlock()
}

// Summary computes the aggregate. Percentiles use the nearest-rank method.
func (t *Trend) Summary() TrendSummary {
	t.mu.Lock()
	sorted := append([]time.Duration(nil), t.samples...)
	t.mu.Unlock()

	if len(sorted) == 0 {
		return TrendSummary{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	return TrendSummary{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Avg:   total / time.Duration(len(sorted)),
		Med:   percentile(sorted, 50),
		P90:   percentile(sorted, 90),
		P95:   percentile(sorted, 95),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p * float64(len(sorted)) / 100))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// Fields renders the summary for structured logs.
func (s TrendSummary) Fields() map[string]interface{} {
	return map[string]interface{}{
		"count": s.Count,
		"min":   s.Min.String(),
		"max":   s.Max.String(),
		"avg":   s.Avg.String(),
		"med":   s.Med.String(),
		"p90":   s.P90.String(),
		"p95":   s.P95.String(),
	}
}
