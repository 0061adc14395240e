// Package analytics tracks how the word engine is used: query events are
// collected off the request path, optionally shipped through Kafka, and
// folded into aggregate statistics that can be snapshotted to PostgreSQL.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
)

// latencyWindow is how many recent latencies feed the percentiles.
const latencyWindow = 10000

// maxTrackedQueries bounds the distinct queries counted per table. Past it
// the table is pruned back to its most frequent half.
const maxTrackedQueries = 5000

// AggregatedStats is a point-in-time summary of the recorded events.
type AggregatedStats struct {
	TotalQueries     int64            `json:"total_queries"`
	QueriesByKind    map[string]int64 `json:"queries_by_kind"`
	CacheHits        int64            `json:"cache_hits"`
	CacheMisses      int64            `json:"cache_misses"`
	Failures         int64            `json:"failures"`
	NoMatchCount     int64            `json:"no_match_count"`
	AvgLatencyMs     float64          `json:"avg_latency_ms"`
	P50LatencyMs     float64          `json:"p50_latency_ms"`
	P95LatencyMs     float64          `json:"p95_latency_ms"`
	P99LatencyMs     float64          `json:"p99_latency_ms"`
	TopQueries       []QueryCount     `json:"top_queries"`
	NoMatchQueries   []QueryCount     `json:"no_match_queries"`
	QueriesPerMinute float64          `json:"queries_per_minute"`
}

// QueryCount pairs a query with how often it was seen.
type QueryCount struct {
	Kind  string `json:"kind"`
	Query string `json:"query"`
	Count int64  `json:"count"`
}

type queryKey struct {
	kind  string
	query string
}

// Aggregator folds QueryEvents into running totals. It is safe for
// concurrent use.
type Aggregator struct {
	mu             sync.Mutex
	total          int64
	byKind         map[string]int64
	cacheHits      int64
	cacheMisses    int64
	failures       int64
	noMatch        int64
	latencies      []int64
	next           int
	queryCounts    map[queryKey]int64
	noMatchQueries map[queryKey]int64
	maxQueries     int
	startTime      time.Time
	logger         *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byKind:         make(map[string]int64),
		latencies:      make([]int64, 0, latencyWindow),
		queryCounts:    make(map[queryKey]int64),
		noMatchQueries: make(map[queryKey]int64),
		maxQueries:     maxTrackedQueries,
		startTime:      time.Now(),
		logger:         logger.WithComponent("analytics-aggregator"),
	}
}

// HandleEvent adapts agg to a Kafka consumer. Undecodable messages are
// logged and skipped so one bad message cannot stall the partition.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode query event", "key", string(key), "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Record adds one event to the totals.
func (a *Aggregator) Record(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.byKind[event.Kind]++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	key := queryKey{kind: event.Kind, query: event.Query}
	countQuery(a.queryCounts, key, a.maxQueries)
	switch {
	case event.Failed:
		a.failures++
	case event.Matches == 0:
		a.noMatch++
		countQuery(a.noMatchQueries, key, a.maxQueries)
	}

	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.next] = event.LatencyUs
		a.next = (a.next + 1) % latencyWindow
	}
}

// Stats summarises everything recorded so far.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := AggregatedStats{
		TotalQueries:  a.total,
		QueriesByKind: make(map[string]int64, len(a.byKind)),
		CacheHits:     a.cacheHits,
		CacheMisses:   a.cacheMisses,
		Failures:      a.failures,
		NoMatchCount:  a.noMatch,
	}
	for k, v := range a.byKind {
		stats.QueriesByKind[k] = v
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted)) / 1000
		stats.P50LatencyMs = float64(percentile(sorted, 50)) / 1000
		stats.P95LatencyMs = float64(percentile(sorted, 95)) / 1000
		stats.P99LatencyMs = float64(percentile(sorted, 99)) / 1000
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.NoMatchQueries = topN(a.noMatchQueries, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}
	return stats
}

// countQuery increments key, pruning counts to the limit/2 most frequent
// entries when a new key would push it past limit.
func countQuery(counts map[queryKey]int64, key queryKey, limit int) {
	if _, ok := counts[key]; !ok && len(counts) >= limit {
		keep := topN(counts, limit/2)
		clear(counts)
		for _, qc := range keep {
			counts[queryKey{kind: qc.Kind, query: qc.Query}] = qc.Count
		}
	}
	counts[key]++
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[queryKey]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for k, count := range counts {
		result = append(result, QueryCount{Kind: k.kind, Query: k.query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
