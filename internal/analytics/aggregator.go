package analytics

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ravindradesineni/Movie-recommendation/internal/recommender"
	"github.com/ravindradesineni/Movie-recommendation/pkg/kafka"
)

const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalQueries       int64            `json:"total_queries"`
	ByKind             map[string]int64 `json:"by_kind"`
	ByOutcome          map[string]int64 `json:"by_outcome"`
	CacheHits          int64            `json:"cache_hits"`
	CacheMisses        int64            `json:"cache_misses"`
	EmptyResults       int64            `json:"empty_results"`
	AvgLatencyUs       float64          `json:"avg_latency_us"`
	P50LatencyUs       int64            `json:"p50_latency_us"`
	P95LatencyUs       int64            `json:"p95_latency_us"`
	P99LatencyUs       int64            `json:"p99_latency_us"`
	TopTitles          []KeyCount       `json:"top_titles"`
	TopUsers           []KeyCount       `json:"top_users"`
	UnknownTitles      []KeyCount       `json:"unknown_titles"`
	QueriesPerMinute   float64          `json:"queries_per_minute"`
	LatencySampleCount int              `json:"latency_sample_count"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Aggregator keeps running statistics over query events. It is fed either
// by a Kafka consumer or directly through Track.
type Aggregator struct {
	mu            sync.RWMutex
	total         int64
	byKind        map[string]int64
	byOutcome     map[string]int64
	cacheHits     int64
	cacheMisses   int64
	emptyResults  int64
	latencies     []int64
	next          int
	titleCounts   map[string]int64
	userCounts    map[string]int64
	unknownTitles map[string]int64
	startTime     time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byKind:        make(map[string]int64),
		byOutcome:     make(map[string]int64),
		latencies:     make([]int64, 0, 1024),
		titleCounts:   make(map[string]int64),
		userCounts:    make(map[string]int64),
		unknownTitles: make(map[string]int64),
		startTime:     time.Now(),
		logger:        slog.Default().With("component", "analytics-aggregator"),
	}
}

// Consume attaches a Kafka consumer. Start blocks on it.
func (a *Aggregator) Consume(consumer *kafka.Consumer) {
	a.consumer = consumer
}

// Start runs the attached consumer until ctx is cancelled. Without a
// consumer it returns immediately.
func (a *Aggregator) Start(ctx context.Context) error {
	if a.consumer == nil {
		return nil
	}
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent decodes Kafka messages into the aggregator. Undecodable
// messages are logged and skipped so the consumer commits past them.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode query event", "error", err)
			return nil
		}
		agg.Track(event)
		return nil
	}
}

// Track records one event.
func (a *Aggregator) Track(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.byKind[event.Kind]++
	a.byOutcome[string(event.Outcome)]++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if event.Outcome == OutcomeOK && event.Returned == 0 {
		a.emptyResults++
	}

	// ring buffer of recent latencies
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.next] = event.LatencyUs
		a.next = (a.next + 1) % maxLatencySamples
	}

	switch event.Kind {
	case recommender.KindUser:
		a.userCounts[event.Key]++
	default:
		a.titleCounts[event.Key]++
		if event.Outcome == OutcomeNotFound {
			a.unknownTitles[event.Key]++
		}
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalQueries:       a.total,
		ByKind:             cloneCounts(a.byKind),
		ByOutcome:          cloneCounts(a.byOutcome),
		CacheHits:          a.cacheHits,
		CacheMisses:        a.cacheMisses,
		EmptyResults:       a.emptyResults,
		LatencySampleCount: len(a.latencies),
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopTitles = topN(a.titleCounts, 10)
	stats.TopUsers = topN(a.userCounts, 10)
	stats.UnknownTitles = topN(a.unknownTitles, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}
	return stats
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

// topN returns the n most frequent keys, ties broken by key.
func topN(counts map[string]int64, n int) []KeyCount {
	result := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		result = append(result, KeyCount{Key: k, Count: c})
	}
	slices.SortFunc(result, func(x, y KeyCount) int {
		if x.Count != y.Count {
			return cmp.Compare(y.Count, x.Count)
		}
		return cmp.Compare(x.Key, y.Key)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

func cloneCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UserKey formats a user id the way QueryEvent.Key expects.
func UserKey(userID int) string { return strconv.Itoa(userID) }
