package edgequery

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordQuery is called after each neighbor query call.
	// kernel names the predicate ("segment_radius" or "adjacency_group"),
	// queries is the number of queries in the call, edges the number of edges
	// returned and capped the number of queries whose matches were subsampled.
	RecordQuery(kernel string, queries, edges, capped int, duration time.Duration, err error)

	// RecordPartition is called after batch boundaries are computed.
	RecordPartition(batches int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuery(string, int, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPartition(int, time.Duration)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	QueryCalls      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	Queries         atomic.Int64
	Edges           atomic.Int64
	CappedQueries   atomic.Int64
	Partitions      atomic.Int64
	Batches         atomic.Int64
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, queries, edges, capped int, duration time.Duration, err error) {
	b.QueryCalls.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.Queries.Add(int64(queries))
	b.Edges.Add(int64(edges))
	b.CappedQueries.Add(int64(capped))
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(batches int, _ time.Duration) {
	b.Partitions.Add(1)
	b.Batches.Add(int64(batches))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		QueryCalls:    b.QueryCalls.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryAvgNanos: b.getAvgQueryNanos(),
		Queries:       b.Queries.Load(),
		Edges:         b.Edges.Load(),
		CappedQueries: b.CappedQueries.Load(),
		Partitions:    b.Partitions.Load(),
		Batches:       b.Batches.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCalls.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QueryCalls    int64
	QueryErrors   int64
	QueryAvgNanos int64
	Queries       int64
	Edges         int64
	CappedQueries int64
	Partitions    int64
	Batches       int64
}
