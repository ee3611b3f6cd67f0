package edgequery

import "fmt"

// DefaultMaxMatches is the default neighbor cap per query.
const DefaultMaxMatches = 32

type options struct {
	logger            *Logger
	metricsCollector  MetricsCollector
	maxWorkers        int
	memoryLimitBytes  int64
	defaultMaxMatches int
}

// Option configures an Engine.
type Option func(*options)

// WithLogger configures structured logging.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring queries.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &edgequery.BasicMetricsCollector{}
//	eng := edgequery.New(edgequery.WithMetricsCollector(metrics))
//	// ... run queries ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaxWorkers bounds the number of query workers running at once across
// all concurrent calls on the engine. Defaults to GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithMemoryLimit bounds the bytes held by edge lists being assembled at
// once. Calls that would exceed it fail with ErrMemoryLimitExceeded.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimitBytes = bytes
	}
}

// WithDefaultMaxMatches changes the neighbor cap used by calls that do not
// pass WithMaxMatches.
func WithDefaultMaxMatches(k int) Option {
	return func(o *options) {
		o.defaultMaxMatches = k
	}
}

// BatchMode selects how batch id vectors are interpreted.
type BatchMode int

const (
	// BatchAuto partitions by batch when batch ids are supplied and matches
	// universally otherwise.
	BatchAuto BatchMode = iota
	// BatchNone ignores any batch ids: every query may match every candidate.
	BatchNone
	// BatchRequired fails the call unless batch ids are supplied.
	BatchRequired
)

func (m BatchMode) String() string {
	switch m {
	case BatchAuto:
		return "auto"
	case BatchNone:
		return "none"
	case BatchRequired:
		return "required"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

type queryOptions struct {
	candidateBatch []int64
	queryBatch     []int64
	mode           BatchMode
	maxMatches     int
	workers        int
	seed           uint64
	seeded         bool
}

// QueryOption configures a single query call.
type QueryOption func(*queryOptions)

// WithBatches assigns candidates and queries to batches. Both vectors must
// be sorted and have one entry per candidate and per query respectively.
// Passing nil for exactly one of them is an error.
func WithBatches(candidates, queries []int64) QueryOption {
	return func(o *queryOptions) {
		o.candidateBatch = candidates
		o.queryBatch = queries
	}
}

// WithMaxMatches caps the number of edges per query (default 32).
// If a query has more matches, a uniform random subset is kept.
// 0 suppresses all edges.
func WithMaxMatches(k int) QueryOption {
	return func(o *queryOptions) {
		o.maxMatches = k
	}
}

// WithWorkers sets the number of goroutines evaluating queries (default 1).
// It has no effect when batching is in use.
func WithWorkers(n int) QueryOption {
	return func(o *queryOptions) {
		o.workers = n
	}
}

// WithSeed makes the neighbor cap subsampling reproducible.
func WithSeed(seed uint64) QueryOption {
	return func(o *queryOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithBatchMode overrides how batch ids are interpreted (default BatchAuto).
func WithBatchMode(m BatchMode) QueryOption {
	return func(o *queryOptions) {
		o.mode = m
	}
}
