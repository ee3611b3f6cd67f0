package edgequery

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hupe1980/edgequery/internal/assemble"
	"github.com/hupe1980/edgequery/internal/batch"
	"github.com/hupe1980/edgequery/internal/kernel"
	"github.com/hupe1980/edgequery/internal/resource"
	"github.com/hupe1980/edgequery/internal/sampler"
)

// Engine runs neighbor queries. It holds no per-query state; one Engine may
// serve any number of concurrent calls, which then share its worker and
// memory budget.
type Engine struct {
	opts options
	rc   *resource.Controller
}

// New creates an Engine.
func New(optFns ...Option) *Engine {
	o := options{
		logger:            NoopLogger(),
		metricsCollector:  NoopMetricsCollector{},
		defaultMaxMatches: DefaultMaxMatches,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.defaultMaxMatches < 0 {
		o.defaultMaxMatches = DefaultMaxMatches
	}

	return &Engine{
		opts: o,
		rc: resource.NewController(resource.Config{
			MaxWorkers:       int64(o.maxWorkers),
			MemoryLimitBytes: o.memoryLimitBytes,
		}),
	}
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// SegmentRadiusQuery finds for each segment in segments all points within
// distance radius, using the default engine. See Engine.SegmentRadiusQuery.
func SegmentRadiusQuery(ctx context.Context, points, segments Matrix, radius float32, opts ...QueryOption) (*EdgeList, error) {
	return defaultEngine().SegmentRadiusQuery(ctx, points, segments, radius, opts...)
}

// AdjacencyGroupQuery groups candidates by the adjacency rows, using the
// default engine. See Engine.AdjacencyGroupQuery.
func AdjacencyGroupQuery(ctx context.Context, nodes []int, rows Matrix, opts ...QueryOption) (*EdgeList, error) {
	return defaultEngine().AdjacencyGroupQuery(ctx, nodes, rows, opts...)
}

// SegmentRadiusQuery finds for each segment all points within distance
// radius of it.
//
// points is an N×F matrix. segments is an M×2F matrix whose rows hold the
// segment start followed by the segment end. A segment whose endpoints
// coincide behaves as a point-radius query.
//
// The returned edge list pairs segment indices (Query) with point indices
// (Candidate).
func (e *Engine) SegmentRadiusQuery(ctx context.Context, points, segments Matrix, radius float32, opts ...QueryOption) (*EdgeList, error) {
	if err := points.validate("points"); err != nil {
		return nil, err
	}
	if err := segments.validate("segments"); err != nil {
		return nil, err
	}
	if segments.Cols != 2*points.Cols {
		return nil, &ErrShapeMismatch{What: "segment columns", Expected: 2 * points.Cols, Actual: segments.Cols}
	}
	if radius < 0 || math.IsNaN(float64(radius)) || math.IsInf(float64(radius), 0) {
		return nil, fmt.Errorf("%w: radius must be finite and non-negative, got %v", ErrInvalidArgument, radius)
	}

	qo, err := e.queryOptions(opts, points.Rows, segments.Rows)
	if err != nil {
		return nil, err
	}

	k, err := kernel.NewSegmentRadius(points.Data, segments.Data, points.Cols, radius)
	if err != nil {
		return nil, translateError(err)
	}

	return e.run(ctx, k, qo)
}

// AdjacencyGroupQuery finds for each adjacency row all candidates whose
// assigned node is flagged (non-zero) in that row.
//
// nodes assigns each of the N candidates a node id in [0, L). rows is an
// M×L matrix. A node id outside [0, L) fails with ErrNodeIndexOutOfRange.
//
// The returned edge list pairs row indices (Query) with candidate indices
// (Candidate).
func (e *Engine) AdjacencyGroupQuery(ctx context.Context, nodes []int, rows Matrix, opts ...QueryOption) (*EdgeList, error) {
	if err := rows.validate("adjacency rows"); err != nil {
		return nil, err
	}

	qo, err := e.queryOptions(opts, len(nodes), rows.Rows)
	if err != nil {
		return nil, err
	}

	k, err := kernel.NewAdjacencyGroup(nodes, rows.Data, rows.Cols)
	if err != nil {
		return nil, translateError(err)
	}

	return e.run(ctx, k, qo)
}

// queryOptions applies opts on top of the engine defaults and validates the
// result against the collection sizes.
func (e *Engine) queryOptions(opts []QueryOption, numCandidates, numQueries int) (queryOptions, error) {
	qo := queryOptions{
		maxMatches: e.opts.defaultMaxMatches,
		workers:    1,
	}
	for _, fn := range opts {
		fn(&qo)
	}

	if qo.maxMatches < 0 {
		return qo, fmt.Errorf("%w: max matches must be non-negative, got %d", ErrInvalidArgument, qo.maxMatches)
	}
	if qo.workers < 1 {
		return qo, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidArgument, qo.workers)
	}

	switch qo.mode {
	case BatchAuto:
	case BatchNone:
		qo.candidateBatch, qo.queryBatch = nil, nil
	case BatchRequired:
		if qo.candidateBatch == nil && qo.queryBatch == nil {
			return qo, fmt.Errorf("%w: batch mode %s needs batch ids", ErrInvalidArgument, qo.mode)
		}
	default:
		return qo, fmt.Errorf("%w: unknown batch mode %s", ErrInvalidArgument, qo.mode)
	}

	if qo.candidateBatch != nil && len(qo.candidateBatch) != numCandidates {
		return qo, &ErrShapeMismatch{What: "candidate batch ids", Expected: numCandidates, Actual: len(qo.candidateBatch)}
	}
	if qo.queryBatch != nil && len(qo.queryBatch) != numQueries {
		return qo, &ErrShapeMismatch{What: "query batch ids", Expected: numQueries, Actual: len(qo.queryBatch)}
	}

	if !qo.seeded {
		qo.seed = rand.Uint64()
	}

	return qo, nil
}

func (e *Engine) run(ctx context.Context, k kernel.Kernel, qo queryOptions) (*EdgeList, error) {
	start := time.Now()
	log := e.opts.logger.WithKernel(k.Name()).WithSeed(qo.seed)

	edges, stats, err := e.execute(ctx, k, qo, log)
	err = translateError(err)
	duration := time.Since(start)

	e.opts.metricsCollector.RecordQuery(k.Name(), k.NumQueries(), stats.Edges, stats.Capped, duration, err)
	log.LogQuery(ctx, k.NumQueries(), k.NumCandidates(), stats.Matches, stats.Edges, duration, err)
	if err != nil {
		return nil, err
	}
	log.LogCapped(ctx, stats.Capped, qo.maxMatches)

	return edges, nil
}

func (e *Engine) execute(ctx context.Context, k kernel.Kernel, qo queryOptions, log *Logger) (*EdgeList, assemble.Stats, error) {
	pstart := time.Now()
	table, err := batch.Build(qo.candidateBatch, qo.queryBatch)
	if err != nil {
		return nil, assemble.Stats{}, err
	}

	workers := qo.workers
	if table != nil {
		e.opts.metricsCollector.RecordPartition(table.Len(), time.Since(pstart))
		log.LogPartition(ctx, table.Len(), k.NumCandidates(), k.NumQueries())
		workers = 1
	}

	spans := table.Spans(k.NumQueries(), k.NumCandidates())

	reserved, err := e.rc.AcquireWorkers(ctx, workers)
	if err != nil {
		return nil, assemble.Stats{}, err
	}
	defer e.rc.ReleaseWorkers(reserved)

	pending, err := assemble.Collect(ctx, k, spans, assemble.Config{
		MaxMatches: qo.maxMatches,
		Workers:    reserved,
		Source:     sampler.NewSource(qo.seed),
	})
	if err != nil {
		return nil, assemble.Stats{}, err
	}

	bytes := int64(pending.Len()) * resource.EdgeBytes
	if err := e.rc.AcquireMemory(bytes); err != nil {
		return nil, assemble.Stats{}, err
	}
	defer e.rc.ReleaseMemory(bytes)

	query, candidate, err := pending.Write(ctx)
	if err != nil {
		return nil, assemble.Stats{}, err
	}

	return &EdgeList{Query: query, Candidate: candidate}, pending.Stats(), nil
}
