// Package edgequery answers batched neighbor queries between two collections
// and returns the matches as a sparse edge list.
//
// Two relations are supported:
//
//   - SegmentRadiusQuery: points lying within a radius of a query line segment
//   - AdjacencyGroupQuery: candidates whose assigned node is flagged in a
//     query's adjacency row
//
// Both share one pipeline: partition by batch, evaluate the predicate of
// every query against the candidates of its batch, cap the matches per query
// by uniform random subsampling and assemble the (query, candidate) pairs.
//
// # Quick Start
//
//	points, _ := edgequery.FromRows([][]float32{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}})
//	segments, _ := edgequery.FromRows([][]float32{{-0.5, -0.5, -0.5, 0.5}})
//
//	edges, _ := edgequery.SegmentRadiusQuery(ctx, points, segments, 1.0)
//	for i := range edges.Len() {
//	    fmt.Println(edges.Query[i], edges.Candidate[i])
//	}
//
// # Batching
//
// Candidates and queries may be split into independent batches by sorted
// batch id vectors. Matches are only considered within the same batch:
//
//	edges, _ := edgequery.SegmentRadiusQuery(ctx, points, segments, 1.0,
//	    edgequery.WithBatches(pointBatch, segmentBatch))
//
// Batch ids may skip values; an unused id simply has no members.
//
// # Neighbor Cap
//
// At most WithMaxMatches (default 32) candidates are returned per query.
// Surplus matches are discarded by uniform random selection; WithSeed makes
// the selection reproducible independent of the worker count.
//
// # Engines
//
// The package-level functions use a shared default Engine. Construct an
// Engine with New to configure logging, metrics and the global worker and
// memory budget:
//
//	eng := edgequery.New(
//	    edgequery.WithLogger(edgequery.NewTextLogger(slog.LevelDebug)),
//	    edgequery.WithMaxWorkers(8),
//	)
package edgequery
