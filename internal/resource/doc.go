// Package resource governs the resources shared by concurrent neighbor queries.
//
// The Controller manages three resource types:
//
//   - Workers: bound the number of query workers running across all calls
//   - Memory: track and limit the bytes held by edge list buffers (fail-fast)
//   - IO: rate-limit edge list writes to sinks
//
// # Workers
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 8})
//
//	n, err := rc.AcquireWorkers(ctx, 4) // blocks until 4 (or fewer, if capped) slots are free
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorkers(n)
//
// # Memory
//
//	if err := rc.AcquireMemory(edges * resource.EdgeBytes); err != nil {
//	    // ErrMemoryLimitExceeded - the caller decides what to do
//	}
//	defer rc.ReleaseMemory(edges * resource.EdgeBytes)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully: they become no-ops.
package resource
