// Package kernel implements the per-pair predicates evaluated by the
// neighbor query pipeline.
//
// A Kernel decides whether candidate c is a neighbor of query q. Batching,
// capping and edge assembly are shared and live elsewhere; a kernel only
// answers Match. Kernels that can enumerate the matches of a query faster
// than a linear scan additionally implement Collector, and Scan picks the
// faster path transparently. Both paths must return identical results.
package kernel
