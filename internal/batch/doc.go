// Package batch converts sorted per-element batch ids into offset tables.
//
// Candidates and queries of the same batch are contiguous. The table keeps,
// for every batch id that occurs on either side, the first candidate and the
// first query index carrying it, so the elements of that batch occupy the
// half-open ranges between consecutive entries. A batch id present on one
// side only produces an empty range on the other; ids no element uses are
// absent and cost nothing.
package batch
