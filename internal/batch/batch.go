package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistent is returned when only one side carries batch ids.
	ErrInconsistent = errors.New("batch ids must be provided for both sides or for neither")

	// ErrUnsorted is returned when batch ids are not non-decreasing.
	ErrUnsorted = errors.New("batch ids are not sorted")

	// ErrNegative is returned when a batch id is negative.
	ErrNegative = errors.New("batch id is negative")
)

// Span is a half-open index range [Lo, Hi).
type Span struct {
	Lo, Hi int
}

// Len returns the number of indices in the span.
func (s Span) Len() int { return s.Hi - s.Lo }

// Validate checks that ids are non-negative and non-decreasing.
func Validate(ids []int64) error {
	for i, id := range ids {
		if id < 0 {
			return fmt.Errorf("%w: ids[%d] = %d", ErrNegative, i, id)
		}
		if i > 0 && id < ids[i-1] {
			return fmt.Errorf("%w: ids[%d] = %d follows %d", ErrUnsorted, i, id, ids[i-1])
		}
	}
	return nil
}

// Table holds the boundary offsets of candidates and queries per batch.
// Only batch ids that occur on at least one side get an entry, so the table
// grows with the number of elements rather than with the largest id.
// It is read-only once built.
type Table struct {
	// IDs lists the distinct batch ids of both sides in ascending order.
	IDs []int64
	// Candidates[i] is the first candidate index with batch id >= IDs[i];
	// the last entry is the candidate count.
	Candidates []int
	// Queries[i] is the first query index with batch id >= IDs[i];
	// the last entry is the query count.
	Queries []int
}

// Build validates both id arrays and computes the boundary table by merging
// the runs of equal ids of the two sorted arrays.
//
// It returns (nil, nil) when neither side carries ids: every query then
// ranges over all candidates. Supplying exactly one side is an error.
func Build(candidateIDs, queryIDs []int64) (*Table, error) {
	if candidateIDs == nil && queryIDs == nil {
		return nil, nil
	}
	if candidateIDs == nil || queryIDs == nil {
		return nil, ErrInconsistent
	}

	if err := Validate(candidateIDs); err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}
	if err := Validate(queryIDs); err != nil {
		return nil, fmt.Errorf("queries: %w", err)
	}

	t := &Table{
		Candidates: []int{0},
		Queries:    []int{0},
	}

	c, q := 0, 0
	for c < len(candidateIDs) || q < len(queryIDs) {
		var id int64
		switch {
		case c == len(candidateIDs):
			id = queryIDs[q]
		case q == len(queryIDs):
			id = candidateIDs[c]
		default:
			id = min(candidateIDs[c], queryIDs[q])
		}

		for c < len(candidateIDs) && candidateIDs[c] == id {
			c++
		}
		for q < len(queryIDs) && queryIDs[q] == id {
			q++
		}

		t.IDs = append(t.IDs, id)
		t.Candidates = append(t.Candidates, c)
		t.Queries = append(t.Queries, q)
	}

	return t, nil
}

// Len returns the number of distinct batch ids in the table.
func (t *Table) Len() int {
	return len(t.IDs)
}

// CandidateSpan returns the candidate range of the i-th batch.
func (t *Table) CandidateSpan(i int) Span {
	return Span{Lo: t.Candidates[i], Hi: t.Candidates[i+1]}
}

// QuerySpan returns the query range of the i-th batch.
func (t *Table) QuerySpan(i int) Span {
	return Span{Lo: t.Queries[i], Hi: t.Queries[i+1]}
}

// Spans returns, for each of the numQueries queries, the candidate range it
// is matched against. A nil table maps every query to [0, numCandidates).
func (t *Table) Spans(numQueries, numCandidates int) []Span {
	spans := make([]Span, numQueries)
	if t == nil {
		for q := range spans {
			spans[q] = Span{Lo: 0, Hi: numCandidates}
		}
		return spans
	}

	for i := range t.Len() {
		qs := t.QuerySpan(i)
		cs := t.CandidateSpan(i)
		for q := qs.Lo; q < qs.Hi; q++ {
			spans[q] = cs
		}
	}
	return spans
}
