package edgequery

import (
	"errors"
	"fmt"

	"github.com/hupe1980/edgequery/internal/batch"
	"github.com/hupe1980/edgequery/internal/kernel"
	"github.com/hupe1980/edgequery/internal/resource"
)

var (
	// ErrInvalidArgument is returned when an argument is invalid
	// (negative radius, negative cap, malformed matrix, ...).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInconsistentBatching is returned when batch ids are supplied for only
	// one of the two collections.
	ErrInconsistentBatching = errors.New("inconsistent batching: batch ids must be given for both collections or for neither")

	// ErrUnsortedBatchIDs is returned when a batch id vector is not non-decreasing.
	ErrUnsortedBatchIDs = errors.New("batch ids must be sorted")

	// ErrNegativeBatchID is returned when a batch id vector contains a negative id.
	ErrNegativeBatchID = errors.New("batch ids must be non-negative")

	// ErrMemoryLimitExceeded is returned when the edge list of a call would
	// exceed the engine's memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// ErrShapeMismatch indicates that an input does not have the expected number
// of elements (e.g. a batch id vector whose length differs from its collection).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrShapeMismatch struct {
	What     string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: %s: expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

// ErrNodeIndexOutOfRange indicates a candidate assigned to a node id that does
// not index into the adjacency rows.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrNodeIndexOutOfRange struct {
	Candidate int
	Node      int
	Width     int
	cause     error
}

func (e *ErrNodeIndexOutOfRange) Error() string {
	return fmt.Sprintf("node index out of range: candidate %d has node %d, adjacency width is %d", e.Candidate, e.Node, e.Width)
}

func (e *ErrNodeIndexOutOfRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, batch.ErrInconsistent):
		return fmt.Errorf("%w: %w", ErrInconsistentBatching, err)
	case errors.Is(err, batch.ErrUnsorted):
		return fmt.Errorf("%w: %w", ErrUnsortedBatchIDs, err)
	case errors.Is(err, batch.ErrNegative):
		return fmt.Errorf("%w: %w", ErrNegativeBatchID, err)
	case errors.Is(err, kernel.ErrShape):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	var nre *kernel.NodeRangeError
	if errors.As(err, &nre) {
		return &ErrNodeIndexOutOfRange{Candidate: nre.Candidate, Node: nre.Node, Width: nre.Width, cause: err}
	}

	return err
}
