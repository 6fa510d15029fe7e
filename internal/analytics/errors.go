package analytics

import (
	"errors"
	"fmt"
)

// Error kinds. Matched with errors.Is against errors returned by the engine.
var (
	// ErrAggregationFailed wraps a failed ledger store query.
	ErrAggregationFailed = errors.New("aggregation failed")

	// ErrCalculation is reserved for numeric overflow and invalid-decimal
	// conditions. No code path produces it today; it exists so callers can
	// already branch on the kind.
	ErrCalculation = errors.New("calculation error")

	// ErrDataCorruption is reserved for broken parent relationships.
	// Orphaned records contribute zero and aggregation continues, so this
	// kind is never fatal to a whole query.
	ErrDataCorruption = errors.New("data corruption")
)

// Error carries the kind, the failed operation, and the underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func aggregationFailed(op string, err error) error {
	return &Error{Kind: ErrAggregationFailed, Op: op, Err: err}
}
