package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSequenceMalformed means the highest stored identifier of a kind has
	// a non-numeric suffix. Allocation for that kind must fail loudly, never
	// restart the series from zero.
	ErrSequenceMalformed = errors.New("sequence identifier malformed")

	// ErrNegativeAggregate means an adjustment would drive the daily counter
	// total below zero. The whole triggering workflow is aborted.
	ErrNegativeAggregate = errors.New("aggregate counter cannot go negative")
)

// ValidationError rejects a request before any write, naming the offending
// field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InsufficientStockError rejects a shipment line requesting more than is on
// hand. Carries enough context for the caller to report precisely.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d, requested=%d",
		e.ProductID, e.Available, e.Requested)
}

// PartialPersistenceError marks a side step that failed after the main
// transaction committed. The committed state is valid; the named step needs
// reconciliation, so this is surfaced distinctly from clean rejections.
type PartialPersistenceError struct {
	Step string
	Err  error
}

func (e *PartialPersistenceError) Error() string {
	return fmt.Sprintf("step %q failed after commit: %v", e.Step, e.Err)
}

func (e *PartialPersistenceError) Unwrap() error {
	return e.Err
}
