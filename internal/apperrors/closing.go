package apperrors

import (
	"errors"
	"fmt"
)

// Outcome records how far a closing attempt got before it returned.
type Outcome string

const (
	// OutcomeNothingWritten means the ledger was never touched.
	OutcomeNothingWritten Outcome = "NOTHING_WRITTEN"
	// OutcomeCommitted means every write landed.
	OutcomeCommitted Outcome = "COMMITTED"
	// OutcomeRolledBack means a partial write happened and was fully undone.
	OutcomeRolledBack Outcome = "ROLLED_BACK"
	// OutcomeRollbackFailed means a partial write happened and could not be undone.
	OutcomeRollbackFailed Outcome = "ROLLBACK_FAILED"
)

// ClosingError is returned by the closing engine for every failed attempt.
type ClosingError struct {
	Outcome Outcome
	Err     error
}

func (e *ClosingError) Error() string {
	return fmt.Sprintf("closing %s: %v", e.Outcome, e.Err)
}

func (e *ClosingError) Unwrap() error {
	return e.Err
}

// NewClosingError wraps err with the given outcome.
func NewClosingError(outcome Outcome, err error) *ClosingError {
	return &ClosingError{Outcome: outcome, Err: err}
}

// OutcomeOf reports the outcome recorded in err, or OutcomeNothingWritten when err carries none.
func OutcomeOf(err error) Outcome {
	var ce *ClosingError
	if errors.As(err, &ce) {
		return ce.Outcome
	}
	return OutcomeNothingWritten
}

// NeedsOperator reports whether err left the ledger in a state that needs manual reconciliation.
func NeedsOperator(err error) bool {
	var ce *ClosingError
	if errors.As(err, &ce) {
		return ce.Outcome == OutcomeRollbackFailed
	}
	return errors.Is(err, ErrRollbackFailed)
}
