package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected failure inside the service.
var ErrInternal = errors.New("internal error")

// ErrForbidden indicates the caller may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrConfiguration indicates a user-correctable setup problem, such as a missing
// Retained Earnings account. It is surfaced verbatim and never retried.
var ErrConfiguration = errors.New("configuration error")

// ErrAlreadyClosed indicates the accounting period or fiscal year is already closed or locked.
var ErrAlreadyClosed = errors.New("period already closed")

// ErrStorage indicates a read or write against the ledger store failed.
var ErrStorage = errors.New("storage error")

// ErrRollbackFailed indicates a partial write could not be undone and needs manual reconciliation.
var ErrRollbackFailed = errors.New("rollback failed")

// ErrReconciliation indicates the post-close balance verification read failed.
var ErrReconciliation = errors.New("reconciliation warning")

// AppError carries a status code alongside a message and the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. A 5xx code without a cause is tagged as ErrInternal.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil && code >= 500 {
		err = ErrInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError returns an AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewStorageError wraps a driver error so it matches both ErrStorage and the original cause.
func NewStorageError(message string, err error) *AppError {
	return &AppError{Code: 500, Message: message, Err: errors.Join(ErrStorage, err)}
}
