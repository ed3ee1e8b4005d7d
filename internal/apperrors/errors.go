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

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current resource state")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrMissingRate indicates that no active exchange rate exists for a currency
// pair on or before the requested date. Posting a foreign-currency transaction
// without a resolvable rate is rejected outright; the caller must record a rate
// and retry.
var ErrMissingRate = errors.New("no exchange rate found")

// ErrImbalancedEntry indicates that a journal entry's debit and credit totals
// differ beyond the rounding tolerance. This is an internal invariant violation,
// never a user input problem.
var ErrImbalancedEntry = errors.New("journal entry debits and credits do not balance")

// ErrPostingConflict indicates that a concurrent posting already linked a
// journal entry to the same source transaction. The caller should reload the
// transaction and retry.
var ErrPostingConflict = errors.New("concurrent posting conflict")

// AppError carries an HTTP-ish status code alongside a message and wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError creates an AppError that matches errors.Is(err, ErrValidation).
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}

// NewMissingRateError builds the caller-facing missing-rate error. It names the
// currency pair and the lookup date so the operator can record the rate and
// retry the same operation.
func NewMissingRateError(from, to string, onOrBefore string) *AppError {
	return &AppError{
		Code:    422,
		Message: fmt.Sprintf("no active exchange rate for %s->%s on or before %s", from, to, onOrBefore),
		Err:     ErrMissingRate,
	}
}
