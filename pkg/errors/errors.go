package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("record not found")
	ErrLoanNotFound    = errors.New("loan not found")
	ErrExpenseNotFound = errors.New("recurring expense not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrSettlement      = errors.New("settlement could not be completed")
)

// DomainError carries an error code alongside a human readable message so the
// boundary layer can map failures to responses without string matching.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeLoanNotFound    = "LOAN_NOT_FOUND"
	ErrCodeExpenseNotFound = "EXPENSE_NOT_FOUND"
	ErrCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	ErrCodeVersionConflict = "VERSION_CONFLICT"
	ErrCodeSettlement      = "SETTLEMENT_FAILED"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeCacheError      = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapValidation(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message, ErrValidation)
}

func WrapValidationErr(err error) *DomainError {
	return NewDomainError(ErrCodeValidation, "request validation failed", errors.Join(ErrValidation, err))
}

func WrapLoanNotFound(loanID string) *DomainError {
	return NewDomainError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		errors.Join(ErrNotFound, ErrLoanNotFound),
	)
}

func WrapExpenseNotFound(expenseID string) *DomainError {
	return NewDomainError(
		ErrCodeExpenseNotFound,
		fmt.Sprintf("Recurring expense with ID %s not found", expenseID),
		errors.Join(ErrNotFound, ErrExpenseNotFound),
	)
}

func WrapAccountNotFound(accountID string) *DomainError {
	return NewDomainError(
		ErrCodeAccountNotFound,
		fmt.Sprintf("Account with ID %s not found", accountID),
		errors.Join(ErrNotFound, ErrAccountNotFound),
	)
}

func WrapVersionConflict(entity, id string) *DomainError {
	return NewDomainError(
		ErrCodeVersionConflict,
		fmt.Sprintf("%s %s was modified by a concurrent request", entity, id),
		ErrVersionConflict,
	)
}

func WrapSettlementFailed(err error) *DomainError {
	return NewDomainError(
		ErrCodeSettlement,
		"settlement aborted, no state was changed",
		errors.Join(ErrSettlement, err),
	)
}

func WrapDatabaseError(err error) *DomainError {
	return NewDomainError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *DomainError {
	return NewDomainError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

// Kind predicates used by the handler layer to pick response codes.

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

func IsSettlementFailure(err error) bool {
	return errors.Is(err, ErrSettlement)
}
