package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error for callers and the transport layer.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION"
	CodeOwnershipViolation ErrorCode = "OWNERSHIP_VIOLATION"
	CodeInsufficientFunds  ErrorCode = "INSUFFICIENT_FUNDS"
	CodeSettlementFailure  ErrorCode = "SETTLEMENT_FAILURE"
	CodeDuplicateOperation ErrorCode = "DUPLICATE_OPERATION"
	CodeUnbalancedJournal  ErrorCode = "UNBALANCED_JOURNAL"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeIllegalState       ErrorCode = "ILLEGAL_STATE"
	CodeVersionConflict    ErrorCode = "VERSION_CONFLICT"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
)

// Error is a typed domain error. Retryable is true only when the operation
// left no local state behind, so the caller may safely resubmit.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// Lookup errors
	ErrAccountNotFound  = &Error{Code: CodeNotFound, Message: "account not found", Retryable: true}
	ErrTransferNotFound = &Error{Code: CodeNotFound, Message: "transfer not found", Retryable: true}
	ErrCustomerNotFound = &Error{Code: CodeNotFound, Message: "customer not found", Retryable: true}
	ErrEntryNotFound    = &Error{Code: CodeNotFound, Message: "journal entry not found", Retryable: true}

	// Movement errors
	ErrInvalidAmount       = &Error{Code: CodeValidation, Message: "amount must be positive", Retryable: true}
	ErrSameAccount         = &Error{Code: CodeValidation, Message: "source and destination accounts are the same", Retryable: true}
	ErrCurrencyMismatch    = &Error{Code: CodeValidation, Message: "accounts have different currencies", Retryable: true}
	ErrAccountNotActive    = &Error{Code: CodeValidation, Message: "account is not active", Retryable: true}
	ErrBalanceNotZero      = &Error{Code: CodeValidation, Message: "account balance must be zero", Retryable: true}
	ErrInsufficientFunds   = &Error{Code: CodeInsufficientFunds, Message: "available balance is below requested amount", Retryable: true}
	ErrOwnershipViolation  = &Error{Code: CodeOwnershipViolation, Message: "caller does not own the source account", Retryable: true}
	ErrDuplicateOperation  = &Error{Code: CodeDuplicateOperation, Message: "operation with this reference already recorded", Retryable: false}
	ErrUnbalancedJournal   = &Error{Code: CodeUnbalancedJournal, Message: "journal entry debits and credits do not balance", Retryable: true}
	ErrVersionConflict     = &Error{Code: CodeVersionConflict, Message: "account was modified concurrently", Retryable: true}
	ErrTransferNotFailed   = &Error{Code: CodeIllegalState, Message: "only a failed transfer can be compensated", Retryable: false}
	ErrIllegalTransition   = &Error{Code: CodeIllegalState, Message: "transfer status transition not allowed", Retryable: false}
	ErrTransferNotPending  = &Error{Code: CodeIllegalState, Message: "transfer is not pending or scheduled", Retryable: false}
	ErrTransferNotDue      = &Error{Code: CodeValidation, Message: "scheduled transfer is not due yet", Retryable: true}
	ErrUnsupportedCurrency = &Error{Code: CodeValidation, Message: "unsupported currency code", Retryable: true}
	ErrInvalidDescription  = &Error{Code: CodeValidation, Message: "invalid description", Retryable: true}

	// Authentication errors
	ErrInvalidToken = &Error{Code: CodeUnauthorized, Message: "invalid token", Retryable: false}
	ErrExpiredToken = &Error{Code: CodeUnauthorized, Message: "token has expired", Retryable: false}
)

// SettlementError wraps a gateway failure, carrying the external code and
// message verbatim. Nothing was persisted locally, so it is retry safe.
func SettlementError(code, message string) *Error {
	return &Error{
		Code:      CodeSettlementFailure,
		Message:   fmt.Sprintf("settlement rejected [%s]: %s", code, message),
		Retryable: true,
	}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Unknown errors report an empty code.
func CodeOf(err error) ErrorCode {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}

// IsRetryable reports whether err is a domain error that left no state behind.
func IsRetryable(err error) bool {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Retryable
	}
	return false
}
