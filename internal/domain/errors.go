package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups domain errors by how callers are expected to react.
type ErrorKind string

const (
	KindNotFound                ErrorKind = "not_found"
	KindValidation              ErrorKind = "validation"
	KindInsufficientFunds       ErrorKind = "insufficient_funds"
	KindStateConflict           ErrorKind = "state_conflict"
	KindCollaboratorUnavailable ErrorKind = "collaborator_unavailable"
	KindPartialSettlement       ErrorKind = "partial_settlement"
	KindRateLimited             ErrorKind = "rate_limited"
	KindInternal                ErrorKind = "internal"
)

// Error is a categorized domain error with a stable code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// Account errors
	ErrAccountNotFound         = newError(KindNotFound, "ACCOUNT_NOT_FOUND", "account not found")
	ErrOwnerNotFound           = newError(KindNotFound, "OWNER_NOT_FOUND", "owner not found")
	ErrAccountLimitExceeded    = newError(KindValidation, "ACCOUNT_LIMIT_EXCEEDED", "owner already holds the maximum number of accounts")
	ErrAccountNumberExhausted  = newError(KindInternal, "ACCOUNT_NUMBER_EXHAUSTED", "could not generate a unique account number")
	ErrPositiveBalance         = newError(KindValidation, "POSITIVE_BALANCE", "account balance must be zero to cancel")
	ErrAccountNotActive        = newError(KindStateConflict, "ACCOUNT_NOT_ACTIVE", "account is not active")
	ErrInvalidAccountType      = newError(KindValidation, "INVALID_ACCOUNT_TYPE", "invalid account type")
	ErrInvalidAccountNumber    = newError(KindValidation, "INVALID_ACCOUNT_NUMBER", "account number must be 10 digits")
	ErrInvalidStatusTransition = newError(KindStateConflict, "INVALID_STATUS_TRANSITION", "account status change not allowed")

	// Restriction errors
	ErrInvalidRange        = newError(KindValidation, "INVALID_RANGE", "restriction amount_from must be lower than amount_to")
	ErrOverlappingRange    = newError(KindValidation, "OVERLAPPING_RANGE", "restriction overlaps an existing restriction")
	ErrRestrictionNotFound = newError(KindNotFound, "RESTRICTION_NOT_FOUND", "restriction not found")

	// Transaction errors
	ErrTransactionNotFound    = newError(KindNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrSameAccountTransfer    = newError(KindValidation, "SAME_ACCOUNT_TRANSFER", "cannot transfer to the same account")
	ErrInvalidAmount          = newError(KindValidation, "INVALID_AMOUNT", "amount must be positive")
	ErrAmountTooSmall         = newError(KindValidation, "AMOUNT_TOO_SMALL", "amount below minimum allowed")
	ErrAmountTooLarge         = newError(KindValidation, "AMOUNT_TOO_LARGE", "amount exceeds maximum allowed")
	ErrInvalidAmountScale     = newError(KindValidation, "INVALID_AMOUNT_SCALE", "amount must have at most 2 decimal places")
	ErrInsufficientFunds      = newError(KindInsufficientFunds, "INSUFFICIENT_FUNDS", "insufficient funds")
	ErrInvalidStateTransition = newError(KindStateConflict, "INVALID_STATE_TRANSITION", "transaction state transition not allowed")
	ErrNotPending             = newError(KindStateConflict, "NOT_PENDING", "transaction is not pending authorization")
	ErrNotAuthorized          = newError(KindStateConflict, "NOT_AUTHORIZED", "transaction is not authorized")
	ErrStaleTransaction       = newError(KindStateConflict, "STALE_TRANSACTION", "transaction was modified concurrently")
	ErrInvalidTransaction     = newError(KindValidation, "INVALID_TRANSACTION", "invalid transaction")
	ErrInvalidDescription     = newError(KindValidation, "INVALID_DESCRIPTION", "invalid description")
	ErrMissingVerification    = newError(KindValidation, "MISSING_VERIFICATION_CODE", "verification code is required")
	ErrPatternMismatch        = newError(KindValidation, "PATTERN_MISMATCH", "pattern does not match the restriction")
	ErrPatternRejected        = newError(KindValidation, "PATTERN_REJECTED", "authentication pattern rejected")
	ErrTooManyAttempts        = newError(KindRateLimited, "TOO_MANY_ATTEMPTS", "too many authorization attempts, try again later")

	// Request errors
	ErrInvalidRequest = newError(KindValidation, "INVALID_REQUEST", "invalid request")

	// Collaborator errors
	ErrCollaboratorUnavailable = newError(KindCollaboratorUnavailable, "COLLABORATOR_UNAVAILABLE", "dependent service unavailable")
	ErrCollaboratorTimeout     = newError(KindCollaboratorUnavailable, "COLLABORATOR_TIMEOUT", "dependent service timed out")

	// Settlement errors
	ErrPartialSettlement = newError(KindPartialSettlement, "PARTIAL_SETTLEMENT", "balances settled but movements were not recorded")
)

var byCode = map[string]*Error{}

func init() {
	for _, e := range []*Error{
		ErrAccountNotFound, ErrOwnerNotFound, ErrAccountLimitExceeded, ErrAccountNumberExhausted,
		ErrPositiveBalance, ErrAccountNotActive, ErrInvalidAccountType, ErrInvalidAccountNumber,
		ErrInvalidStatusTransition, ErrInvalidRange, ErrOverlappingRange, ErrRestrictionNotFound,
		ErrTransactionNotFound, ErrSameAccountTransfer, ErrInvalidAmount, ErrAmountTooSmall,
		ErrAmountTooLarge, ErrInsufficientFunds, ErrInvalidStateTransition, ErrNotPending,
		ErrNotAuthorized, ErrStaleTransaction, ErrInvalidTransaction, ErrInvalidDescription,
		ErrMissingVerification, ErrPatternMismatch, ErrPatternRejected, ErrTooManyAttempts,
		ErrInvalidRequest, ErrCollaboratorUnavailable, ErrCollaboratorTimeout, ErrPartialSettlement,
		ErrInvalidAmountScale,
	} {
		byCode[e.Code] = e
	}
}

// ErrorFromCode returns the sentinel registered for code, if any.
func ErrorFromCode(code string) (*Error, bool) {
	e, ok := byCode[code]
	return e, ok
}

// AsError extracts the categorized domain error from err.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal when it is not a domain error.
func KindOf(err error) ErrorKind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, "INTERNAL" when it is not a domain error.
func CodeOf(err error) string {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return "INTERNAL"
}

// IsCollaboratorFailure reports whether err came from an unreachable or slow collaborator.
func IsCollaboratorFailure(err error) bool {
	return KindOf(err) == KindCollaboratorUnavailable
}

// Wrapf annotates a sentinel with detail while keeping it matchable with errors.Is.
func Wrapf(sentinel *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
