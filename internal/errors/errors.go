package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeInsufficientFunds = "E100"
	CodeDuplicateClaim    = "E110"
	CodeStorage           = "E200"
	CodeDatabase          = "E210"
	CodeAdGate            = "E300"
)

// AppError is the engine-wide error value. No operation panics; every
// rejection is represented as one of these and inspected by the caller.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	// Shortfall carries the missing coin amount for insufficient-funds
	// rejections so handlers can show it to the player.
	Shortfall int64
	cause     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewInsufficientFundsError rejects a coin-funded purchase. State stays
// untouched; the shortfall is surfaced to the player.
func NewInsufficientFundsError(shortfall int64) *AppError {
	return &AppError{
		Code:        CodeInsufficientFunds,
		Message:     fmt.Sprintf("insufficient funds: short %d coins", shortfall),
		UserMessage: fmt.Sprintf("Недостаточно монет. Нужно ещё %d монет", shortfall),
		Severity:    SeverityLow,
		Retryable:   false,
		Shortfall:   shortfall,
	}
}

// NewDuplicateClaimError marks an already-redeemed daily reward or referral
// token. Callers treat it as a quiet no-op.
func NewDuplicateClaimError(what string) *AppError {
	return &AppError{
		Code:        CodeDuplicateClaim,
		Message:     fmt.Sprintf("duplicate claim: %s", what),
		UserMessage: "Награда уже получена",
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewStorageError wraps a snapshot persistence failure. Persistence is
// best-effort: the session keeps running on the in-memory state.
func NewStorageError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeStorage,
		Message:     fmt.Sprintf("storage error: %s", underlyingMsg),
		UserMessage: "Временная проблема, попробуйте позже",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewAdGateError wraps a rewarded-ad provider failure. The engine always
// falls open on it, so the severity stays moderate.
func NewAdGateError(cause error) *AppError {
	return &AppError{
		Code:        CodeAdGate,
		Message:     "rewarded ad gate error",
		UserMessage: "Реклама временно недоступна",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewDatabaseError wraps a player-directory query failure.
func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeDatabase,
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Временная проблема, попробуйте позже",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}
