package domain

import "errors"

// Domain errors
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInternalError          = errors.New("internal error")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrRecurrenceRuleNotFound = errors.New("recurrence rule not found")
	ErrNameRequired           = errors.New("description is required")
	ErrNameTooLong            = errors.New("description exceeds maximum length")
	ErrInvalidAmount          = errors.New("amount must be at least 0.01")
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
	ErrInvalidStatus          = errors.New("invalid transaction status")
	ErrInvalidFrequency       = errors.New("invalid recurrence frequency")
	ErrInvalidDayOfMonth      = errors.New("day of month must be between 1 and 31")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrInvalidForecastMonths  = errors.New("forecast months must be between 1 and 24")
	ErrInvalidHistoryMonths   = errors.New("historical months must be between 1 and 24")
)

// Validation constants
const (
	MaxDescriptionLength = 500
	MaxAccountNameLength = 255
)
