package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation  = "E100"
	CodeDatabase    = "E200"
	CodeExternalAPI = "E300"
	CodeState       = "E400"
	CodeSessionBusy = "E401"
	CodeLead        = "E600"
)

const defaultUserMessage = "Something went wrong on our side. Please try again in a moment."

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
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

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid input. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeDatabase,
		Message:     fmt.Sprintf("Database error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        CodeExternalAPI,
		Message:     fmt.Sprintf("External API error: %s", apiName),
		UserMessage: "The service is temporarily unavailable.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewStateError(msg string, cause error) *AppError {
	return &AppError{
		Code:        CodeState,
		Message:     msg,
		UserMessage: "I lost track of our conversation. Send /start to begin again.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}

// NewSessionBusyError reports a turn rejected because another turn holds the session.
func NewSessionBusyError(cause error) *AppError {
	return &AppError{
		Code:        CodeSessionBusy,
		Message:     "session is busy",
		UserMessage: "Still working on your previous message, one moment please.",
		Severity:    SeverityLow,
		Retryable:   true,
		cause:       cause,
	}
}

func NewLeadError(msg string, cause error) *AppError {
	return &AppError{
		Code:        CodeLead,
		Message:     msg,
		UserMessage: "We couldn't save your details right now. Please try again later.",
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       cause,
	}
}
