package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// MarshalZerologObject adds the code and message to a zerolog event
func (e *AppError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("code", e.Code).Str("message", e.Message)
	if e.Cause != nil {
		event.Str("cause", e.Cause.Error())
	}
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context and a stack trace
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if crdb.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   crdb.WithStackDepth(err, 1),
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if crdb.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return crdb.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if crdb.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return crdb.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return crdb.As(err, target)
}

// UserMessage returns the message shown to the operator. Server-reported
// and not-found errors surface the server's own text, everything else the
// full chain.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = crdb.UnwrapOnce(e) {
		if appErr, ok := e.(*AppError); ok && appErr.Cause == nil && fromServer(appErr.Code) {
			return appErr.Message
		}
	}
	return err.Error()
}

func fromServer(code string) bool {
	return code == CodeServerReported || code == CodeNotFound
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"

	// Failure taxonomy of the controller
	CodeUserInput      = "USER_INPUT"
	CodeTransport      = "TRANSPORT"
	CodeServerReported = "SERVER_REPORTED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// UserInput reports a missing operator selection, caught before any request
func UserInput(message string) *AppError {
	return New(CodeUserInput, message)
}

// Transport reports a request that failed or produced an unreadable body
func Transport(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeTransport,
		Message: message,
		Cause:   crdb.WithStackDepth(cause, 1),
	}
}

// ServerReported carries the text of an `error` field, or a non-2xx status
func ServerReported(message string) *AppError {
	return New(CodeServerReported, message)
}

// IsNotFound reports whether err carries a not-found status from the server
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsUserInput reports whether err was raised by a presence check
func IsUserInput(err error) bool {
	return GetCode(err) == CodeUserInput
}
