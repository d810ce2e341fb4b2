package errors

import (
	"fmt"
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Describe renders the error with its code, for reason fields in
// structured records.
func (e *AppError) Describe() string {
	return e.Code + ": " + e.Error()
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeData          = "DATA_ERROR"          // insufficient or invalid points reaching a fit or bin
	CodeConvergence   = "CONVERGENCE_ERROR"   // optimizer failed to produce a finite, bounded result
	CodeDegenerate    = "DEGENERATE_ERROR"    // non-positive chi-square curvature at the optimum
	CodeConfiguration = "CONFIGURATION_ERROR" // unknown quality profile or bad option
	CodeLoad          = "LOAD_ERROR"          // rotation-curve table could not be read
	CodeStore         = "STORE_ERROR"         // run archive failure
	CodeInternal      = "INTERNAL_ERROR"
)

// Common error constructors
func DataError(message string) *AppError {
	return New(CodeData, message)
}

func ConvergenceError(message string) *AppError {
	return New(CodeConvergence, message)
}

func DegenerateError(message string) *AppError {
	return New(CodeDegenerate, message)
}

func ConfigurationError(message string) *AppError {
	return New(CodeConfiguration, message)
}

func LoadError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeLoad,
		Message: fmt.Sprintf("failed to load %s", path),
		Cause:   cause,
	}
}

func StoreError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeStore,
		Message: message,
		Cause:   cause,
	}
}
