package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrExtraction marks a document the model could not read or parse.
	// Reported per document; never aborts the batch.
	ErrExtraction = errors.New("extraction failed")

	// ErrAccess marks missing/invalid credentials or a spreadsheet that is
	// not shared with the service account. Fatal for spreadsheet operations.
	ErrAccess = errors.New("spreadsheet access denied")

	// ErrSchema marks a spreadsheet with no FILIACION column in any tab.
	// Fatal for spreadsheet operations; extraction may still complete.
	ErrSchema = errors.New("spreadsheet schema invalid")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsFatalSheetError reports whether err should stop all further spreadsheet
// operations for the run. Extraction of remaining documents continues.
func IsFatalSheetError(err error) bool {
	return errors.Is(err, ErrAccess) || errors.Is(err, ErrSchema)
}
