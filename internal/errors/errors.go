package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrInvalidYAML      = errors.New("invalid YAML format")
	ErrMultipleValues   = errors.New("multiple values found at the root, only one is allowed")
	ErrTooDeep          = errors.New("document nesting exceeds the maximum depth")
	ErrTooLarge         = errors.New("document expands beyond the size limit")
	ErrInvalidPath      = errors.New("invalid path expression")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided: please specify a file or pipe data to stdin")
	ErrInvalidFilePath  = errors.New("invalid file path")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrRepairFailed     = errors.New("document could not be repaired")
	ErrSchemaViolation  = errors.New("document does not match schema")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypePath       ErrorType = "path"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRepair     ErrorType = "repair"
	ErrorTypeTransform  ErrorType = "transform"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError of the same Type
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error for malformed document text
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewPathError creates a new error for a malformed path expression
func NewPathError(message string, err error) *AppError {
	return newError(ErrorTypePath, message, err)
}

// NewValidationError creates a new error for schema validation failures
func NewValidationError(message string, err error) *AppError {
	return newError(ErrorTypeValidation, message, err)
}

// NewRepairError creates a new error for a document the repair pipeline gave up on
func NewRepairError(message string, err error) *AppError {
	return newError(ErrorTypeRepair, message, err)
}

// NewTransformError creates a new error for invalid transform parameters
func NewTransformError(message string, err error) *AppError {
	return newError(ErrorTypeTransform, message, err)
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("Parse error: %s", appErr.Message)
		case ErrorTypePath:
			return fmt.Sprintf("Path error: %s", appErr.Message)
		case ErrorTypeValidation:
			return fmt.Sprintf("Validation error: %s", appErr.Message)
		case ErrorTypeRepair:
			return fmt.Sprintf("Repair error: %s", appErr.Message)
		case ErrorTypeTransform:
			return fmt.Sprintf("Transform error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a document."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Try again with --lenient to repair it."
	}
	if errors.Is(err, ErrInvalidPath) {
		return "Error: The path expression is invalid. Use dot-separated keys, '*' or key[index]."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
