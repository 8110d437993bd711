package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// Input errors - empty/oversized code, malformed repository reference.
	// Rejected synchronously, no job is created.
	ErrorTypeInput ErrorType = iota
	// Partial errors - a single file failed inside a larger aggregation
	ErrorTypePartial
	// Collaborator errors - predictor, remote listing, or ledger failures
	ErrorTypeCollaborator
	// Internal errors - unexpected failures inside extraction or scoring
	ErrorTypeInternal
	// Config errors - missing or invalid configuration
	ErrorTypeConfig
	// Storage errors - archive or journal I/O failures
	ErrorTypeStorage
)

// Severity represents how critical an error is
type Severity int

const (
	// SeverityLow - can continue with degraded functionality
	SeverityLow Severity = iota
	// SeverityMedium - should be addressed but not fatal
	SeverityMedium
	// SeverityHigh - significant issue, may fail the current job
	SeverityHigh
	// SeverityCritical - must be addressed, stops execution
	SeverityCritical
)

// Error represents a structured error with context
type Error struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is checks if this error matches the target error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsFatal returns true if this error should stop execution
func (e *Error) IsFatal() bool {
	return e.Severity == SeverityCritical
}

// DetailedString returns a detailed error message with context
func (e *Error) DetailedString() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] [%s] %s\n",
		severityString(e.Severity),
		typeString(e.Type),
		e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Caused by: %v\n", e.Cause))
	}

	if len(e.Context) > 0 {
		sb.WriteString("Context:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, v))
		}
	}

	if e.StackTrace != "" {
		sb.WriteString(fmt.Sprintf("Stack trace:\n%s\n", e.StackTrace))
	}

	return sb.String()
}

func typeString(t ErrorType) string {
	switch t {
	case ErrorTypeInput:
		return "INPUT"
	case ErrorTypePartial:
		return "PARTIAL"
	case ErrorTypeCollaborator:
		return "COLLABORATOR"
	case ErrorTypeInternal:
		return "INTERNAL"
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeStorage:
		return "STORAGE"
	default:
		return "UNKNOWN"
	}
}

func severityString(s Severity) string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) string {
	var sb strings.Builder
	for i := skip; i < skip+10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			break
		}
		sb.WriteString(fmt.Sprintf("  %s:%d %s\n", file, line, fn.Name()))
	}
	return sb.String()
}

// New creates a new error with the given type, severity, and message
func New(errType ErrorType, severity Severity, message string) *Error {
	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, severity Severity, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		StackTrace: captureStackTrace(2),
	}
}

// Convenience constructors for the four lifecycle error classes

// InputError creates an input rejection error (no job is created for these)
func InputError(message string) *Error {
	return New(ErrorTypeInput, SeverityHigh, message)
}

// InputErrorf creates an input rejection error with formatting
func InputErrorf(format string, args ...interface{}) *Error {
	return New(ErrorTypeInput, SeverityHigh, fmt.Sprintf(format, args...))
}

// PartialError wraps a per-file failure inside an aggregation
func PartialError(err error, message string) *Error {
	return Wrap(err, ErrorTypePartial, SeverityLow, message)
}

// CollaboratorError wraps a predictor, fetch, or ledger failure
func CollaboratorError(err error, message string) *Error {
	return Wrap(err, ErrorTypeCollaborator, SeverityMedium, message)
}

// CollaboratorErrorf wraps a collaborator failure with formatting
func CollaboratorErrorf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, ErrorTypeCollaborator, SeverityMedium, fmt.Sprintf(format, args...))
}

// InternalError wraps an unexpected computation failure; terminal for the
// owning job only, never fatal to the process
func InternalError(err error, message string) *Error {
	return Wrap(err, ErrorTypeInternal, SeverityHigh, message)
}

// ConfigError creates a configuration error
func ConfigError(message string) *Error {
	return New(ErrorTypeConfig, SeverityCritical, message)
}

// StorageError wraps an archive or journal failure
func StorageError(err error, message string) *Error {
	return Wrap(err, ErrorTypeStorage, SeverityMedium, message)
}
