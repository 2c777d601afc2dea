// Package apperror provides structured errors for the routing engine:
// stable error codes, severity levels, optional details, and a mapping onto
// the gRPC status code table. The CLI uses that table for its exit status.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Graph store
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
	CodeInvalidVertex ErrorCode = "INVALID_VERTEX"
	CodeEmptyGraph    ErrorCode = "EMPTY_GRAPH"
	CodeNilInput      ErrorCode = "NIL_INPUT"

	// Input validation
	CodeInvalidInput    ErrorCode = "INVALID_INPUT"
	CodeNegativeWeight  ErrorCode = "NEGATIVE_WEIGHT"
	CodeInvalidWeight   ErrorCode = "INVALID_WEIGHT"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeParseError      ErrorCode = "PARSE_ERROR"

	// Algorithms
	CodeNegativeCycle    ErrorCode = "NEGATIVE_CYCLE"
	CodeAlgorithmError   ErrorCode = "ALGORITHM_ERROR"
	CodeInvalidAlgorithm ErrorCode = "INVALID_ALGORITHM"
	CodeCanceled         ErrorCode = "CANCELED"
	CodeTimeout          ErrorCode = "TIMEOUT"

	// Infrastructure
	CodeDatabase    ErrorCode = "DATABASE_ERROR"
	CodeCache       ErrorCode = "CACHE_ERROR"
	CodeUnavailable ErrorCode = "UNAVAILABLE"

	// General
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeUnimplemented ErrorCode = "UNIMPLEMENTED"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error that might require immediate human intervention.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is the engine's error type. Field names the offending argument
// (for example "from" or "source") when one can be singled out.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code. This makes
// errors.Is(err, apperror.ErrNegativeWeight) work across wrapped chains.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// GRPCStatus converts the application error into a gRPC status.Status.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.grpcCode(), e.Message)
}

func (e *Error) grpcCode() codes.Code {
	switch e.Code {
	case CodeOutOfRange:
		return codes.OutOfRange

	case CodeInvalidVertex, CodeInvalidInput, CodeNegativeWeight, CodeInvalidWeight,
		CodeInvalidArgument, CodeParseError, CodeNilInput, CodeInvalidAlgorithm:
		return codes.InvalidArgument

	case CodeEmptyGraph, CodeNegativeCycle:
		return codes.FailedPrecondition

	case CodeNotFound:
		return codes.NotFound

	case CodeCanceled:
		return codes.Canceled

	case CodeTimeout:
		return codes.DeadlineExceeded

	case CodeUnavailable, CodeCache:
		return codes.Unavailable

	case CodeUnimplemented:
		return codes.Unimplemented

	default:
		return codes.Internal
	}
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a format string.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a new application error bound to an argument name.
func NewWithField(code ErrorCode, message, field string) *Error {
	err := New(code, message)
	err.Field = field
	return err
}

// Wrap creates a new application error that wraps an existing error.
func Wrap(cause error, code ErrorCode, message string) *Error {
	err := New(code, message)
	err.Cause = cause
	return err
}

// OutOfRange builds the error returned whenever a vertex index is not
// below the current vertex count.
func OutOfRange(field string, index, vertexCount int) *Error {
	return NewWithField(CodeOutOfRange,
		fmt.Sprintf("vertex index %d out of range [0, %d)", index, vertexCount), field).
		WithDetails("index", index).
		WithDetails("vertex_count", vertexCount)
}

// NegativeWeight builds the invalid-input error raised by algorithms that
// require non-negative edge weights.
func NegativeWeight(from, to int, weight float64) *Error {
	return New(CodeNegativeWeight,
		fmt.Sprintf("negative edge weight %g on edge %d->%d", weight, from, to)).
		WithDetails("from", from).
		WithDetails("to", to).
		WithDetails("weight", weight)
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error and returns the modified error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. Non-application errors map to CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsOutOfRange reports whether err signals a bad vertex index.
func IsOutOfRange(err error) bool {
	return Is(err, CodeOutOfRange)
}

// IsInvalidInput reports whether err is one of the invalid-input kinds.
func IsInvalidInput(err error) bool {
	switch Code(err) {
	case CodeInvalidInput, CodeNegativeWeight, CodeInvalidWeight, CodeInvalidArgument, CodeParseError:
		return true
	}
	return false
}

// ToGRPC converts an application error or any other error into a gRPC error status.
// Context cancellation and deadline errors keep their own codes.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.GRPCStatus().Err()
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// ExitCode maps err onto a process exit status using the gRPC code numbers:
// 0 for nil, 3 for invalid input, 11 for out of range, 9 for a negative cycle,
// 1 for cancellation, 13 for anything unclassified.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	code := status.Code(ToGRPC(err))
	if code == codes.OK {
		return int(codes.Unknown)
	}
	return int(code)
}

// Predefined errors for common scenarios. Compare with errors.Is or Is;
// never mutate them.
var (
	ErrEmptyGraph     = New(CodeEmptyGraph, "graph has no vertices")
	ErrNilGraph       = New(CodeNilInput, "graph is nil")
	ErrNegativeWeight = New(CodeNegativeWeight, "negative edge weight")
	ErrNegativeCycle  = New(CodeNegativeCycle, "graph contains negative cycle")
	ErrCanceled       = New(CodeCanceled, "operation canceled")
	ErrNotFound       = New(CodeNotFound, "not found")
)

// ValidationErrors collects errors and warnings from multi-step validation,
// such as loading a graph document line by line.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// NewValidationErrors creates and returns a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// Add appends an *Error to Errors or Warnings based on its Severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// AddError creates and adds a new application error with SeverityError.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// HasErrors returns true if the collection contains any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings returns true if the collection contains any warnings.
func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// Err folds the collection into a single error, or nil when there are no errors.
// The first collected error becomes the cause so Code(err) stays meaningful.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	if len(v.Errors) == 1 {
		return v.Errors[0]
	}
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return Wrap(v.Errors[0], v.Errors[0].Code,
		fmt.Sprintf("%d validation errors: %s", len(v.Errors), strings.Join(messages, "; "))).
		WithDetails("errors", v.ErrorMessages())
}

// ErrorMessages returns a slice of string messages for all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}
