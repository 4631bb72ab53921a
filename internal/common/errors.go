package common

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
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

// GRPCStatus maps the wrapped sentinel onto a gRPC status.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(CodeOf(e.Cause), e.Error())
}

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrValidation         = errors.New("validation failed")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrAlreadyExists      = errors.New("already exists")
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

// DecodeError reports a corrupt or unreadable source file. Fatal for the file.
type DecodeError struct {
	Format string // "xlsx" | "csv" | "pdf"
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// HeaderNotFoundError is returned when no spreadsheet row carries every expected column.
type HeaderNotFoundError struct {
	Expected []string
	Scanned  int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row not found in %d rows; expected columns: %s", e.Scanned, strings.Join(e.Expected, ", "))
}

func (e *HeaderNotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// MissingDependencyError reports subject or file metadata referenced by id that does not exist.
type MissingDependencyError struct {
	Kind string // "subject" | "source_file" | "blob"
	ID   string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *MissingDependencyError) Unwrap() error { return ErrNotFound }

func (e *MissingDependencyError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// RowIssue records a row that was skipped without failing the batch.
type RowIssue struct {
	Index  int    // 1-based position within the extracted rows
	Key    string // record key when one could be derived
	Reason string
}

func (r RowIssue) String() string {
	if r.Key != "" {
		return fmt.Sprintf("row %d (%s): %s", r.Index, r.Key, r.Reason)
	}
	return fmt.Sprintf("row %d: %s", r.Index, r.Reason)
}

// CodeOf returns the gRPC code that best describes err.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return s.Code()
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, ErrFailedPrecondition):
		return codes.FailedPrecondition
	case errors.Is(err, ErrAlreadyExists):
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}
