package errors

import (
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Violation is a single field+message pair describing one failed constraint.
type Violation struct {
	Field   string
	Message string
}

// ValidationError represents a validation failure with field-level details.
// Violations keep the order in which the rules were evaluated.
type ValidationError struct {
	Violations []Violation
}

// NewValidationError creates a new validation error
func NewValidationError(violations []Violation) *ValidationError {
	return &ValidationError{
		Violations: violations,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s - %s", v.Field, v.Message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// GRPCStatus returns the gRPC status for this error
func (e *ValidationError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// NewObjectNotFoundError creates the not found error reported for a missing id.
func NewObjectNotFoundError(resource, id string) *NotFoundError {
	return NewNotFoundError(resource, fmt.Sprintf("Object not found. Id: %s, Type: %s", id, resource))
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// GRPCStatus returns the gRPC status for this error
func (e *NotFoundError) GRPCStatus() *status.Status {
	return status.New(codes.NotFound, e.Error())
}

// DuplicateKeyError represents a unique constraint violation reported by the store.
// Field names the conflicting column when the store identifies it.
type DuplicateKeyError struct {
	Resource string
	Field    string
	Err      error
}

// NewDuplicateKeyError creates a new duplicate key error
func NewDuplicateKeyError(resource, field string, err error) *DuplicateKeyError {
	return &DuplicateKeyError{
		Resource: resource,
		Field:    field,
		Err:      err,
	}
}

// Error implements the error interface
func (e *DuplicateKeyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s dup key: %s", e.Field, e.Resource)
	}
	return fmt.Sprintf("dup key: %s", e.Resource)
}

// Unwrap returns the wrapped error
func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *DuplicateKeyError) GRPCStatus() *status.Status {
	return status.New(codes.AlreadyExists, e.Error())
}

// MalformedRequestError represents a request body that could not be decoded
type MalformedRequestError struct {
	Err error
}

// NewMalformedRequestError creates a new malformed request error
func NewMalformedRequestError(err error) *MalformedRequestError {
	return &MalformedRequestError{Err: err}
}

// Error implements the error interface
func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed request body: %v", e.Err)
	}
	return "malformed request body"
}

// Unwrap returns the wrapped error
func (e *MalformedRequestError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *MalformedRequestError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}

// RateLimitError reports a request rejected by the token bucket limiter
type RateLimitError struct {
	RequestsPerSecond float64
	BurstCapacity     int
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(requestsPerSecond float64, burstCapacity int) *RateLimitError {
	return &RateLimitError{
		RequestsPerSecond: requestsPerSecond,
		BurstCapacity:     burstCapacity,
	}
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", e.RequestsPerSecond, e.BurstCapacity)
}

// GRPCStatus returns the gRPC status for this error
func (e *RateLimitError) GRPCStatus() *status.Status {
	return status.New(codes.ResourceExhausted, e.Error())
}

// MethodNotAllowedError reports a known path requested with an unsupported method
type MethodNotAllowedError struct {
	Method string
	Path   string
}

// NewMethodNotAllowedError creates a new method not allowed error
func NewMethodNotAllowedError(method, path string) *MethodNotAllowedError {
	return &MethodNotAllowedError{Method: method, Path: path}
}

// Error implements the error interface
func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("Request method '%s' is not supported", e.Method)
}

// GRPCStatus returns the gRPC status for this error
func (e *MethodNotAllowedError) GRPCStatus() *status.Status {
	return status.New(codes.Unimplemented, e.Error())
}

// InternalError represents an unclassified failure with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// GRPCStatus returns the gRPC status for this error
func (e *InternalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, e.Message)
}

// GRPCStatuser interface for errors that can provide gRPC status
type GRPCStatuser interface {
	GRPCStatus() *status.Status
}
