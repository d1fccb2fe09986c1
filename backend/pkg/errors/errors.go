package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents requests that violate an entity invariant
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents lookups by id that matched no node
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents uniqueness constraint violations on write
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeStoreUnavailable represents sessions or transactions that could not be established or committed
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
	// ErrorTypeGraph represents graph query errors that are not infrastructural
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind returns the error category. Promoted through every typed error below.
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Access layer errors

// ErrValidation is returned when a create request violates an entity invariant
type ErrValidation struct {
	*BaseError
	Entity string
	Field  string
	Reason string
}

func NewValidation(entity, field, reason string) *ErrValidation {
	return &ErrValidation{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("invalid %s: %s %s", entity, field, reason), nil),
		Entity:    entity,
		Field:     field,
		Reason:    reason,
	}
}

// ErrNotFound is returned when no node with the requested id exists
type ErrNotFound struct {
	*BaseError
	Entity string
	ID     string
}

func NewNotFound(entity, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", entity, id), nil),
		Entity:    entity,
		ID:        id,
	}
}

// ErrConflict is returned when a uniqueness constraint rejects a write
type ErrConflict struct {
	*BaseError
	Entity string
}

func NewConflict(entity string, err error) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("%s violates a uniqueness constraint", entity), err),
		Entity:    entity,
	}
}

// ErrStoreUnavailable is returned when the graph store could not serve the operation
type ErrStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewStoreUnavailable(operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeStoreUnavailable, fmt.Sprintf("graph store unavailable: %s", operation), err),
		Operation: operation,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeStoreUnavailable, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type kinded interface {
	Kind() ErrorType
}

// TypeOf returns the category of the first typed error in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var k kinded
	if stderrors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Only infrastructural failures are worth retrying; the access layer never retries itself
	return IsErrorType(err, ErrorTypeStoreUnavailable)
}
