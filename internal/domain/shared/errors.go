package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// kind is the broader category the error also belongs to
	kind *DomainError
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code,
// so a sentinel matches every error built from it.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// Unwrap exposes the broader category, if any
func (e *DomainError) Unwrap() error {
	if e.kind == nil {
		return nil
	}
	return e.kind
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeNoMatchingProducts = "NO_MATCHING_PRODUCTS"
	CodeCatalogEmpty       = "CATALOG_EMPTY"
	CodePersistence        = "PERSISTENCE_ERROR"
	CodeInvalidWeights     = "INVALID_WEIGHTS"
)

// Common domain errors
var (
	ErrValidation         = NewDomainError(CodeValidation, "Validation failed")
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrUserNotFound       = NewDomainError(CodeUserNotFound, "User profile not found")
	ErrProductNotFound    = NewDomainError(CodeProductNotFound, "Product not found")
	ErrNoMatchingProducts = NewDomainError(CodeNoMatchingProducts, "No products match the given criteria")
	ErrCatalogEmpty       = NewDomainError(CodeCatalogEmpty, "Product catalog is empty")
	ErrPersistence        = NewDomainError(CodePersistence, "Snapshot persistence failed")
	ErrInvalidWeights     = &DomainError{Code: CodeInvalidWeights, Message: "Invalid scoring weights", kind: ErrValidation}
)

// NewValidationError creates a validation error with a specific message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewInvalidWeightsError creates a weights error that is also a validation error
func NewInvalidWeightsError(format string, args ...any) *DomainError {
	return &DomainError{Code: CodeInvalidWeights, Message: fmt.Sprintf(format, args...), kind: ErrValidation}
}

// NewNotFoundError creates a not-found error for the given code
func NewNotFoundError(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is any of the not-found errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrNoMatchingProducts)
}
