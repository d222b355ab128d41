package dto

import (
	"net/http"

	"github.com/pension/backend/internal/domain/shared"
)

// Error code constants organized by category.
// Domain codes come from shared; transport codes use the ERR_ prefix.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used for unknown routes
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Import error codes
const (
	// ErrCodeImportInvalidFile is used when an upload cannot be parsed as a product table
	ErrCodeImportInvalidFile = "ERR_IMPORT_INVALID_FILE"
	// ErrCodeImportFileTooLarge is used when an upload exceeds the loader limits
	ErrCodeImportFileTooLarge = "ERR_IMPORT_FILE_TOO_LARGE"
	// ErrCodeImportNoRows is used when an upload holds no usable product rows
	ErrCodeImportNoRows = "ERR_IMPORT_NO_ROWS"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Domain validation -> 400 Bad Request
	shared.CodeValidation:     http.StatusBadRequest,
	shared.CodeInvalidWeights: http.StatusBadRequest,

	// Domain lookups -> 404 Not Found
	shared.CodeNotFound:           http.StatusNotFound,
	shared.CodeUserNotFound:       http.StatusNotFound,
	shared.CodeProductNotFound:    http.StatusNotFound,
	shared.CodeNoMatchingProducts: http.StatusNotFound,
	shared.CodeSnapshotNotFound:   http.StatusNotFound,

	// Catalog not loaded yet -> 503 Service Unavailable
	shared.CodeCatalogEmpty: http.StatusServiceUnavailable,

	// Snapshot sinks -> 500
	shared.CodePersistence: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Import errors
	ErrCodeImportInvalidFile:  http.StatusBadRequest,
	ErrCodeImportFileTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeImportNoRows:       http.StatusUnprocessableEntity,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
