package dto

import "net/http"

// Error codes raised by the HTTP layer itself
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to 500.
var ErrorCodeHTTPStatus = map[string]int{
	// Input and validation -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	"VALIDATION_ERROR":  http.StatusBadRequest,
	"NO_ITEMS_SELECTED": http.StatusBadRequest,

	// Ownership -> 403 Forbidden
	"NOT_AUTHORIZED": http.StatusForbidden,

	// Missing resources -> 404 Not Found
	ErrCodeNotFound: http.StatusNotFound,

	// Conflicting state -> 409 Conflict
	"ITEM_ALREADY_IN_OPEN_CASE": http.StatusConflict,
	"CONCURRENCY_CONFLICT":      http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_TRANSITION":     http.StatusUnprocessableEntity,
	"CASE_CLOSED":            http.StatusUnprocessableEntity,
	"CASE_NOT_ALLOWED":       http.StatusUnprocessableEntity,
	"DECOMPOSITION_MISMATCH": http.StatusUnprocessableEntity,
	"REFUND_EXCEEDS_ORDER":   http.StatusUnprocessableEntity,
	"CONFIGURATION_MISSING":  http.StatusUnprocessableEntity,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not mapped.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
