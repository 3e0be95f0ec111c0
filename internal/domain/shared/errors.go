package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrValidation           = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrNotAuthorized        = NewDomainError("NOT_AUTHORIZED", "Actor does not own this resource")
	ErrInvalidTransition    = NewDomainError("INVALID_TRANSITION", "Status transition not allowed")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrConfigurationMissing = NewDomainError("CONFIGURATION_MISSING", "No applicable SLA configuration found")
)
