package shared

// DomainError represents a domain-level error. Messages are user-facing and
// therefore written in French, matching the locale of the application.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"` // offending field, when known (e.g. duplicate CIN)
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

// NewDomainFieldError creates a new domain error naming the offending field
func NewDomainFieldError(code, field, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Field:   field,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Ressource introuvable")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Cette ressource existe déjà")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Données saisies invalides")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Opération non autorisée dans l'état actuel")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "La ressource a été modifiée par un autre processus")
)
