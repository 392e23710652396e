package dto

import "net/http"

// Transport-level error codes
const (
	ErrCodeInternal    = "INTERNAL"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeValidation  = "VALIDATION"
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes. Codes not
// listed here fall back to 422: an unknown domain code still describes a
// business rule rejection, not a server failure.
var errorCodeHTTPStatus = map[string]int{
	// Transport errors
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	// Missing resources
	"NOT_FOUND":         http.StatusNotFound,
	"BATCH_NOT_FOUND":   http.StatusNotFound,
	"SESSION_NOT_FOUND": http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"DUPLICATE":            http.StatusConflict,
	"DUPLICATE_SUBMISSION": http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Malformed input -> 400
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_TARGET":      http.StatusBadRequest,
	"INVALID_PAYER":       http.StatusBadRequest,
	"INVALID_AMOUNT":      http.StatusBadRequest,
	"INVALID_DATES":       http.StatusBadRequest,
	"INVALID_STATUS":      http.StatusBadRequest,
	"INVALID_CATEGORY":    http.StatusBadRequest,
	"INVALID_SOURCE_TYPE": http.StatusBadRequest,
	"EMPTY_PAYMENT":       http.StatusBadRequest,

	// Business rule rejections -> 422
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"INCOMPLETE_PAYMENT": http.StatusUnprocessableEntity,
	"BATCH_FINALIZED":    http.StatusUnprocessableEntity,
	"ALREADY_PAID":       http.StatusUnprocessableEntity,
	"ALREADY_COMPLETED":  http.StatusUnprocessableEntity,
	"NOT_COMPLETED":      http.StatusUnprocessableEntity,
	"NOT_COMPLETABLE":    http.StatusUnprocessableEntity,
	"DEVICE_UNAVAILABLE": http.StatusUnprocessableEntity,
	"SESSION_CLOSED":     http.StatusUnprocessableEntity,
	"STEP_ORDER":         http.StatusUnprocessableEntity,
	"ALREADY_ARCHIVED":   http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
