package dto

import "net/http"

// Transport-level error codes. Domain codes pass through unchanged.
const (
	// ErrCodeBadRequest is used for malformed or unparseable requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used when no more specific code applies
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Financial
// integrity violations that reject the request body map to 422; conflicts
// with current resource state map to 409.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:  http.StatusBadRequest,
	"VALIDATION_ERROR": http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,

	"UNBALANCED_JOURNAL": http.StatusUnprocessableEntity,
	"CYCLE_DETECTED":     http.StatusUnprocessableEntity,
	"IMPORT_ROW_ERROR":   http.StatusUnprocessableEntity,

	"NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":           http.StatusConflict,
	"INVALID_STATE":            http.StatusConflict,
	"SESSION_ALREADY_OPEN":     http.StatusConflict,
	"ALREADY_RECONCILED":       http.StatusConflict,
	"SYSTEM_ACCOUNT_PROTECTED": http.StatusConflict,

	"POSTING_FAILED": http.StatusInternalServerError,
	ErrCodeInternal:  http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes default to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
