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
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes for financial-integrity violations. Operations that raise these
// must leave the store untouched; none of them are auto-corrected or retried.
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeUnbalancedJournal      = "UNBALANCED_JOURNAL"
	ErrCodeCycleDetected          = "CYCLE_DETECTED"
	ErrCodeSystemAccountProtected = "SYSTEM_ACCOUNT_PROTECTED"
	ErrCodeSessionAlreadyOpen     = "SESSION_ALREADY_OPEN"
	ErrCodeAlreadyReconciled      = "ALREADY_RECONCILED"
	ErrCodePostingFailed          = "POSTING_FAILED"
	ErrCodeImportRow              = "IMPORT_ROW_ERROR"

	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidState = "INVALID_STATE"
)

// IsDomainError reports whether err is a DomainError with the given code.
func IsDomainError(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
