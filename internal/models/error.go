package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeSessionNotFound        = "SESSION_NOT_FOUND"
	ErrCodeNoClarificationPending = "NO_CLARIFICATION_PENDING"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeConfiguration          = "CONFIGURATION_ERROR"
	ErrCodeProviderCall           = "PROVIDER_CALL_FAILED"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)
