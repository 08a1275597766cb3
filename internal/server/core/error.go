package core

// Error codes
const (
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrNotFound          = "NOT_FOUND"
	ErrStoreUnavailable  = "STORE_UNAVAILABLE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrResourceLimit     = "RESOURCE_LIMIT"
	ErrInternalError     = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
