package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Execution ─────────────────────────────────────────────────────
	ErrUnsupportedLanguage ErrCode = "UNSUPPORTED_LANGUAGE"
	ErrSourceRequired      ErrCode = "SOURCE_CODE_REQUIRED"
	ErrUpstream            ErrCode = "UPSTREAM_ERROR"
	ErrExecutionTimeout    ErrCode = "EXECUTION_TIMEOUT"

	// ─── Generation ────────────────────────────────────────────────────
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrUnsupportedLanguage:
		return "The requested language is not supported."
	case ErrSourceRequired:
		return "source_code must be provided."
	case ErrUpstream:
		return "The execution backend reported an error."
	case ErrExecutionTimeout:
		return "Timed out while waiting for the execution backend."
	case ErrGenerationFailed:
		return "Content generation failed. Please try again."
	case ErrNotFound:
		return "Resource not found."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
