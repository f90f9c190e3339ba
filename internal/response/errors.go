package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrRefreshInvalid     ErrCode = "REFRESH_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden    ErrCode = "FORBIDDEN"
	ErrNotEligible  ErrCode = "NOT_ELIGIBLE"
	ErrNotExamOwner ErrCode = "NOT_EXAM_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidSchedule ErrCode = "INVALID_SCHEDULE"
	ErrNoQuestions     ErrCode = "NO_QUESTIONS"
	ErrUnknownQuestion ErrCode = "UNKNOWN_QUESTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Attempt lifecycle ─────────────────────────────────────────────
	ErrExamNotActive       ErrCode = "EXAM_NOT_ACTIVE"
	ErrAttemptLimitReached ErrCode = "ATTEMPT_LIMIT_REACHED"
	ErrDeviceConflict      ErrCode = "DEVICE_CONFLICT"
	ErrAttemptFinalized    ErrCode = "ATTEMPT_ALREADY_FINALIZED"
	ErrInvalidSession      ErrCode = "INVALID_ATTEMPT_SESSION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrRefreshInvalid:
		return "The refresh token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrNotEligible:
		return "You are not assigned to this exam."
	case ErrNotExamOwner:
		return "You are not the author of this exam."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The identifier format is invalid."
	case ErrInvalidSchedule:
		return "The exam schedule is invalid."
	case ErrNoQuestions:
		return "An exam must include at least one question."
	case ErrUnknownQuestion:
		return "One or more questions were not found."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrExamNotActive:
		return "The exam is not active right now."
	case ErrAttemptLimitReached:
		return "The attempt limit for this exam has been reached."
	case ErrDeviceConflict:
		return "Single device policy violated for this exam."
	case ErrAttemptFinalized:
		return "The attempt has already been finalized."
	case ErrInvalidSession:
		return "The exam session token is invalid."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
