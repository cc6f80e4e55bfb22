package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Quiz session ──────────────────────────────────────────────────
	ErrInvalidExam       ErrCode = "INVALID_EXAM"
	ErrEmptyTopic        ErrCode = "EMPTY_TOPIC"
	ErrNoActiveQuestion  ErrCode = "NO_ACTIVE_QUESTION"
	ErrNothingToReview   ErrCode = "NOTHING_TO_REVIEW"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrInvalidOption     ErrCode = "INVALID_OPTION"
	ErrNotReviewing      ErrCode = "NOT_REVIEWING"
	ErrNotCompleted      ErrCode = "NOT_COMPLETED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrStorageUnavailable ErrCode = "STORAGE_UNAVAILABLE"
	ErrInternal           ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Quiz session ──────────────────────────────────────────────────
	case ErrInvalidExam:
		return "This exam has no questions. Please pick another exam."
	case ErrEmptyTopic:
		return "This topic has no questions. Please pick another topic."
	case ErrNoActiveQuestion:
		return "There is no question waiting for an answer."
	case ErrNothingToReview:
		return "No wrong questions. Well done!"
	case ErrInvalidTransition:
		return "That action is not available right now."
	case ErrInvalidOption:
		return "Please answer with A, B, C or D."
	case ErrNotReviewing:
		return "You are not reviewing a test."
	case ErrNotCompleted:
		return "The test is not completed yet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrStorageUnavailable:
		return "Storage is temporarily unavailable. Please try again."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
