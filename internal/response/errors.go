package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session-specific ──────────────────────────────────────────────
	ErrSessionSubmitted ErrCode = "SESSION_SUBMITTED"
	ErrIndexOutOfRange  ErrCode = "INDEX_OUT_OF_RANGE"
	ErrQuestionUnknown  ErrCode = "QUESTION_UNKNOWN"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrSubmitFailed     ErrCode = "SUBMIT_FAILED"

	// ─── Import/Export ─────────────────────────────────────────────────
	ErrFileRequired ErrCode = "FILE_REQUIRED"
	ErrImportFailed ErrCode = "IMPORT_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "校验失败，请检查输入内容。"
	case ErrInvalidID:
		return "ID 格式不正确。"
	case ErrInvalidPayload:
		return "请求内容格式不正确。"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "资源不存在或已被删除。"

	// ─── Session-specific ──────────────────────────────────────────────
	case ErrSessionSubmitted:
		return "考试已提交，无法继续作答。"
	case ErrIndexOutOfRange:
		return "题目序号超出范围。"
	case ErrQuestionUnknown:
		return "题目不存在。"
	case ErrNoQuestions:
		return "题库没有题目，无法开始考试。"
	case ErrSubmitFailed:
		return "提交失败，请重试。"

	// ─── Import/Export ─────────────────────────────────────────────────
	case ErrFileRequired:
		return "请上传文件。"
	case ErrImportFailed:
		return "Excel文件解析失败，请检查格式是否正确。"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "请求过于频繁，请稍后再试。"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "服务器内部错误。"
	default:
		return "发生未知错误。"
	}
}
