package httputil

// Machine-readable error codes returned alongside error messages so API
// clients can branch without parsing human-readable text.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	CodeInternalError      = "INTERNAL_ERROR"
)
