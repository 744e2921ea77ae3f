package handler

const (
	errInternalServer = "Internal server error"
	errEmailRequired  = "Valid email is required"
	errSendFailed     = "Failed to send magic link"
	errUnauthorized   = "Unauthorized"
)

// Query values for /signup?error=. Invalid, used and expired tokens share
// one value so the redirect cannot be used to probe token state.
const (
	verifyErrMissing  = "invalid"
	verifyErrRejected = "expired"
	verifyErrInternal = "failed"
)
