package auth

import "errors"

// Sentinel errors for every way an authentication step can fail. Handlers
// collapse most of these into a generic rejection at the HTTP boundary; the
// distinction exists for logging and tests.
var (
	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password". Callers must never be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrOtpExpired  = errors.New("activation code expired")
	ErrOtpMismatch = errors.New("activation code mismatch")
	ErrOtpConsumed = errors.New("no active activation code")

	ErrDuplicateIdentifier = errors.New("email or phone already registered")
	ErrNotActivated        = errors.New("account not activated")
	ErrNotAuthorized       = errors.New("not authorized")
)
