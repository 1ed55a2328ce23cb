package authflow

import "github.com/carebright/carelog/internal/backend"

// User-facing auth messages. Wrong password and unknown email are
// indistinguishable on purpose.
const (
	MessageInvalidLogin       = "Invalid username or password."
	MessageTooManyAttempts    = "Too many failed attempts. Please try again later."
	MessageMissingCredentials = "Please enter both email and password."
	MessageMissingFields      = "Please fill in all required fields."
	MessagePasswordMismatch   = "Passwords do not match."
)

// LoginMessage translates a sign-in error into the text shown to the user.
// A small allow-list of codes gets friendly wording; every other error
// surfaces its own message verbatim.
func LoginMessage(err error) string {
	switch backend.CodeOf(err) {
	case backend.CodeInvalidCredential, backend.CodeWrongPassword, backend.CodeUserNotFound:
		return MessageInvalidLogin
	case backend.CodeTooManyRequests:
		return MessageTooManyAttempts
	default:
		return err.Error()
	}
}
