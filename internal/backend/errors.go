package backend

import "errors"

// Wire error codes surfaced by the auth provider and document store. The
// auth flow maps a small allow-list of these to friendly messages; anything
// else reaches the user verbatim.
const (
	CodeInvalidCredential = "invalid-credential"
	CodeWrongPassword     = "wrong-password"
	CodeUserNotFound      = "user-not-found"
	CodeTooManyRequests   = "too-many-requests"
	CodeEmailInUse        = "email-in-use"
	CodeWeakPassword      = "weak-password"
	CodeNotFound          = "not-found"
)

// Error is a backend-reported error carrying its wire code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidCredential = &Error{Code: CodeInvalidCredential, Message: "invalid credential"}
	ErrWrongPassword     = &Error{Code: CodeWrongPassword, Message: "wrong password"}
	ErrUserNotFound      = &Error{Code: CodeUserNotFound, Message: "user not found"}
	ErrTooManyRequests   = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
	ErrEmailInUse        = &Error{Code: CodeEmailInUse, Message: "email already in use"}
	ErrWeakPassword      = &Error{Code: CodeWeakPassword, Message: "password should be at least 6 characters"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "document not found"}
)

// CodeOf extracts the wire code from err, or "" when err is not a backend
// error.
func CodeOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
