package application

import (
	"errors"
	"fmt"
)

// Error is a typed service failure carrying a stable machine-readable code
// and a human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func NewError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Stable error codes surfaced to callers.
const (
	CodeUserNotFound           = "user_not_found"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeInvalidCurrentPassword = "invalid_current_password"
	CodeEmailInUse             = "email_in_use"
	CodeInvalidEmail           = "invalid_email"
	CodeInvalidRole            = "invalid_role"
	CodeInvalidAmount          = "invalid_amount"
	CodeInsufficientFunds      = "insufficient_funds"
	CodeNgoNotFound            = "ngo_not_found"
)

func errUserNotFound(id string) *Error {
	return NewError(CodeUserNotFound, "User: '%s' was not found.", id)
}

func errInvalidCredentials() *Error {
	return NewError(CodeInvalidCredentials, "Invalid credentials.")
}

func errInvalidCurrentPassword() *Error {
	return NewError(CodeInvalidCurrentPassword, "Invalid current password.")
}

func errEmailInUse(email string) *Error {
	return NewError(CodeEmailInUse, "Email: '%s' is already in use.", email)
}

func errNgoNotFound(id string) *Error {
	return NewError(CodeNgoNotFound, "NGO: '%s' was not found.", id)
}

func errInvalidAmount() *Error {
	return NewError(CodeInvalidAmount, "Amount must be greater than zero.")
}

// CodeOf extracts the stable code from a service error, or "" for other
// error values.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
