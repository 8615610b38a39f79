package models

import (
	"errors"
	"fmt"
)

// Error codes. They map onto HTTP statuses in the server and onto user
// alerts in the client.
const (
	ErrValidation = "validation"
	ErrNotFound   = "not_found"
	ErrUpstream   = "upstream"
	ErrInternal   = "internal"
)

// Error is an application error with a machine-readable code and a message
// safe to show to the user.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf returns an *Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the code of the first *Error in err's chain, ErrInternal
// for any other error, and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal
}

// ErrorMessage returns the user-facing message of err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
