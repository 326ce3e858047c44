package webauth

import "errors"

// Code is a stable numeric error code for programmatic handling.
type Code uint32

const CodeMissingArgument Code = 1

// Error is the web-auth contract's typed error.
// Message is intended for humans; do not match on it.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func newError(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// IsCode reports whether err is (or wraps) an *Error with the given Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
