package account

import "errors"

// Code is a stable numeric error code for programmatic handling.
//
// Codes are part of the contract's external surface and never change
// meaning. Callers should branch on Code rather than matching error strings.
type Code uint32

const (
	CodeUnknownSigner     Code = 1
	CodeTooManySignatures Code = 2
)

// Error is the account contract's typed error.
//
// Typed errors cover structurally invalid requests (arity) and trust
// failures (unregistered key). Cryptographic mismatch is deliberately NOT
// representable here; it aborts the invocation as a fault.
//
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
