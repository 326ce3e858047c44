package auth

import (
	"errors"
	"fmt"
)

// Fault is an unrecoverable abort of the current invocation.
//
// Faults model the trust-boundary failures that must never be conflated with
// typed error values: a cryptographic mismatch, a missing configuration
// entry, a malformed principal at a point where only valid input can arrive.
// They propagate by panic and are recovered exactly once, at the host
// invocation boundary, leaving persisted state untouched.
type Fault struct {
	Msg   string
	Cause error
}

func (f *Fault) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Cause != nil {
		return f.Msg + ": " + f.Cause.Error()
	}
	return f.Msg
}

func (f *Fault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Cause
}

// Faultf aborts the current invocation.
func Faultf(format string, args ...any) {
	panic(&Fault{Msg: fmt.Sprintf(format, args...)})
}

// FaultWrap aborts the current invocation, preserving cause for inspection
// after recovery.
func FaultWrap(cause error, format string, args ...any) {
	panic(&Fault{Msg: fmt.Sprintf(format, args...), Cause: cause})
}

// RecoverFault converts a recovered panic value back into a *Fault.
//
// Non-fault panics are re-raised: only deliberate aborts cross the invocation
// boundary as values.
func RecoverFault(r any) *Fault {
	if r == nil {
		return nil
	}
	if f, ok := r.(*Fault); ok {
		return f
	}
	panic(r)
}

// AsFault reports whether err is (or wraps) a *Fault.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
