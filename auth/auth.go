// Package auth defines the principal, context, and capability types shared by
// the contract packages and the host environment.
package auth

import (
	"errors"
	"fmt"
)

// Address is an opaque principal identifier.
//
// A principal may be a native signer (its address carries an Ed25519 public
// key, e.g. "ed25519:BASE64") or a contract account whose authorization
// policy is evaluated by its own code. The core never inspects the address
// beyond exact comparison; interpretation belongs to the host.
type Address string

func (a Address) String() string { return string(a) }

// ParseAddress validates a principal identifier received from untrusted input.
//
// Addresses are non-empty and restricted to a conservative charset so they
// can double as storage-key components.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return "", errors.New("address cannot be empty")
	}
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') {
			continue
		}
		switch char {
		case '-', '_', ':', '.', '+', '/', '=':
			continue
		}
		return "", fmt.Errorf("invalid character %q in address", char)
	}
	return Address(s), nil
}

// Context describes one operation covered by an authorization attempt.
//
// The account policy in this version is action-agnostic: contexts are carried
// through to the policy but not inspected by it.
type Context struct {
	Contract Address
	Function string
	Args     []string
}

// Env is the capability surface the host exposes to contract code for the
// duration of one invocation.
//
// RequireAuth aborts the invocation with a Fault unless addr has authorized
// the current invocation; it never returns a partial or ambiguous accept.
// UpdateCurrentCode replaces the executable artifact backing the invoked
// contract and faults if the artifact is unknown to the host.
type Env interface {
	RequireAuth(addr Address)
	UpdateCurrentCode(newCodeHash []byte)
}
