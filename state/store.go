// Package state defines the instance-storage abstraction contracts persist
// through, plus in-process implementations and combinators.
package state

// Store is a minimal durable key-value interface.
//
// Contract:
// - Get MUST return ErrNotFound when the key is absent.
// - Set overwrites; there is no delete operation.
// - Has MUST NOT error; an absent key simply reports false.
// - Keys are non-empty strings (ErrInvalidKey otherwise).
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Has(key string) bool
}
