// Package account implements a programmable account whose right to authorize
// an action is decided by a signature policy over a registry of trusted
// Ed25519 keys.
//
// State is write-once at construction: Initialize stores the admin principal
// and seeds exactly one signer entry. CheckAuth consults the registry and the
// Ed25519 primitive and never mutates it. The only privileged operation is
// Upgrade, gated on the admin principal's own authorization.
package account

import (
	"encoding/hex"

	"signet.sh/signet/auth"
	"signet.sh/signet/state"
)

// Storage layout. Signer entries are membership markers keyed by the
// hex-encoded 32-byte public key; lookup is exact-match only.
const (
	adminKey        = "admin"
	signerKeyPrefix = "signer/"
)

func signerKey(publicKey []byte) string {
	return signerKeyPrefix + hex.EncodeToString(publicKey)
}

// Signature is one (public key, signature) element of a bundle.
type Signature struct {
	PublicKey []byte // 32 bytes
	Signature []byte // 64 bytes
}

// Account binds the contract logic to one instance's storage.
type Account struct {
	store state.Store
}

func New(store state.Store) *Account {
	return &Account{store: store}
}

// Initialize stores the admin principal and seeds the single trusted signer.
//
// There is no duplicate check: re-initialization overwrites. Registry
// mutation after construction is not part of this contract's surface.
func (a *Account) Initialize(admin auth.Address, signerPublicKey []byte) error {
	if len(signerPublicKey) != auth.PublicKeySize {
		auth.Faultf("account: signer key must be %d bytes, got %d", auth.PublicKeySize, len(signerPublicKey))
	}
	if err := a.store.Set(adminKey, []byte(admin)); err != nil {
		return err
	}
	return a.store.Set(signerKey(signerPublicKey), nil)
}

// IsTrusted reports registry membership for a public key.
// Absent keys simply report false; lookup never errors.
func (a *Account) IsTrusted(publicKey []byte) bool {
	return a.store.Has(signerKey(publicKey))
}

// CheckAuth decides whether the supplied signature bundle authorizes the
// payload digest.
//
// Rejection reasons are checked in a fixed order, each one distinct:
//
//  1. more than one signature: CodeTooManySignatures, before any registry or
//     cryptographic work;
//  2. sole signer not in the registry: CodeUnknownSigner;
//  3. Ed25519 mismatch: fatal fault, never a typed error.
//
// An empty bundle faults: the policy requires exactly one signature, and a
// request with none is treated as a broken caller, not a recoverable error.
// The contexts argument is accepted but not inspected; the policy is
// action-agnostic in this version.
func (a *Account) CheckAuth(digest []byte, signatures []Signature, contexts []auth.Context) error {
	_ = contexts

	if len(signatures) > 1 {
		return newError(CodeTooManySignatures, "signature bundle must contain exactly one signature")
	}
	if len(signatures) == 0 {
		auth.Faultf("account: empty signature bundle")
	}
	sig := signatures[0]

	if !a.IsTrusted(sig.PublicKey) {
		return newError(CodeUnknownSigner, "public key is not a registered signer")
	}

	auth.VerifyEd25519(sig.PublicKey, digest, sig.Signature)
	return nil
}

// Upgrade replaces the executable code backing this account.
//
// The admin principal must have authorized the current invocation; a missing
// admin entry means construction never completed and is a fatal fault.
func (a *Account) Upgrade(env auth.Env, newCodeHash []byte) {
	admin, err := a.store.Get(adminKey)
	if err != nil {
		auth.FaultWrap(err, "account: admin principal not set")
	}
	env.RequireAuth(auth.Address(admin))

	env.UpdateCurrentCode(newCodeHash)
}

// Admin returns the configured admin principal.
func (a *Account) Admin() (auth.Address, error) {
	admin, err := a.store.Get(adminKey)
	if err != nil {
		return "", err
	}
	return auth.Address(admin), nil
}
