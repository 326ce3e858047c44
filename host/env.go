// Package host provides the execution environment that invokes contract
// code: it collects credentials, runs each invocation to completion, recovers
// fatal faults at the boundary, and applies state writes only on the
// non-faulting success path.
package host

import (
	"signet.sh/signet/account"
	"signet.sh/signet/auth"
	"signet.sh/signet/state"
)

// Credential is the caller-supplied proof that a principal approved an
// invocation. Each Authorizer interprets its own credential shape.
type Credential any

// Ed25519Credential proves a native principal's approval: a signature by the
// principal's key over the invocation digest.
type Ed25519Credential struct {
	Signature []byte
}

// BundleCredential proves a contract account's approval: a signature bundle
// for the account's CheckAuth policy.
type BundleCredential struct {
	Signatures []account.Signature
}

// Authorizer evaluates one principal's approval of an invocation.
//
// Implementations return typed errors for structural and trust failures and
// fault on cryptographic mismatch, mirroring the account contract's error
// taxonomy.
type Authorizer interface {
	Authorize(inv *Invocation, cred Credential) error
}

// NativeAuthorizer authenticates a principal that is a bare Ed25519 key.
type NativeAuthorizer struct {
	PublicKey []byte
}

func (n NativeAuthorizer) Authorize(inv *Invocation, cred Credential) error {
	c, ok := cred.(Ed25519Credential)
	if !ok {
		auth.Faultf("host: native principal requires an Ed25519 credential, got %T", cred)
	}
	auth.VerifyEd25519(n.PublicKey, inv.Digest, c.Signature)
	return nil
}

// ContractAuthorizer routes authorization to a contract account's own
// CheckAuth policy, evaluated against that account's instance storage.
type ContractAuthorizer struct {
	Address auth.Address
}

func (c ContractAuthorizer) Authorize(inv *Invocation, cred Credential) error {
	b, ok := cred.(BundleCredential)
	if !ok {
		auth.Faultf("host: contract account requires a signature bundle, got %T", cred)
	}
	acct := account.New(inv.InstanceStore(c.Address))
	return acct.CheckAuth(inv.Digest, b.Signatures, inv.Contexts)
}

// Env is a host environment: a principal registry plus the backing store.
//
// Invocations are serialized at the environment level by construction: each
// Invoke runs to completion before its effects become observable.
type Env struct {
	principals map[auth.Address]Authorizer
	store      state.Store

	// Deployer gates code replacement. Environments that never upgrade
	// may leave it nil; UpdateCurrentCode then faults.
	Deployer *Deployer
}

func NewEnv(store state.Store) *Env {
	return &Env{
		principals: map[auth.Address]Authorizer{},
		store:      store,
	}
}

// RegisterPrincipal binds an address to its authorizer. Later registrations
// overwrite earlier ones.
func (e *Env) RegisterPrincipal(addr auth.Address, az Authorizer) {
	e.principals[addr] = az
}

// RegisterNative binds an address to a bare Ed25519 public key.
func (e *Env) RegisterNative(addr auth.Address, publicKey []byte) {
	e.RegisterPrincipal(addr, NativeAuthorizer{PublicKey: publicKey})
}

// RegisterContractAccount binds an address to the account contract stored at
// that address.
func (e *Env) RegisterContractAccount(addr auth.Address) {
	e.RegisterPrincipal(addr, ContractAuthorizer{Address: addr})
}

// Store exposes the base store for setup that happens outside an invocation
// (constructing contract instances, installing code artifacts).
func (e *Env) Store() state.Store { return e.store }

// InstanceStore namespaces a store for one contract instance.
func InstanceStore(base state.Store, contract auth.Address) state.Store {
	return state.NewPrefixed(base, "instance/"+string(contract)+"/")
}

// Call describes one invocation: the invoked contract, the digest of the
// intended action, the declared contexts, and per-principal credentials.
type Call struct {
	Contract    auth.Address
	Digest      []byte
	Contexts    []auth.Context
	Credentials map[auth.Address]Credential
}

// Invocation is the per-call view handed to contract code. It implements
// auth.Env.
type Invocation struct {
	env *Env

	Contract auth.Address
	Digest   []byte
	Contexts []auth.Context

	creds      map[auth.Address]Credential
	authorized map[auth.Address]bool
	store      *state.Buffered
}

var _ auth.Env = (*Invocation)(nil)

// Invoke runs fn to completion against a buffered view of the store.
//
// A fault recovered at this boundary, or a typed error returned by fn,
// discards every staged write; only a clean return commits. Faults surface to
// the caller as the *auth.Fault error value.
func (e *Env) Invoke(call Call, fn func(inv *Invocation) error) (err error) {
	inv := &Invocation{
		env:        e,
		Contract:   call.Contract,
		Digest:     call.Digest,
		Contexts:   call.Contexts,
		creds:      call.Credentials,
		authorized: map[auth.Address]bool{},
		store:      state.NewBuffered(e.store),
	}
	defer func() {
		if f := auth.RecoverFault(recover()); f != nil {
			err = f
		}
	}()
	if ferr := fn(inv); ferr != nil {
		return ferr
	}
	return inv.store.Commit()
}

// Store is the invocation's buffered view of the environment store.
func (inv *Invocation) Store() state.Store { return inv.store }

// InstanceStore is the invocation-scoped instance storage for a contract.
func (inv *Invocation) InstanceStore(contract auth.Address) state.Store {
	return InstanceStore(inv.store, contract)
}

// RequireAuth demands that addr has authorized this invocation.
//
// The check is all-or-nothing: any failure (unknown principal, missing
// credential, denied authorization) aborts the invocation. A successful check
// is cached so a principal is asked at most once per invocation.
func (inv *Invocation) RequireAuth(addr auth.Address) {
	if inv.authorized[addr] {
		return
	}
	az, ok := inv.env.principals[addr]
	if !ok {
		auth.Faultf("host: unknown principal %s", addr)
	}
	cred, ok := inv.creds[addr]
	if !ok {
		auth.Faultf("host: no credential presented for %s", addr)
	}
	if err := az.Authorize(inv, cred); err != nil {
		auth.FaultWrap(err, "host: authorization denied for %s", addr)
	}
	inv.authorized[addr] = true
}

// UpdateCurrentCode replaces the invoked contract's executable artifact.
func (inv *Invocation) UpdateCurrentCode(newCodeHash []byte) {
	if inv.env.Deployer == nil {
		auth.Faultf("host: no deployer configured")
	}
	inv.env.Deployer.UpdateCurrentCode(inv, newCodeHash)
}
