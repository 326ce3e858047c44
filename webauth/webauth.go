// Package webauth implements challenge verification for multi-party web
// authentication.
//
// Unlike the account contract's dynamic key registry, the principals here are
// a fixed small set of named roles carried in the request arguments. Each
// named principal must independently authorize the invocation; one role is
// optional.
package webauth

import (
	"signet.sh/signet/auth"
	"signet.sh/signet/state"
)

const adminKey = "admin"

// Argument keys recognized by WebAuthVerify. ArgAccount and
// ArgWebAuthDomainAccount are required, in that order; ArgClientDomainAccount
// is optional.
const (
	ArgAccount              = "account"
	ArgWebAuthDomainAccount = "web_auth_domain_account"
	ArgClientDomainAccount  = "client_domain_account"
)

// Contract binds the web-auth logic to one instance's storage.
type Contract struct {
	store state.Store
}

func New(store state.Store) *Contract {
	return &Contract{store: store}
}

// Initialize stores the admin principal. Re-initialization overwrites.
func (c *Contract) Initialize(admin auth.Address) error {
	return c.store.Set(adminKey, []byte(admin))
}

// WebAuthVerify authorizes every principal named in args.
//
// Evaluation is strictly sequential and fail-fast: a missing required
// argument stops the scan before any later principal is asked for
// authorization, so the first error under multiple violations is
// deterministic. The optional client-domain principal is skipped silently
// when absent. A present value that does not parse as an address is a fatal
// fault; past the presence check, only valid principals can arrive.
func (c *Contract) WebAuthVerify(env auth.Env, args map[string]string) error {
	for _, key := range []string{ArgAccount, ArgWebAuthDomainAccount} {
		value, ok := args[key]
		if !ok {
			return newError(CodeMissingArgument, "missing required argument "+key)
		}
		env.RequireAuth(mustParseAddress(value))
	}

	if value, ok := args[ArgClientDomainAccount]; ok {
		env.RequireAuth(mustParseAddress(value))
	}
	return nil
}

// Upgrade replaces the executable code backing this contract, gated on the
// admin principal's authorization.
func (c *Contract) Upgrade(env auth.Env, newCodeHash []byte) {
	admin, err := c.store.Get(adminKey)
	if err != nil {
		auth.FaultWrap(err, "webauth: admin principal not set")
	}
	env.RequireAuth(auth.Address(admin))

	env.UpdateCurrentCode(newCodeHash)
}

func mustParseAddress(s string) auth.Address {
	addr, err := auth.ParseAddress(s)
	if err != nil {
		auth.FaultWrap(err, "webauth: malformed principal")
	}
	return addr
}
