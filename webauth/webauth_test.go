package webauth

import (
	"testing"

	"signet.sh/signet/auth"
	"signet.sh/signet/state"
)

// grantEnv satisfies auth.Env with a fixed set of granting principals.
type grantEnv struct {
	granted   map[auth.Address]bool
	required  []auth.Address
	installed [][]byte
}

func (e *grantEnv) RequireAuth(addr auth.Address) {
	e.required = append(e.required, addr)
	if !e.granted[addr] {
		auth.Faultf("grantEnv: %s did not authorize", addr)
	}
}

func (e *grantEnv) UpdateCurrentCode(newCodeHash []byte) {
	e.installed = append(e.installed, newCodeHash)
}

func catchFault(t *testing.T, fn func()) (f *auth.Fault) {
	t.Helper()
	defer func() {
		f = auth.RecoverFault(recover())
	}()
	fn()
	return nil
}

func TestWebAuthVerify_EmptyArgs(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{}}

	err := c.WebAuthVerify(env, map[string]string{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsCode(err, CodeMissingArgument) {
		t.Fatalf("expected CodeMissingArgument, got %v", err)
	}
	if len(env.required) != 0 {
		t.Fatalf("no authorization should be demanded for empty args")
	}
}

func TestWebAuthVerify_BothRequiredGranting(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{"acct-A": true, "domain-B": true}}

	err := c.WebAuthVerify(env, map[string]string{
		ArgAccount:              "acct-A",
		ArgWebAuthDomainAccount: "domain-B",
	})
	if err != nil {
		t.Fatalf("WebAuthVerify: %v", err)
	}
	// Strict ordering: account first, then the web-auth domain; the
	// optional client domain was absent and must not be demanded.
	if len(env.required) != 2 || env.required[0] != "acct-A" || env.required[1] != "domain-B" {
		t.Fatalf("unexpected authorization order: %v", env.required)
	}
}

func TestWebAuthVerify_MissingAccountFailsFirst(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{"domain-B": true}}

	// The web-auth domain would grant, but the missing required `account`
	// argument must stop evaluation before anyone is asked.
	err := c.WebAuthVerify(env, map[string]string{
		ArgWebAuthDomainAccount: "domain-B",
	})
	if !IsCode(err, CodeMissingArgument) {
		t.Fatalf("expected CodeMissingArgument, got %v", err)
	}
	if len(env.required) != 0 {
		t.Fatalf("no authorization should be demanded, got %v", env.required)
	}
}

func TestWebAuthVerify_MissingWebAuthDomain(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{"acct-A": true}}

	err := c.WebAuthVerify(env, map[string]string{ArgAccount: "acct-A"})
	if !IsCode(err, CodeMissingArgument) {
		t.Fatalf("expected CodeMissingArgument, got %v", err)
	}
	// Fail-fast after the first check: account was demanded, nothing else.
	if len(env.required) != 1 || env.required[0] != "acct-A" {
		t.Fatalf("unexpected authorization order: %v", env.required)
	}
}

func TestWebAuthVerify_OptionalClientDomain(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{
		"acct-A":   true,
		"domain-B": true,
		"client-C": true,
	}}

	err := c.WebAuthVerify(env, map[string]string{
		ArgAccount:              "acct-A",
		ArgWebAuthDomainAccount: "domain-B",
		ArgClientDomainAccount:  "client-C",
	})
	if err != nil {
		t.Fatalf("WebAuthVerify: %v", err)
	}
	if len(env.required) != 3 || env.required[2] != "client-C" {
		t.Fatalf("client domain should be demanded last: %v", env.required)
	}
}

func TestWebAuthVerify_DenyingPrincipalFaults(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{"acct-A": true}}

	f := catchFault(t, func() {
		_ = c.WebAuthVerify(env, map[string]string{
			ArgAccount:              "acct-A",
			ArgWebAuthDomainAccount: "domain-B",
		})
	})
	if f == nil {
		t.Fatalf("expected fault when a named principal denies")
	}
}

func TestWebAuthVerify_MalformedPrincipalFaults(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{}}

	f := catchFault(t, func() {
		_ = c.WebAuthVerify(env, map[string]string{
			ArgAccount:              "not a valid address",
			ArgWebAuthDomainAccount: "domain-B",
		})
	})
	if f == nil {
		t.Fatalf("expected fault for malformed principal")
	}
}

func TestUpgrade_Gate(t *testing.T) {
	c := New(state.NewMemory())
	if err := c.Initialize(auth.Address("admin-1")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	env := &grantEnv{granted: map[auth.Address]bool{"admin-1": true}}
	hash := make([]byte, 32)
	c.Upgrade(env, hash)
	if len(env.installed) != 1 {
		t.Fatalf("expected code replacement")
	}

	denied := &grantEnv{granted: map[auth.Address]bool{}}
	f := catchFault(t, func() {
		c.Upgrade(denied, hash)
	})
	if f == nil {
		t.Fatalf("expected fault when admin denies")
	}
}

func TestUpgrade_BeforeInitializeFaults(t *testing.T) {
	c := New(state.NewMemory())
	env := &grantEnv{granted: map[auth.Address]bool{"admin-1": true}}
	f := catchFault(t, func() {
		c.Upgrade(env, make([]byte, 32))
	})
	if f == nil {
		t.Fatalf("expected fault when admin was never set")
	}
}
