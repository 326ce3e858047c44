package host

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudflare/circl/sign/ed25519"

	"signet.sh/signet/account"
	"signet.sh/signet/auth"
	"signet.sh/signet/state"
)

// wasmEmptyModule is the smallest valid WebAssembly binary: magic + version.
var wasmEmptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func testKeypair(fill byte) (ed25519.PrivateKey, []byte) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = fill
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv, []byte(priv.Public().(ed25519.PublicKey))
}

func testDigest(fill byte) []byte {
	d := make([]byte, auth.DigestSize)
	for i := range d {
		d[i] = fill
	}
	return d
}

func TestInvoke_CommitsOnSuccess(t *testing.T) {
	base := state.NewMemory()
	env := NewEnv(base)

	err := env.Invoke(Call{Contract: "c-1"}, func(inv *Invocation) error {
		return inv.Store().Set("k", []byte("v"))
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !base.Has("k") {
		t.Fatalf("successful invocation must commit")
	}
}

func TestInvoke_FaultDiscardsWrites(t *testing.T) {
	base := state.NewMemory()
	env := NewEnv(base)

	err := env.Invoke(Call{Contract: "c-1"}, func(inv *Invocation) error {
		if err := inv.Store().Set("k", []byte("v")); err != nil {
			return err
		}
		auth.Faultf("boom")
		return nil
	})
	if err == nil {
		t.Fatalf("expected fault")
	}
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected *auth.Fault, got %T", err)
	}
	if base.Has("k") {
		t.Fatalf("faulting invocation must not commit")
	}
}

func TestInvoke_TypedErrorDiscardsWrites(t *testing.T) {
	base := state.NewMemory()
	env := NewEnv(base)

	sentinel := errors.New("typed failure")
	err := env.Invoke(Call{Contract: "c-1"}, func(inv *Invocation) error {
		if serr := inv.Store().Set("k", []byte("v")); serr != nil {
			return serr
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if base.Has("k") {
		t.Fatalf("failed invocation must not commit")
	}
}

func TestRequireAuth_UnknownPrincipalFaults(t *testing.T) {
	env := NewEnv(state.NewMemory())

	err := env.Invoke(Call{Contract: "c-1"}, func(inv *Invocation) error {
		inv.RequireAuth("nobody")
		return nil
	})
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected fault for unknown principal, got %v", err)
	}
}

func TestRequireAuth_MissingCredentialFaults(t *testing.T) {
	_, pub := testKeypair(0x5A)
	env := NewEnv(state.NewMemory())
	env.RegisterNative("alice", pub)

	err := env.Invoke(Call{Contract: "c-1"}, func(inv *Invocation) error {
		inv.RequireAuth("alice")
		return nil
	})
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected fault for missing credential, got %v", err)
	}
}

func TestRequireAuth_NativePrincipal(t *testing.T) {
	priv, pub := testKeypair(0x5A)
	env := NewEnv(state.NewMemory())
	env.RegisterNative("alice", pub)

	digest := testDigest(0x01)
	good := Call{
		Contract:    "c-1",
		Digest:      digest,
		Credentials: map[auth.Address]Credential{"alice": Ed25519Credential{Signature: ed25519.Sign(priv, digest)}},
	}
	err := env.Invoke(good, func(inv *Invocation) error {
		inv.RequireAuth("alice")
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	// A signature over a different digest never authorizes this one.
	stale := Call{
		Contract:    "c-1",
		Digest:      testDigest(0x02),
		Credentials: map[auth.Address]Credential{"alice": Ed25519Credential{Signature: ed25519.Sign(priv, digest)}},
	}
	err = env.Invoke(stale, func(inv *Invocation) error {
		inv.RequireAuth("alice")
		return nil
	})
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected fault for stale credential, got %v", err)
	}
}

type countingAuthorizer struct {
	calls int
}

func (c *countingAuthorizer) Authorize(inv *Invocation, cred Credential) error {
	c.calls++
	return nil
}

func TestRequireAuth_CachedPerInvocation(t *testing.T) {
	az := &countingAuthorizer{}
	env := NewEnv(state.NewMemory())
	env.RegisterPrincipal("alice", az)

	call := Call{
		Contract:    "c-1",
		Credentials: map[auth.Address]Credential{"alice": struct{}{}},
	}
	err := env.Invoke(call, func(inv *Invocation) error {
		inv.RequireAuth("alice")
		inv.RequireAuth("alice")
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if az.calls != 1 {
		t.Fatalf("authorizer should be consulted once per invocation, got %d", az.calls)
	}

	// A fresh invocation asks again.
	err = env.Invoke(call, func(inv *Invocation) error {
		inv.RequireAuth("alice")
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if az.calls != 2 {
		t.Fatalf("cache must not span invocations, got %d", az.calls)
	}
}

func TestRequireAuth_ContractAccountRecursion(t *testing.T) {
	priv, pub := testKeypair(0x5A)
	base := state.NewMemory()

	acctAddr := auth.Address("acct-1")
	acct := account.New(InstanceStore(base, acctAddr))
	if err := acct.Initialize("admin-1", pub); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	env := NewEnv(base)
	env.RegisterContractAccount(acctAddr)

	digest := testDigest(0x01)
	sig := ed25519.Sign(priv, digest)
	call := Call{
		Contract: "c-1",
		Digest:   digest,
		Credentials: map[auth.Address]Credential{
			acctAddr: BundleCredential{Signatures: []account.Signature{{PublicKey: pub, Signature: sig}}},
		},
	}
	err := env.Invoke(call, func(inv *Invocation) error {
		inv.RequireAuth(acctAddr)
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}

func TestRequireAuth_ContractAccountTypedErrorSurfacesInFault(t *testing.T) {
	_, pub := testKeypair(0x5A)
	_, strangerPub := testKeypair(0x77)
	base := state.NewMemory()

	acctAddr := auth.Address("acct-1")
	if err := account.New(InstanceStore(base, acctAddr)).Initialize("admin-1", pub); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	env := NewEnv(base)
	env.RegisterContractAccount(acctAddr)

	call := Call{
		Contract: "c-1",
		Digest:   testDigest(0x01),
		Credentials: map[auth.Address]Credential{
			acctAddr: BundleCredential{Signatures: []account.Signature{
				{PublicKey: strangerPub, Signature: make([]byte, auth.SignatureSize)},
			}},
		},
	}
	err := env.Invoke(call, func(inv *Invocation) error {
		inv.RequireAuth(acctAddr)
		return nil
	})
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected fault, got %v", err)
	}
	// The policy's typed rejection stays inspectable through the fault.
	if !account.IsCode(err, account.CodeUnknownSigner) {
		t.Fatalf("expected wrapped CodeUnknownSigner, got %v", err)
	}
}

func TestUpgrade_EndToEnd(t *testing.T) {
	priv, pub := testKeypair(0x5A)
	base := state.NewMemory()

	acctAddr := auth.Address("acct-1")
	adminAddr := auth.Address("admin-1")
	if err := account.New(InstanceStore(base, acctAddr)).Initialize(adminAddr, pub); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ctx := context.Background()
	deployer := NewDeployer(ctx)
	defer deployer.Close(ctx)

	newHash, err := deployer.Install(ctx, base, wasmEmptyModule)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	env := NewEnv(base)
	env.Deployer = deployer
	env.RegisterNative(adminAddr, pub)

	digest := testDigest(0x01)
	call := Call{
		Contract:    acctAddr,
		Digest:      digest,
		Credentials: map[auth.Address]Credential{adminAddr: Ed25519Credential{Signature: ed25519.Sign(priv, digest)}},
	}
	err = env.Invoke(call, func(inv *Invocation) error {
		account.New(inv.InstanceStore(acctAddr)).Upgrade(inv, newHash)
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	got, err := CurrentCodeHash(base, acctAddr)
	if err != nil {
		t.Fatalf("CurrentCodeHash: %v", err)
	}
	if string(got) != string(newHash) {
		t.Fatalf("current code hash mismatch")
	}
}

func TestUpgrade_StaleAdminCredentialFails(t *testing.T) {
	priv, pub := testKeypair(0x5A)
	base := state.NewMemory()

	acctAddr := auth.Address("acct-1")
	adminAddr := auth.Address("admin-1")
	if err := account.New(InstanceStore(base, acctAddr)).Initialize(adminAddr, pub); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ctx := context.Background()
	deployer := NewDeployer(ctx)
	defer deployer.Close(ctx)

	newHash, err := deployer.Install(ctx, base, wasmEmptyModule)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	env := NewEnv(base)
	env.Deployer = deployer
	env.RegisterNative(adminAddr, pub)

	// The admin signed some other action's digest; the upgrade invocation
	// carries its own digest, so the credential must not satisfy it.
	call := Call{
		Contract:    acctAddr,
		Digest:      testDigest(0x0F),
		Credentials: map[auth.Address]Credential{adminAddr: Ed25519Credential{Signature: ed25519.Sign(priv, testDigest(0x01))}},
	}
	err = env.Invoke(call, func(inv *Invocation) error {
		account.New(inv.InstanceStore(acctAddr)).Upgrade(inv, newHash)
		return nil
	})
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected fault, got %v", err)
	}
	if _, err := CurrentCodeHash(base, acctAddr); !state.IsNotFound(err) {
		t.Fatalf("denied upgrade must leave no code pointer, got %v", err)
	}
}

func TestUpgrade_UnknownArtifactFaults(t *testing.T) {
	priv, pub := testKeypair(0x5A)
	base := state.NewMemory()

	acctAddr := auth.Address("acct-1")
	adminAddr := auth.Address("admin-1")
	if err := account.New(InstanceStore(base, acctAddr)).Initialize(adminAddr, pub); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ctx := context.Background()
	deployer := NewDeployer(ctx)
	defer deployer.Close(ctx)

	env := NewEnv(base)
	env.Deployer = deployer
	env.RegisterNative(adminAddr, pub)

	digest := testDigest(0x01)
	call := Call{
		Contract:    acctAddr,
		Digest:      digest,
		Credentials: map[auth.Address]Credential{adminAddr: Ed25519Credential{Signature: ed25519.Sign(priv, digest)}},
	}
	err := env.Invoke(call, func(inv *Invocation) error {
		account.New(inv.InstanceStore(acctAddr)).Upgrade(inv, testDigest(0xEE))
		return nil
	})
	if _, ok := auth.AsFault(err); !ok {
		t.Fatalf("expected fault for uninstalled artifact, got %v", err)
	}
}

func TestDeployer_InstallRejectsInvalidModule(t *testing.T) {
	ctx := context.Background()
	deployer := NewDeployer(ctx)
	defer deployer.Close(ctx)

	if _, err := deployer.Install(ctx, state.NewMemory(), []byte("not wasm")); err == nil {
		t.Fatalf("expected error for non-wasm artifact")
	}
}
