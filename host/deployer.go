package host

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/tetratelabs/wazero"

	"signet.sh/signet/auth"
	"signet.sh/signet/codeaddr"
	"signet.sh/signet/state"
)

func artifactKey(id cid.Cid) string { return "code/artifact/" + id.String() }

func currentCodeKey(contract auth.Address) string {
	return "code/current/" + string(contract)
}

// Deployer manages executable code artifacts.
//
// Artifacts are content-addressed: Install stores bytes under their CID and
// returns the 32-byte hash upgrades use to name them. Every artifact is
// compiled once with a WebAssembly runtime before it is accepted, so an
// upgrade can never commit an artifact the host cannot execute.
type Deployer struct {
	runtime wazero.Runtime
}

func NewDeployer(ctx context.Context) *Deployer {
	return &Deployer{
		runtime: wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter()),
	}
}

func (d *Deployer) Close(ctx context.Context) error {
	return d.runtime.Close(ctx)
}

// Install validates and stores a code artifact, returning its 32-byte hash.
func (d *Deployer) Install(ctx context.Context, store state.Store, code []byte) ([]byte, error) {
	compiled, err := d.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("deployer: artifact is not a valid module: %w", err)
	}
	_ = compiled.Close(ctx)

	id, err := codeaddr.CodeCID(code)
	if err != nil {
		return nil, err
	}
	if err := store.Set(artifactKey(id), code); err != nil {
		return nil, err
	}
	hash := codeaddr.CodeHash(code)
	return hash[:], nil
}

// UpdateCurrentCode points the invoked contract at an installed artifact.
// Unknown artifacts fault: an upgrade may only target code the host holds.
func (d *Deployer) UpdateCurrentCode(inv *Invocation, newCodeHash []byte) {
	id, err := codeaddr.CIDForHash(newCodeHash)
	if err != nil {
		auth.FaultWrap(err, "deployer: invalid code hash")
	}
	if !inv.store.Has(artifactKey(id)) {
		auth.Faultf("deployer: unknown code artifact %s", id)
	}
	if err := inv.store.Set(currentCodeKey(inv.Contract), newCodeHash); err != nil {
		auth.FaultWrap(err, "deployer: persisting current code")
	}
}

// CurrentCodeHash reports the hash of the artifact currently backing a
// contract, or state.ErrNotFound if none was ever installed.
func CurrentCodeHash(store state.Store, contract auth.Address) ([]byte, error) {
	return store.Get(currentCodeKey(contract))
}
