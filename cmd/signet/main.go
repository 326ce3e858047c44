package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"signet.sh/signet/account"
	"signet.sh/signet/auth"
	"signet.sh/signet/host"
	"signet.sh/signet/keys"
	"signet.sh/signet/state/stateregistry"
	"signet.sh/signet/webauth"

	_ "signet.sh/signet/state/grpcstate"
	_ "signet.sh/signet/state/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "keygen":
		return cmdKeygen(args[1:], out, errOut)
	case "digest":
		return cmdDigest(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "account":
		return cmdAccount(args[1:], out, errOut)
	case "webauth":
		return cmdWebAuth(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "signet: programmable account authorization CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  signet keygen [--seed-hex <64hex>]")
	fmt.Fprintln(w, "  signet digest [--alg sha256|sha512|sha3-256] <file>")
	fmt.Fprintln(w, "  signet sign --seed-hex <64hex> --digest-hex <64hex>")
	fmt.Fprintln(w, "  signet account init --backend <b> --address <addr> --admin <addr> --signer <ed25519:...>")
	fmt.Fprintln(w, "  signet account check-auth --backend <b> --address <addr> --digest-hex <64hex> [--sig <ed25519:...>=<128hex> ...]")
	fmt.Fprintln(w, "  signet account upgrade --backend <b> --address <addr> --code <wasm> --digest-hex <64hex> [--cred <addr>=<128hex> ...]")
	fmt.Fprintln(w, "  signet webauth init --backend <b> --address <addr> --admin <addr>")
	fmt.Fprintln(w, "  signet webauth verify --backend <b> --address <addr> --digest-hex <64hex> [--arg k=v ...] [--cred <addr>=<128hex> ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - credentials for ed25519:* addresses are signatures over --digest-hex")
	fmt.Fprintln(w, "  - backends: see each command's --backend flags (localfs, grpc)")
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdKeygen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seedHex string
	fs.StringVar(&seedHex, "seed-hex", "", "Ed25519 seed as 64 hex chars (random if omitted)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var seed []byte
	if seedHex == "" {
		seed = make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "generate seed: %v\n", err)
			return 1
		}
	} else {
		var err error
		seed, err = hex.DecodeString(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	}

	signerKey, err := keys.SignerKeyFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "derive signer key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "seed-hex: %s\nsigner-key: %s\n", hex.EncodeToString(seed), signerKey)
	return 0
}

func cmdDigest(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var alg string
	fs.StringVar(&alg, "alg", "sha256", "Hash algorithm (sha256, sha512, sha3-256)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: signet digest [--alg <alg>] <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	d, err := keys.Digest(alg, b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(d))
	return 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var seedHex string
	var digestHex string
	fs.StringVar(&seedHex, "seed-hex", "", "Ed25519 seed as 64 hex chars")
	fs.StringVar(&digestHex, "digest-hex", "", "32-byte payload digest as 64 hex chars")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
		return 2
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --digest-hex: %v\n", err)
		return 2
	}
	sig, err := keys.SignPayload(seed, digest)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(sig))
	return 0
}

func cmdAccount(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: signet account <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, check-auth, upgrade")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdAccountInit(args[1:], out, errOut)
	case "check-auth":
		return cmdAccountCheckAuth(args[1:], out, errOut)
	case "upgrade":
		return cmdAccountUpgrade(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown account subcommand: %s\n", args[0])
		return 2
	}
}

func cmdAccountInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("account init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var backend, address, admin, signer string
	fs.StringVar(&backend, "backend", "localfs", "store backend name")
	fs.StringVar(&address, "address", "", "contract account address")
	fs.StringVar(&admin, "admin", "", "admin principal address")
	fs.StringVar(&signer, "signer", "", "trusted signer key (ed25519:BASE64)")
	stateregistry.RegisterFlags(fs, stateregistry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if address == "" || admin == "" || signer == "" {
		fmt.Fprintln(errOut, "usage: signet account init --backend <b> --address <addr> --admin <addr> --signer <ed25519:...>")
		return 2
	}
	addr, err := auth.ParseAddress(address)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --address: %v\n", err)
		return 2
	}
	adminAddr, err := auth.ParseAddress(admin)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --admin: %v\n", err)
		return 2
	}
	pub, err := keys.ParseSignerKey(signer)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --signer: %v\n", err)
		return 2
	}

	store, closeFn, err := stateregistry.Open(backend, stateregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	acct := account.New(host.InstanceStore(store, addr))
	if err := acct.Initialize(adminAddr, pub); err != nil {
		fmt.Fprintf(errOut, "initialize: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdAccountCheckAuth(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("account check-auth", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var backend, address, digestHex string
	var sigs stringList
	fs.StringVar(&backend, "backend", "localfs", "store backend name")
	fs.StringVar(&address, "address", "", "contract account address")
	fs.StringVar(&digestHex, "digest-hex", "", "32-byte payload digest as 64 hex chars")
	fs.Var(&sigs, "sig", "bundle element <ed25519:...>=<128hex> (repeatable)")
	stateregistry.RegisterFlags(fs, stateregistry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	addr, err := auth.ParseAddress(address)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --address: %v\n", err)
		return 2
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --digest-hex: %v\n", err)
		return 2
	}

	var bundle []account.Signature
	for _, s := range sigs {
		signerKey, sigHex, ok := cutLast(s, "=")
		if !ok {
			fmt.Fprintf(errOut, "invalid --sig %q (want <signer>=<hex>)\n", s)
			return 2
		}
		pub, err := keys.ParseSignerKey(signerKey)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --sig signer: %v\n", err)
			return 2
		}
		sig, err := hex.DecodeString(sigHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --sig hex: %v\n", err)
			return 2
		}
		bundle = append(bundle, account.Signature{PublicKey: pub, Signature: sig})
	}

	store, closeFn, err := stateregistry.Open(backend, stateregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	env := host.NewEnv(store)
	env.RegisterContractAccount(addr)
	err = env.Invoke(host.Call{
		Contract:    addr,
		Digest:      digest,
		Credentials: map[auth.Address]host.Credential{addr: host.BundleCredential{Signatures: bundle}},
	}, func(inv *host.Invocation) error {
		inv.RequireAuth(addr)
		return nil
	})
	if err != nil {
		fmt.Fprintf(errOut, "check-auth: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdAccountUpgrade(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("account upgrade", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var backend, address, codePath, digestHex string
	var creds stringList
	fs.StringVar(&backend, "backend", "localfs", "store backend name")
	fs.StringVar(&address, "address", "", "contract account address")
	fs.StringVar(&codePath, "code", "", "new code artifact file")
	fs.StringVar(&digestHex, "digest-hex", "", "32-byte invocation digest as 64 hex chars")
	fs.Var(&creds, "cred", "credential <addr>=<128hex> (repeatable)")
	stateregistry.RegisterFlags(fs, stateregistry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if address == "" || codePath == "" {
		fmt.Fprintln(errOut, "usage: signet account upgrade --backend <b> --address <addr> --code <wasm> --digest-hex <64hex> [--cred ...]")
		return 2
	}
	addr, err := auth.ParseAddress(address)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --address: %v\n", err)
		return 2
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --digest-hex: %v\n", err)
		return 2
	}
	code, err := os.ReadFile(codePath)
	if err != nil {
		fmt.Fprintf(errOut, "read --code: %v\n", err)
		return 1
	}

	store, closeFn, err := stateregistry.Open(backend, stateregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	credentials, natives, err := parseCreds(creds)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	ctx := context.Background()
	deployer := host.NewDeployer(ctx)
	defer deployer.Close(ctx)

	newHash, err := deployer.Install(ctx, store, code)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	env := host.NewEnv(store)
	env.Deployer = deployer
	env.RegisterContractAccount(addr)
	for nativeAddr, pub := range natives {
		env.RegisterNative(nativeAddr, pub)
	}

	err = env.Invoke(host.Call{
		Contract:    addr,
		Digest:      digest,
		Credentials: credentials,
	}, func(inv *host.Invocation) error {
		account.New(inv.InstanceStore(addr)).Upgrade(inv, newHash)
		return nil
	})
	if err != nil {
		fmt.Fprintf(errOut, "upgrade: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "upgraded %s to %s\n", addr, hex.EncodeToString(newHash))
	return 0
}

func cmdWebAuth(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: signet webauth <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, verify")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdWebAuthInit(args[1:], out, errOut)
	case "verify":
		return cmdWebAuthVerify(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown webauth subcommand: %s\n", args[0])
		return 2
	}
}

func cmdWebAuthInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("webauth init", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var backend, address, admin string
	fs.StringVar(&backend, "backend", "localfs", "store backend name")
	fs.StringVar(&address, "address", "", "web-auth contract address")
	fs.StringVar(&admin, "admin", "", "admin principal address")
	stateregistry.RegisterFlags(fs, stateregistry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if address == "" || admin == "" {
		fmt.Fprintln(errOut, "usage: signet webauth init --backend <b> --address <addr> --admin <addr>")
		return 2
	}
	addr, err := auth.ParseAddress(address)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --address: %v\n", err)
		return 2
	}
	adminAddr, err := auth.ParseAddress(admin)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --admin: %v\n", err)
		return 2
	}

	store, closeFn, err := stateregistry.Open(backend, stateregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	if err := webauth.New(host.InstanceStore(store, addr)).Initialize(adminAddr); err != nil {
		fmt.Fprintf(errOut, "initialize: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdWebAuthVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("webauth verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var backend, address, digestHex string
	var argPairs, creds stringList
	fs.StringVar(&backend, "backend", "localfs", "store backend name")
	fs.StringVar(&address, "address", "", "web-auth contract address")
	fs.StringVar(&digestHex, "digest-hex", "", "32-byte invocation digest as 64 hex chars")
	fs.Var(&argPairs, "arg", "request argument k=v (repeatable)")
	fs.Var(&creds, "cred", "credential <addr>=<128hex> (repeatable)")
	stateregistry.RegisterFlags(fs, stateregistry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	addr, err := auth.ParseAddress(address)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --address: %v\n", err)
		return 2
	}
	digest, err := hex.DecodeString(digestHex)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --digest-hex: %v\n", err)
		return 2
	}

	requestArgs := map[string]string{}
	for _, kv := range argPairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(errOut, "invalid --arg %q (want k=v)\n", kv)
			return 2
		}
		requestArgs[k] = v
	}

	credentials, natives, err := parseCreds(creds)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	store, closeFn, err := stateregistry.Open(backend, stateregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	env := host.NewEnv(store)
	for nativeAddr, pub := range natives {
		env.RegisterNative(nativeAddr, pub)
	}

	err = env.Invoke(host.Call{
		Contract:    addr,
		Digest:      digest,
		Credentials: credentials,
	}, func(inv *host.Invocation) error {
		return webauth.New(inv.InstanceStore(addr)).WebAuthVerify(inv, requestArgs)
	})
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

// cutLast splits s around the last occurrence of sep. Signer-key addresses
// may end in base64 padding, so the address=hex separator is the last "=",
// not the first.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// parseCreds decodes repeated --cred flags.
//
// Addresses of the form "ed25519:BASE64" carry their own public key; those
// principals are returned in natives so the caller can register them.
func parseCreds(creds stringList) (map[auth.Address]host.Credential, map[auth.Address][]byte, error) {
	credentials := map[auth.Address]host.Credential{}
	natives := map[auth.Address][]byte{}
	for _, c := range creds {
		addrText, sigHex, ok := cutLast(c, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --cred %q (want <addr>=<hex>)", c)
		}
		addr, err := auth.ParseAddress(addrText)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --cred address: %v", err)
		}
		sig, err := hex.DecodeString(sigHex)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --cred hex: %v", err)
		}
		credentials[addr] = host.Ed25519Credential{Signature: sig}
		if pub, err := keys.ParseSignerKey(addrText); err == nil {
			natives[addr] = pub
		}
	}
	return credentials, natives, nil
}
