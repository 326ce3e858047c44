// Package keys provides signer-key helpers: formatting, parsing,
// deterministic seed derivation, and digest construction for signature
// payloads.
package keys

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/sha3"
)

// SignerKeyPrefix tags textual signer keys so the algorithm is explicit.
const SignerKeyPrefix = "ed25519:"

// FormatSignerKey returns the textual form of an Ed25519 public key:
// "ed25519:" + base64(pubkey).
func FormatSignerKey(pub []byte) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("public key must be %d bytes", ed25519.PublicKeySize)
	}
	return SignerKeyPrefix + base64.StdEncoding.EncodeToString(pub), nil
}

// SignerKeyFromSeed returns the textual signer key for an Ed25519 seed.
func SignerKeyFromSeed(seed []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return FormatSignerKey(pub)
}

// ParseSignerKey parses the textual signer-key form back into raw public-key
// bytes.
func ParseSignerKey(s string) ([]byte, error) {
	if !strings.HasPrefix(s, SignerKeyPrefix) {
		return nil, fmt.Errorf("unsupported signer key %q", s)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, SignerKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid signer key encoding: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.New("invalid signer key length")
	}
	return b, nil
}

// DeriveAccountSeed deterministically derives an account-specific Ed25519
// seed from a root seed.
//
// The derivation is domain-separated so seeds for different accounts never
// collide with each other or with the root.
func DeriveAccountSeed(rootSeed []byte, account string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckAccountName(account); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("signet-account-kdf-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("account:"))
	_, _ = h.Write([]byte(account))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}

// CheckAccountName validates a derivation label.
func CheckAccountName(name string) error {
	if name == "" {
		return errors.New("account name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in account name", char)
	}
	return nil
}

// Digest hashes a message for use as a signature payload.
// hashAlg must be one of: sha256, sha512, sha3-256.
func Digest(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// SignPayload signs a 32-byte digest with the Ed25519 key derived from seed.
func SignPayload(seed, digest []byte) ([]byte, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	if len(digest) != sha256.Size {
		return nil, fmt.Errorf("digest must be %d bytes", sha256.Size)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return ed25519.Sign(priv, digest), nil
}

// PublicKeyFromSeed returns the raw Ed25519 public key for seed.
func PublicKeyFromSeed(seed []byte) ([]byte, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return []byte(priv.Public().(ed25519.PublicKey)), nil
}
