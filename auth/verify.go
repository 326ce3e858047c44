package auth

import (
	"github.com/cloudflare/circl/sign/ed25519"
)

// Sizes of the fixed verification primitive.
const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
	DigestSize    = 32
)

// VerifyEd25519 checks that signature is a valid Ed25519 signature over
// digest under publicKey.
//
// A mismatch is a fatal fault, not an error value: past the registry
// membership check, an invalid signature sits on the same trust boundary as a
// corrupted proof. Size violations fault for the same reason; the caller is
// expected to have validated structure already.
func VerifyEd25519(publicKey, digest, signature []byte) {
	if len(publicKey) != PublicKeySize {
		Faultf("ed25519: public key must be %d bytes, got %d", PublicKeySize, len(publicKey))
	}
	if len(digest) != DigestSize {
		Faultf("ed25519: digest must be %d bytes, got %d", DigestSize, len(digest))
	}
	if len(signature) != SignatureSize {
		Faultf("ed25519: signature must be %d bytes, got %d", SignatureSize, len(signature))
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), digest, signature) {
		Faultf("ed25519: signature did not verify")
	}
}
