// Package codeaddr derives content identifiers for executable code
// artifacts.
//
// Upgrades name their target artifact by a 32-byte sha2-256 hash; the host
// code store addresses artifacts by CIDv1 (raw + sha2-256). Because the CID's
// multihash embeds the same digest, the two forms convert without re-reading
// the artifact bytes.
package codeaddr

import (
	"crypto/sha256"
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// HashSize is the size of a code hash.
const HashSize = sha256.Size

// CodeHash returns the 32-byte hash naming a code artifact.
func CodeHash(data []byte) [HashSize]byte {
	return sha256.Sum256(data)
}

// CodeCID returns a CIDv1 (raw + sha2-256) derived from artifact bytes.
func CodeCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CIDForHash rebuilds the artifact CID from a previously computed code hash.
func CIDForHash(hash []byte) (cid.Cid, error) {
	if len(hash) != HashSize {
		return cid.Undef, errors.New("code hash must be 32 bytes")
	}
	sum, err := multihash.Encode(hash, multihash.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(sum)), nil
}
