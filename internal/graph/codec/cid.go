// Package codec maps Bitcoin blocks onto a graph of content-addressed units and back.
package codec

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Multicodec codes for the Bitcoin unit formats.
const (
	CodecBlock             uint64 = 0xb0
	CodecTx                uint64 = 0xb1
	CodecWitnessCommitment uint64 = 0xb2

	// HashCode is the multihash code of dbl-sha2-256, the only digest used for Bitcoin links.
	HashCode = multihash.DBL_SHA2_256
)

// Unit is a single addressable piece of a block graph.
type Unit struct {
	CID  cid.Cid
	Data []byte
}

// DoubleSHA256 returns sha256(sha256(data)).
func DoubleSHA256(data []byte) chainhash.Hash {
	return chainhash.DoubleHashH(data)
}

// HashToCID wraps a native Bitcoin digest (wire byte order) into a CIDv1 with the given codec.
func HashToCID(codec uint64, digest chainhash.Hash) cid.Cid {
	mh, err := multihash.Encode(digest[:], HashCode)
	if err != nil {
		// Encode only fails for unknown codes or oversized digests.
		panic(fmt.Sprintf("encode dbl-sha2-256 multihash: %v", err))
	}
	return cid.NewCidV1(codec, mh)
}

// CIDToHash extracts the native Bitcoin digest from a dbl-sha2-256 CID.
func CIDToHash(c cid.Cid) (chainhash.Hash, error) {
	if !c.Defined() {
		return chainhash.Hash{}, fmt.Errorf("%w: undefined cid", ErrInvalidArgument)
	}
	decoded, err := multihash.Decode(c.Hash())
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: decode multihash of %s: %v", ErrInvalidArgument, c, err)
	}
	if decoded.Code != HashCode {
		return chainhash.Hash{}, fmt.Errorf("%w: cid %s uses hash 0x%x, want dbl-sha2-256", ErrInvalidArgument, c, decoded.Code)
	}
	hash, err := chainhash.NewHash(decoded.Digest)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: cid %s digest: %v", ErrInvalidArgument, c, err)
	}
	return *hash, nil
}

// NewUnit content-addresses data under the given codec.
func NewUnit(codec uint64, data []byte) Unit {
	return Unit{CID: HashToCID(codec, DoubleSHA256(data)), Data: data}
}

// VerifyUnit checks that data hashes to the digest carried by c.
func VerifyUnit(c cid.Cid, data []byte) error {
	want, err := CIDToHash(c)
	if err != nil {
		return err
	}
	if got := DoubleSHA256(data); got != want {
		return fmt.Errorf("%w: unit %s hashes to %s", ErrIntegrity, c, got)
	}
	return nil
}

// Codec returns the multicodec of c.
func Codec(c cid.Cid) uint64 {
	return c.Prefix().Codec
}

func isZeroHash(h *chainhash.Hash) bool {
	return *h == chainhash.Hash{}
}
