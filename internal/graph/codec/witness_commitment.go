package codec

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/ipfs/go-cid"
)

// WitnessCommitment binds the witness merkle root and the coinbase nonce.
type WitnessCommitment struct {
	// WitnessMerkleRoot is cid.Undef when the block holds only a coinbase.
	WitnessMerkleRoot cid.Cid
	Nonce             []byte
}

// EncodeWitnessCommitment produces root digest ‖ nonce.
func EncodeWitnessCommitment(wc *WitnessCommitment) ([]byte, error) {
	if wc == nil {
		return nil, fmt.Errorf("%w: nil witness commitment", ErrInvalidArgument)
	}
	if len(wc.Nonce) != chainhash.HashSize {
		return nil, fmt.Errorf("%w: witness commitment nonce must be %d bytes, got %d", ErrInvalidArgument, chainhash.HashSize, len(wc.Nonce))
	}
	var root *chainhash.Hash
	if wc.WitnessMerkleRoot.Defined() {
		if Codec(wc.WitnessMerkleRoot) != CodecTx {
			return nil, fmt.Errorf("%w: witness merkle root %s is not a bitcoin-tx link", ErrInvalidArgument, wc.WitnessMerkleRoot)
		}
		hash, err := CIDToHash(wc.WitnessMerkleRoot)
		if err != nil {
			return nil, err
		}
		root = &hash
	}
	return commitmentBinary(root, wc.Nonce), nil
}

// DecodeWitnessCommitment parses a 64 byte witness commitment unit.
func DecodeWitnessCommitment(data []byte) (*WitnessCommitment, error) {
	if len(data) != MerkleNodeSize {
		return nil, fmt.Errorf("%w: witness commitment must be %d bytes, got %d", ErrMalformedEncoding, MerkleNodeSize, len(data))
	}
	var root chainhash.Hash
	copy(root[:], data[:chainhash.HashSize])

	wc := &WitnessCommitment{Nonce: append([]byte(nil), data[chainhash.HashSize:]...)}
	if !isZeroHash(&root) {
		wc.WitnessMerkleRoot = HashToCID(CodecTx, root)
	}
	return wc, nil
}

// ComputeWitnessCommitment builds the witness commitment unit for block given the witness merkle
// root (nil when the block has a coinbase only) and checks it against the digest embedded in the
// coinbase. It returns nil, nil when the coinbase carries no witness, i.e. the block is not segwit.
func ComputeWitnessCommitment(block *wire.MsgBlock, root *chainhash.Hash) (*Unit, error) {
	if block == nil || len(block.Transactions) == 0 {
		return nil, fmt.Errorf("%w: block without transactions", ErrInvalidArgument)
	}
	coinbase := block.Transactions[0]
	if !IsCoinbase(coinbase) {
		return nil, fmt.Errorf("%w: first transaction is not a coinbase", ErrInvalidArgument)
	}
	if !coinbase.HasWitness() {
		return nil, nil
	}

	expected, ok := WitnessCommitmentDigest(coinbase)
	if !ok {
		return nil, fmt.Errorf("%w: segwit coinbase has no witness commitment output", ErrMalformedEncoding)
	}
	nonce, ok := WitnessCommitmentNonce(coinbase)
	if !ok {
		return nil, fmt.Errorf("%w: segwit coinbase has no witness commitment nonce", ErrMalformedEncoding)
	}

	binary := commitmentBinary(root, nonce)
	digest := DoubleSHA256(binary)
	if digest != expected {
		return nil, fmt.Errorf("%w: computed witness commitment %s, coinbase commits to %s", ErrIntegrity, digest, expected)
	}
	return &Unit{CID: HashToCID(CodecWitnessCommitment, digest), Data: binary}, nil
}

func commitmentBinary(root *chainhash.Hash, nonce []byte) []byte {
	buf := make([]byte, MerkleNodeSize)
	if root != nil {
		copy(buf[:chainhash.HashSize], root[:])
	}
	copy(buf[chainhash.HashSize:], nonce)
	return buf
}
