package codec

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ipfs/go-cid"
)

// MerkleNodeSize is the binary size of a merkle node and of a witness commitment.
const MerkleNodeSize = 2 * chainhash.HashSize

// MerkleNode is a decoded inner node of a transaction merkle tree. Left is cid.Undef when it
// stands for the coinbase, which the witness tree leaves out.
type MerkleNode struct {
	Left  cid.Cid
	Right cid.Cid
}

// Duplicate reports whether both children point at the same subtree.
func (n *MerkleNode) Duplicate() bool {
	return n.Left.Defined() && n.Left.Equals(n.Right)
}

// UnitKind tags the two shapes a bitcoin-tx unit can take.
type UnitKind int

const (
	KindTransaction UnitKind = iota + 1
	KindMerkleNode
)

func (k UnitKind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindMerkleNode:
		return "merkle-node"
	default:
		return "unknown"
	}
}

// TreeUnit is a decoded bitcoin-tx unit: exactly one of Tx and Node is set according to Kind.
type TreeUnit struct {
	Kind UnitKind
	Tx   *Transaction
	Node *MerkleNode
}

// EncodeMerkleNode concatenates two child digests. A nil left child encodes as 32 zero bytes.
func EncodeMerkleNode(left, right *chainhash.Hash) []byte {
	buf := make([]byte, MerkleNodeSize)
	if left != nil {
		copy(buf[:chainhash.HashSize], left[:])
	}
	copy(buf[chainhash.HashSize:], right[:])
	return buf
}

// DecodeMerkleNode interprets 64 bytes as two child links.
func DecodeMerkleNode(data []byte) (*MerkleNode, error) {
	if len(data) != MerkleNodeSize {
		return nil, fmt.Errorf("%w: merkle node must be %d bytes, got %d", ErrMalformedEncoding, MerkleNodeSize, len(data))
	}
	var left, right chainhash.Hash
	copy(left[:], data[:chainhash.HashSize])
	copy(right[:], data[chainhash.HashSize:])

	node := &MerkleNode{Right: HashToCID(CodecTx, right)}
	if !isZeroHash(&left) {
		node.Left = HashToCID(CodecTx, left)
	}
	return node, nil
}

// DecodeTreeUnit decodes a bitcoin-tx unit. A 64 byte unit may be either a transaction or a merkle
// node, so decoding follows a fixed order:
//   - transaction decoding is attempted first;
//   - a transaction with no inputs and no outputs is a false positive and is read as a node;
//   - a failed transaction decode of exactly 64 bytes is read as a node;
//   - any other failure is returned.
func DecodeTreeUnit(data []byte) (TreeUnit, error) {
	tx, err := DecodeTransaction(data)
	switch {
	case err == nil && (len(tx.Tx.TxIn) > 0 || len(tx.Tx.TxOut) > 0):
		return TreeUnit{Kind: KindTransaction, Tx: tx}, nil
	case err == nil, len(data) == MerkleNodeSize:
		node, nodeErr := DecodeMerkleNode(data)
		if nodeErr != nil {
			return TreeUnit{}, errors.Join(err, nodeErr)
		}
		return TreeUnit{Kind: KindMerkleNode, Node: node}, nil
	default:
		return TreeUnit{}, err
	}
}
